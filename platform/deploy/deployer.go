package deploy

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// Deployer represents a way to ship a packaged function archive
type Deployer interface {
	Deploy(ctx context.Context, functionName string, archive []byte) error
}

// lambdaAPI is the slice of the Lambda control API deployment uses
type lambdaAPI interface {
	UpdateFunctionCode(ctx context.Context, params *lambda.UpdateFunctionCodeInput,
		optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error)
}

// LambdaDeployer implements Deployer against the AWS Lambda control API
type LambdaDeployer struct {
	api lambdaAPI
}

// NewLambdaDeployer returns a *LambdaDeployer shipping through client
func NewLambdaDeployer(client *lambda.Client) *LambdaDeployer {
	return &LambdaDeployer{api: client}
}

// Deploy replaces the named function's code with the archive
func (l *LambdaDeployer) Deploy(ctx context.Context, functionName string, archive []byte) error {
	_, err := l.api.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(functionName),
		ZipFile:      archive,
	})
	if err != nil {
		return fmt.Errorf("Failed to update code for function %s: %w", functionName, err)
	}
	return nil
}

// NoopDeployer implements Deployer for dry runs, logging what would have shipped
type NoopDeployer struct{}

func (NoopDeployer) Deploy(ctx context.Context, functionName string, archive []byte) error {
	log.Printf("Dry run: would update function %s with a %d byte archive\n", functionName, len(archive))
	return nil
}

// Function pairs a deployable function name with its source tree
type Function struct {
	Name      string
	SourceDir string
}

/*
PackageAndDeploy packages, verifies, and ships each function in order. The
first failure halts the run; functions later in the list do not ship
*/
func PackageAndDeploy(ctx context.Context, deployer Deployer, functions []Function) error {
	for _, function := range functions {
		archive, err := BuildArchive(function.SourceDir)
		if err != nil {
			return err
		}
		if err = VerifyArchive(archive, filepath.Base(filepath.Clean(function.SourceDir))); err != nil {
			return err
		}
		if err = deployer.Deploy(ctx, function.Name, archive); err != nil {
			return err
		}
		log.Printf("Deployed %s from %s\n", function.Name, function.SourceDir)
	}
	return nil
}
