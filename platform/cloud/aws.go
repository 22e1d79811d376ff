package cloud

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/textract"
)

/*
Config carries the AWS connection parameters every service shares. When
AccessKeyID/SecretAccessKey are empty the default provider chain is used.
Endpoint is only set when running against a local stack
*/
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// NewAWSConfig builds the shared aws.Config all service clients are created from
func NewAWSConfig(ctx context.Context, conf Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(conf.Region),
	}
	if conf.AccessKeyID != "" {
		provider := credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, "")
		opts = append(opts, config.WithCredentialsProvider(provider))
	}
	if conf.Endpoint != "" {
		endpoint := conf.Endpoint
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint, HostnameImmutable: true}, nil
			})
		opts = append(opts, config.WithEndpointResolverWithOptions(resolver))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}

// NewS3Client creates an S3 client. Path style addressing is required for local stacks
func NewS3Client(cfg aws.Config, pathStyle bool) *s3.Client {
	return s3.NewFromConfig(cfg, func(options *s3.Options) {
		options.UsePathStyle = pathStyle
	})
}

func NewDynamoDBClient(cfg aws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg)
}

func NewSQSClient(cfg aws.Config) *sqs.Client {
	return sqs.NewFromConfig(cfg)
}

func NewTextractClient(cfg aws.Config) *textract.Client {
	return textract.NewFromConfig(cfg)
}

func NewLambdaClient(cfg aws.Config) *lambda.Client {
	return lambda.NewFromConfig(cfg)
}
