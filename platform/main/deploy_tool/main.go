package main

import (
	"context"
	"flag"
	"log"
	"os"
	"sort"

	"github.com/chequebase/chequebase-ai/platform/cloud"
	"github.com/chequebase/chequebase-ai/platform/deploy"
	"github.com/chequebase/chequebase-ai/platform/main/config"
)

/*
Config Format
--------------
  [aws]
    region = string
    access_key_id = string
    secret_access_key = string
    endpoint = string

  [functions.chequebase-ai-getExpenseReport]
    source_dir = string

  [functions.chequebase-ai-uploadToS3]
    source_dir = string
*/

type deployFunction struct {
	SourceDir string `toml:"source_dir"`
}

type deployConfig struct {
	AWS       config.AWS                `toml:"aws"`
	Functions map[string]deployFunction `toml:"functions"`
}

func main() {
	fnamePtr := flag.String("config", "", "TOML configuration file path")
	dryPtr := flag.Bool("dry", false, "package and verify without shipping")
	flag.Parse()

	// Read configuration parameters
	var conf deployConfig
	if err := config.ReadTOMLConfig(*fnamePtr, &conf); err != nil {
		panic(err)
	}

	// Functions ship in name order so every run is predictable
	names := make([]string, 0, len(conf.Functions))
	for name := range conf.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	functions := make([]deploy.Function, 0, len(names))
	for _, name := range names {
		functions = append(functions, deploy.Function{
			Name:      name,
			SourceDir: conf.Functions[name].SourceDir,
		})
	}

	// Create resources
	ctx := context.Background()
	var deployer deploy.Deployer = deploy.NoopDeployer{}
	if !*dryPtr {
		awsConf, err := cloud.NewAWSConfig(ctx, conf.AWS.CloudConfig())
		if err != nil {
			panic(err)
		}
		deployer = deploy.NewLambdaDeployer(cloud.NewLambdaClient(awsConf))
	}

	// Package, verify, and ship
	log.SetOutput(os.Stdout)
	if err := deploy.PackageAndDeploy(ctx, deployer, functions); err != nil {
		log.Fatal(err)
	}
}
