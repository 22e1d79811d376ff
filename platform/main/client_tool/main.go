package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chequebase/chequebase-ai/platform/client"
	"github.com/chequebase/chequebase-ai/platform/cloud"
	"github.com/chequebase/chequebase-ai/platform/main/config"
)

/*
Config Format
--------------
  endpoint = string

  [aws]
    region = string
    access_key_id = string
    secret_access_key = string
*/

type clientConfig struct {
	Endpoint string     `toml:"endpoint"`
	AWS      config.AWS `toml:"aws"`
}

func requestReport(ctx context.Context, edge *client.Client, companyID string, startDate string, endDate string) {
	message, err := edge.RequestReport(ctx, companyID, startDate, endDate)
	if err != nil {
		log.Fatal(err)
	}
	log.Println(message)
}

func uploadReceipts(ctx context.Context, edge *client.Client, companyID string, files string) {
	paths := strings.Split(files, ",")
	filenames := make([]string, 0, len(paths))
	for _, filePath := range paths {
		filenames = append(filenames, filepath.Base(strings.TrimSpace(filePath)))
	}

	urls, err := edge.PresignUploads(ctx, companyID, filenames)
	if err != nil {
		log.Fatal(err)
	}

	for _, filePath := range paths {
		filePath = strings.TrimSpace(filePath)
		name := filepath.Base(filePath)
		presigned, ok := urls[name]
		if !ok {
			log.Printf("No presigned URL issued for %s\n", name)
			continue
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			log.Fatal(err)
		}
		if err = edge.UploadFile(ctx, presigned.URL, name, content); err != nil {
			log.Fatal(err)
		}
		log.Printf("File uploaded successfully: %s\n", name)
	}
}

func main() {
	fnamePtr := flag.String("config", "", "TOML configuration file path")
	opPtr := flag.String("op", "", "operation to perform: 'report' or 'upload'")
	companyPtr := flag.String("company", "", "company id the operation applies to")
	startPtr := flag.String("start", "", "report range start date (YYYY-MM-DD)")
	endPtr := flag.String("end", "", "report range end date (YYYY-MM-DD)")
	filesPtr := flag.String("files", "", "comma separated receipt files to upload")
	flag.Parse()

	// Read configuration parameters
	var conf clientConfig
	if err := config.ReadTOMLConfig(*fnamePtr, &conf); err != nil {
		panic(err)
	}

	// Create resources
	ctx := context.Background()
	awsConf, err := cloud.NewAWSConfig(ctx, conf.AWS.CloudConfig())
	if err != nil {
		panic(err)
	}
	edge, err := client.New(conf.Endpoint, conf.AWS.Region, awsConf.Credentials)
	if err != nil {
		panic(err)
	}

	// Perform operation
	switch *opPtr {
	case "report":
		requestReport(ctx, edge, *companyPtr, *startPtr, *endPtr)
	case "upload":
		uploadReceipts(ctx, edge, *companyPtr, *filesPtr)
	default:
		log.Fatalf("Unknown operation %q. Expected 'report' or 'upload'", *opPtr)
	}
}
