package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/chequebase/chequebase-ai/platform/cloud"
	"github.com/chequebase/chequebase-ai/platform/main/config"
	"github.com/chequebase/chequebase-ai/platform/upload"
)

/*
Config Format
--------------
  listen_port = int
  receipt_bucket = string

  [aws]
    region = string
    access_key_id = string
    secret_access_key = string
    endpoint = string
    s3_path_style = bool
*/

type uploadConfig struct {
	ListenPort    int        `toml:"listen_port"`
	ReceiptBucket string     `toml:"receipt_bucket"`
	AWS           config.AWS `toml:"aws"`
}

func main() {
	fnamePtr := flag.String("config", "", "TOML configuration file path")
	flag.Parse()

	// Read configuration parameters
	var conf uploadConfig
	if err := config.ReadTOMLConfig(*fnamePtr, &conf); err != nil {
		panic(err)
	}
	listenAddr := ":" + strconv.Itoa(conf.ListenPort)

	// Create resources
	awsConf, err := cloud.NewAWSConfig(context.Background(), conf.AWS.CloudConfig())
	if err != nil {
		panic(err)
	}
	bucket := cloud.NewS3Bucket(cloud.NewS3Client(awsConf, conf.AWS.S3PathStyle), conf.ReceiptBucket)
	presigner := upload.NewURLPresigner(bucket)
	uploader := upload.NewDirectUploader(bucket)

	// Start service
	log.SetOutput(os.Stdout)
	upload.StartUploadAPI(listenAddr, presigner, uploader)
}
