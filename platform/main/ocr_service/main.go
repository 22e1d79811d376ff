package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/chequebase/chequebase-ai/platform/cloud"
	"github.com/chequebase/chequebase-ai/platform/main/config"
	"github.com/chequebase/chequebase-ai/platform/ocr"
	"github.com/chequebase/chequebase-ai/platform/queue"
)

/*
Config Format
--------------
  service_listen_port = int
  receipt_bucket = string
  upload_events_queue_url = string
  sync_recognition = bool

  [aws]
    region = string
    access_key_id = string
    secret_access_key = string
    endpoint = string
    s3_path_style = bool
*/

type ocrConfig struct {
	ServiceAPIPort       int        `toml:"service_listen_port"`
	ReceiptBucket        string     `toml:"receipt_bucket"`
	UploadEventsQueueURL string     `toml:"upload_events_queue_url"`
	SyncRecognition      bool       `toml:"sync_recognition"`
	AWS                  config.AWS `toml:"aws"`
}

func main() {
	fnamePtr := flag.String("config", "", "TOML configuration file path")
	flag.Parse()

	// Read configuration parameters
	var conf ocrConfig
	if err := config.ReadTOMLConfig(*fnamePtr, &conf); err != nil {
		panic(err)
	}
	listenAddr := ":" + strconv.Itoa(conf.ServiceAPIPort)

	// Create resources
	ctx := context.Background()
	awsConf, err := cloud.NewAWSConfig(ctx, conf.AWS.CloudConfig())
	if err != nil {
		panic(err)
	}
	bucket := cloud.NewS3Bucket(cloud.NewS3Client(awsConf, conf.AWS.S3PathStyle), conf.ReceiptBucket)
	textractClient := cloud.NewTextractClient(awsConf)

	var recognizer ocr.TextRecognizer = ocr.NewTextractRecognizer(textractClient)
	if conf.SyncRecognition {
		recognizer = ocr.NewSyncTextractRecognizer(textractClient)
	}
	worker := ocr.NewRecognitionWorker(conf.ReceiptBucket, bucket, recognizer)
	uploadEvents := queue.NewSQSMessageQueue(cloud.NewSQSClient(awsConf), conf.UploadEventsQueueURL)

	// Start services
	log.SetOutput(os.Stdout)
	go queue.Consume(ctx, uploadEvents, worker.HandleNotification)
	ocr.StartRecognitionAPI(listenAddr, worker)
}
