package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/chequebase/chequebase-ai/platform/cloud"
	"github.com/chequebase/chequebase-ai/platform/extract"
	"github.com/chequebase/chequebase-ai/platform/ledger"
	"github.com/chequebase/chequebase-ai/platform/main/config"
	"github.com/chequebase/chequebase-ai/platform/queue"
)

/*
Config Format
--------------
  receipt_bucket = string
  text_events_queue_url = string
  expense_table = string
  openai_api_key = string
  openai_model = string

  [aws]
    region = string
    access_key_id = string
    secret_access_key = string
    endpoint = string
    s3_path_style = bool
*/

type extractConfig struct {
	ReceiptBucket      string     `toml:"receipt_bucket"`
	TextEventsQueueURL string     `toml:"text_events_queue_url"`
	ExpenseTable       string     `toml:"expense_table"`
	OpenAIAPIKey       string     `toml:"openai_api_key"`
	OpenAIModel        string     `toml:"openai_model"`
	AWS                config.AWS `toml:"aws"`
}

func main() {
	fnamePtr := flag.String("config", "", "TOML configuration file path")
	flag.Parse()

	// Read configuration parameters
	var conf extractConfig
	if err := config.ReadTOMLConfig(*fnamePtr, &conf); err != nil {
		panic(err)
	}

	// Create resources
	ctx := context.Background()
	awsConf, err := cloud.NewAWSConfig(ctx, conf.AWS.CloudConfig())
	if err != nil {
		panic(err)
	}
	bucket := cloud.NewS3Bucket(cloud.NewS3Client(awsConf, conf.AWS.S3PathStyle), conf.ReceiptBucket)
	expenses := ledger.NewDynamoExpenseStore(cloud.NewDynamoDBClient(awsConf), conf.ExpenseTable)
	extractor := extract.NewOpenAIExtractor(conf.OpenAIAPIKey, conf.OpenAIModel)
	worker := extract.NewExtractionWorker(conf.ReceiptBucket, bucket, extractor, expenses)
	textEvents := queue.NewSQSMessageQueue(cloud.NewSQSClient(awsConf), conf.TextEventsQueueURL)

	// Consume recognized text notifications
	log.SetOutput(os.Stdout)
	queue.Consume(ctx, textEvents, worker.HandleNotification)
}
