package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/chequebase/chequebase-ai/platform/cloud"
	"github.com/chequebase/chequebase-ai/platform/ledger"
	"github.com/chequebase/chequebase-ai/platform/main/config"
	"github.com/chequebase/chequebase-ai/platform/queue"
	"github.com/chequebase/chequebase-ai/platform/report"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
Config Format
--------------
  service_listen_port = int
  report_bucket = string
  report_requests_queue_url = string
  expense_table = string
  mongodb_uri = string
  mongodb_database = string

  [aws]
    region = string
    access_key_id = string
    secret_access_key = string
    endpoint = string
    s3_path_style = bool

mongodb_uri is optional; without it reports carry no wallet activity
*/

type reportConfig struct {
	ServiceAPIPort         int        `toml:"service_listen_port"`
	ReportBucket           string     `toml:"report_bucket"`
	ReportRequestsQueueURL string     `toml:"report_requests_queue_url"`
	ExpenseTable           string     `toml:"expense_table"`
	MongoURI               string     `toml:"mongodb_uri"`
	MongoDatabase          string     `toml:"mongodb_database"`
	AWS                    config.AWS `toml:"aws"`
}

func main() {
	fnamePtr := flag.String("config", "", "TOML configuration file path")
	flag.Parse()

	// Read configuration parameters
	var conf reportConfig
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
	expenses := ledger.NewDynamoExpenseStore(cloud.NewDynamoDBClient(awsConf), conf.ExpenseTable)
	bucket := cloud.NewS3Bucket(cloud.NewS3Client(awsConf, conf.AWS.S3PathStyle), conf.ReportBucket)

	var wallet report.WalletEntryReader
	if conf.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.MongoURI))
		if err != nil {
			panic(err)
		}
		wallet = report.NewMongoWalletReader(mongoClient.Database(conf.MongoDatabase))
	}

	generator := report.NewGenerator(expenses, wallet, bucket)
	requests := queue.NewSQSMessageQueue(cloud.NewSQSClient(awsConf), conf.ReportRequestsQueueURL)

	// Start services
	log.SetOutput(os.Stdout)
	go queue.Consume(ctx, requests, generator.HandleRequest)
	report.StartReportAccessAPI(listenAddr, generator)
}
