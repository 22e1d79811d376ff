package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/chequebase/chequebase-ai/platform/cloud"
	"github.com/chequebase/chequebase-ai/platform/directory"
	"github.com/chequebase/chequebase-ai/platform/gateway"
	"github.com/chequebase/chequebase-ai/platform/main/config"
	"github.com/chequebase/chequebase-ai/platform/queue"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
Config Format
--------------
  gateway_listen_port = int
  upload_api = string
  report_requests_queue_url = string
  access_token_secret = string
  mongodb_uri = string
  mongodb_database = string

  [aws]
    region = string
    access_key_id = string
    secret_access_key = string
    endpoint = string

access_token_secret falls back to the ACCESS_TOKEN_SECRET environment variable
*/

type gatewayConfig struct {
	GatewayAPIPort         int        `toml:"gateway_listen_port"`
	UploadAPIAddress       string     `toml:"upload_api"`
	ReportRequestsQueueURL string     `toml:"report_requests_queue_url"`
	AccessTokenSecret      string     `toml:"access_token_secret"`
	MongoURI               string     `toml:"mongodb_uri"`
	MongoDatabase          string     `toml:"mongodb_database"`
	AWS                    config.AWS `toml:"aws"`
}

func main() {
	fnamePtr := flag.String("config", "", "TOML configuration file path")
	flag.Parse()

	// Read configuration parameters
	var conf gatewayConfig
	if err := config.ReadTOMLConfig(*fnamePtr, &conf); err != nil {
		panic(err)
	}
	if conf.AccessTokenSecret == "" {
		conf.AccessTokenSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	}
	listenAddr := ":" + strconv.Itoa(conf.GatewayAPIPort)

	// Create resources
	ctx := context.Background()
	awsConf, err := cloud.NewAWSConfig(ctx, conf.AWS.CloudConfig())
	if err != nil {
		panic(err)
	}
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.MongoURI))
	if err != nil {
		panic(err)
	}

	verifier := directory.NewHS256TokenVerifier(conf.AccessTokenSecret)
	users := directory.NewMongoDirectory(mongoClient.Database(conf.MongoDatabase))
	access := directory.NewAccessController(verifier, users)
	requests := queue.NewSQSMessageQueue(cloud.NewSQSClient(awsConf), conf.ReportRequestsQueueURL)

	// Start service
	log.SetOutput(os.Stdout)
	gateway.StartGatewayAPI(listenAddr, access, requests, conf.UploadAPIAddress)
}
