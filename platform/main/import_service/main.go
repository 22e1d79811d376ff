package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/chequebase/chequebase-ai/platform/cloud"
	"github.com/chequebase/chequebase-ai/platform/imports"
	"github.com/chequebase/chequebase-ai/platform/main/config"
	"github.com/chequebase/chequebase-ai/platform/queue"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
Config Format
--------------
  socket_listen_port = int
  socket_api_address = string
  import_requests_queue_url = string
  redis_address = string
  mmdb_geo_file = string
  openai_api_key = string
  openai_model = string
  mongodb_uri = string
  mongodb_database = string

  [aws]
    region = string
    access_key_id = string
    secret_access_key = string
    endpoint = string

mmdb_geo_file is optional; without it sessions carry an unknown country.
mongodb_uri is optional; without it invites are not written to the user
directory
*/

type importConfig struct {
	SocketAPIPort          int        `toml:"socket_listen_port"`
	SocketAPIAddress       string     `toml:"socket_api_address"`
	ImportRequestsQueueURL string     `toml:"import_requests_queue_url"`
	RedisAddress           string     `toml:"redis_address"`
	MaxMindGeoFile         string     `toml:"mmdb_geo_file"`
	OpenAIAPIKey           string     `toml:"openai_api_key"`
	OpenAIModel            string     `toml:"openai_model"`
	MongoURI               string     `toml:"mongodb_uri"`
	MongoDatabase          string     `toml:"mongodb_database"`
	AWS                    config.AWS `toml:"aws"`
}

func main() {
	fnamePtr := flag.String("config", "", "TOML configuration file path")
	flag.Parse()

	// Read configuration parameters
	var conf importConfig
	if err := config.ReadTOMLConfig(*fnamePtr, &conf); err != nil {
		panic(err)
	}
	listenAddr := ":" + strconv.Itoa(conf.SocketAPIPort)

	// Create resources
	ctx := context.Background()
	awsConf, err := cloud.NewAWSConfig(ctx, conf.AWS.CloudConfig())
	if err != nil {
		panic(err)
	}
	connections := imports.NewMemoryConnectionRegistry()
	sessions := imports.NewRedisSessionStore(conf.RedisAddress)
	requests := queue.NewSQSMessageQueue(cloud.NewSQSClient(awsConf), conf.ImportRequestsQueueURL)

	var countries imports.IPCountryFinder
	if conf.MaxMindGeoFile != "" {
		finder, err := imports.NewMaxMindCountryFinder(conf.MaxMindGeoFile)
		if err != nil {
			panic(err)
		}
		countries = finder
	}

	var importer imports.UserImporter
	if conf.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.MongoURI))
		if err != nil {
			panic(err)
		}
		importer = imports.NewMongoUserImporter(mongoClient.Database(conf.MongoDatabase))
	}

	mapper := imports.NewOpenAIRowMapper(conf.OpenAIAPIKey, conf.OpenAIModel)
	pusher := imports.NewSocketAPIClient(conf.SocketAPIAddress)
	worker := imports.NewImportWorker(sessions, mapper, importer, pusher)

	// Start services
	log.SetOutput(os.Stdout)
	go queue.Consume(ctx, requests, worker.HandleMessage)
	imports.StartImportSocketAPI(listenAddr, connections, sessions, countries, requests)
}
