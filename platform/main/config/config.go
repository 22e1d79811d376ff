package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/chequebase/chequebase-ai/platform/cloud"
)

// ReadTOMLConfig decodes the TOML file at fname into conf
func ReadTOMLConfig(fname string, conf interface{}) error {
	data, err := os.ReadFile(fname)
	if err != nil {
		return err
	}

	if _, err = toml.Decode(string(data), conf); err != nil {
		return err
	}
	return nil
}

/*
AWS is the [aws] table every service configuration shares. Empty credentials
fall through to the default provider chain; endpoint and path style are only
set when running against a local stack
*/
type AWS struct {
	Region          string `toml:"region"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	Endpoint        string `toml:"endpoint"`
	S3PathStyle     bool   `toml:"s3_path_style"`
}

// CloudConfig converts the table to the shared client configuration
func (a AWS) CloudConfig() cloud.Config {
	return cloud.Config{
		Region:          a.Region,
		AccessKeyID:     a.AccessKeyID,
		SecretAccessKey: a.SecretAccessKey,
		Endpoint:        a.Endpoint,
	}
}
