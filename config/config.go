package config

import (
	"github.com/caarlos0/env/v11"
)

// Config holds the environment-driven settings for the server.
type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	AWSRegion   string   `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Bucket    string   `env:"S3_BUCKET_NAME"`
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
