package config

import (
	"log"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/inboxpilot/docsort/internal/logger"
	"github.com/inboxpilot/docsort/internal/tracing"
)

type Config struct {
	AppConfig      *AppConfig
	Logger         *logger.Config
	Tracing        *tracing.JaegerConfig
	IMAPConfig     *IMAPConfig
	FilingConfig   *FilingConfig
	DatabaseConfig *DatabaseConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:      &AppConfig{},
		Logger:         &logger.Config{},
		Tracing:        &tracing.JaegerConfig{},
		IMAPConfig:     &IMAPConfig{},
		FilingConfig:   &FilingConfig{},
		DatabaseConfig: &DatabaseConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, err
	}

	if config.FilingConfig.LedgerPath == "" {
		config.FilingConfig.LedgerPath = filepath.Join(config.FilingConfig.DownloadDir, ".processed_hashes.txt")
	}

	return config, nil
}
