package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

var validClasses = []string{
	"xml",
	"html",
}

var validEventSinks = []string{
	"log",
	"redis",
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type TransformConfig struct {
	Class        string   `json:"class"`
	Transformers []string `json:"transformers"`
}

type EventsConfig struct {
	Sink   string `json:"sink"`
	Stream string `json:"stream"`
}

type Config struct {
	BaseURL           string            `json:"base_url"`
	FilesDir          string            `json:"files_dir"`
	DBPath            string            `json:"db_path"`
	DefaultLocale     string            `json:"default_locale"`
	Redis             RedisConfig       `json:"redis"`
	Transforms        []TransformConfig `json:"transforms"`
	Events            EventsConfig      `json:"events"`
	CacheTTLSeconds   int               `json:"cache_ttl_seconds"`
	MaxDocumentSizeMB int               `json:"max_document_size_mb"`
	HealthPort        int               `json:"health_port"`
}

func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	setDefaults(&config)

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	if config.FilesDir == "" {
		return fmt.Errorf("files_dir is required")
	}

	if config.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	if config.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}

	for i, transformConfig := range config.Transforms {
		if !slices.Contains(validClasses, transformConfig.Class) {
			return fmt.Errorf("transforms[%d]: invalid class '%s', must be one of: %s",
				i, transformConfig.Class, strings.Join(validClasses, ", "))
		}

		if len(transformConfig.Transformers) == 0 {
			return fmt.Errorf("transforms[%d]: at least one transformer must be specified", i)
		}

		for j, name := range transformConfig.Transformers {
			if name == "" {
				return fmt.Errorf("transforms[%d].transformers[%d]: name is required", i, j)
			}
		}
	}

	if config.Events.Sink != "" && !slices.Contains(validEventSinks, config.Events.Sink) {
		return fmt.Errorf("events.sink: invalid sink '%s', must be one of: %s",
			config.Events.Sink, strings.Join(validEventSinks, ", "))
	}

	return nil
}

func setDefaults(config *Config) {
	if config.DefaultLocale == "" {
		config.DefaultLocale = "en"
	}
	if config.CacheTTLSeconds == 0 {
		config.CacheTTLSeconds = 300
	}
	if config.MaxDocumentSizeMB == 0 {
		config.MaxDocumentSizeMB = 10
	}
	if config.Events.Sink == "" {
		config.Events.Sink = "log"
	}
	if config.Events.Stream == "" {
		config.Events.Stream = "galleyd:events"
	}
}
