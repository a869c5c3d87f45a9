package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Weather upstreams.
	ACISURL         string
	OutlookURL      string
	OutlookToken    string
	PETURL          string
	PETToken        string
	UpstreamTimeout time.Duration

	// WeatherCacheSize bounds the LRU of fetched weather inputs; 0 disables it.
	WeatherCacheSize int

	// OutlookHorizonDays is how far PET is extended past the observed days.
	OutlookHorizonDays int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("UPSTREAM_TIMEOUT", "15s"))
	if err != nil || upstreamTimeout <= 0 {
		return nil, errors.New("invalid UPSTREAM_TIMEOUT")
	}

	cacheSize, err := parseNonNegative("WEATHER_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	horizon, err := parseNonNegative("OUTLOOK_HORIZON_DAYS", 28)
	if err != nil || horizon < 1 {
		return nil, errors.New("invalid OUTLOOK_HORIZON_DAYS")
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "deficit-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "deficit-forecasts"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "water-deficit"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ACISURL:          sharedcfg.EnvOrDefault("ACIS_URL", "https://grid2.rcc-acis.org/GridData"),
		OutlookURL:       sharedcfg.EnvOrDefault("OUTLOOK_URL", "https://precip-outlook.rcc-acis.workers.dev/getOutlook"),
		OutlookToken:     os.Getenv("OUTLOOK_TOKEN"),
		PETURL:           sharedcfg.EnvOrDefault("PET_URL", "https://csf-irrigation-api-worker.rcc-acis.workers.dev/"),
		PETToken:         os.Getenv("PET_TOKEN"),
		UpstreamTimeout:  upstreamTimeout,
		WeatherCacheSize: cacheSize,

		OutlookHorizonDays: horizon,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.ACISURL == "" || cfg.OutlookURL == "" || cfg.PETURL == "" {
		return nil, errors.New("ACIS_URL, OUTLOOK_URL, and PET_URL must not be empty")
	}

	return cfg, nil
}

func parseNonNegative(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}
