package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds settings shared by the commands, populated from environment
// variables. Per-invocation inputs (prefecture, paths, dates) are flags.
type Config struct {
	LogLevel  string
	LogFormat string

	FetchTimeout   time.Duration
	FetchUserAgent string
	// FetchURL replaces the prefecture's page URL when set.
	FetchURL string

	// Kafka publishing of appended records; disabled when no brokers are set.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	PushgatewayURL string

	ChartWidth  int
	ChartHeight int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "30s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	width, err := parseDimension("CHART_WIDTH", 1024)
	if err != nil {
		return nil, err
	}
	height, err := parseDimension("CHART_HEIGHT", 600)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		LogLevel:       sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		FetchTimeout:   fetchTimeout,
		FetchUserAgent: sharedcfg.EnvOrDefault("FETCH_USER_AGENT", "covid19-age-ratio/1.0"),
		FetchURL:       os.Getenv("FETCH_URL"),
		KafkaBrokers:   brokers,
		KafkaTopic:     sharedcfg.EnvOrDefault("KAFKA_TOPIC", "covid19-case-records"),
		KafkaEnabled:   len(brokers) > 0,
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
		ChartWidth:     width,
		ChartHeight:    height,
	}

	return cfg, nil
}

func parseDimension(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 200 || n > 8000 {
		return 0, fmt.Errorf("invalid %s: must be an integer between 200 and 8000", key)
	}
	return n, nil
}
