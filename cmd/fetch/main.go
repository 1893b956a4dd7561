// Command fetch scrapes one prefecture's case table and appends the new
// records to a local CSV file.
//
// Usage:
//
//	fetch --prefecture akita --file data/akita.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/covid19-age-ratio/internal/adapter/csvstore"
	kafkaadapter "github.com/couchcryptid/covid19-age-ratio/internal/adapter/kafka"
	"github.com/couchcryptid/covid19-age-ratio/internal/adapter/web"
	"github.com/couchcryptid/covid19-age-ratio/internal/config"
	"github.com/couchcryptid/covid19-age-ratio/internal/observability"
	"github.com/couchcryptid/covid19-age-ratio/internal/pipeline"
	"github.com/couchcryptid/covid19-age-ratio/internal/prefecture"
)

func main() {
	name := flag.String("prefecture", "", "source prefecture")
	file := flag.String("file", "", "CSV file to append records to")
	flag.Parse()

	if *name == "" || *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *name, *file); err != nil {
		logger.Error("fetch failed", "prefecture", *name, "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, name, file string) error {
	variant, err := prefecture.Lookup(name)
	if err != nil {
		return err
	}

	url := variant.URL()
	if cfg.FetchURL != "" {
		url = cfg.FetchURL
	}

	metrics := observability.NewMetrics()
	fetcher := web.NewTableFetcher(variant.Name(), url, variant.Header(), cfg.FetchTimeout, cfg.FetchUserAgent, logger)
	transformer := pipeline.NewTransformer(variant, logger)
	store := csvstore.New(file)

	// Publishing is feature-flagged via KAFKA_BROKERS.
	var publisher pipeline.Publisher
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(variant.Name(), fetcher, transformer, store, publisher, logger, metrics)
	_, runErr := p.Run(ctx)

	if cfg.PushgatewayURL != "" {
		if err := observability.Push(ctx, cfg.PushgatewayURL, variant.Name(), metrics); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("push metrics: %w", err))
		}
	}
	return runErr
}
