package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJob is the Pushgateway job name of ingest runs.
const PushJob = "covid19_ingest"

// Push sends the run's metrics to a Pushgateway, grouped by prefecture.
// Batch jobs end before a scraper could reach them, so they push instead.
func Push(ctx context.Context, gatewayURL, prefecture string, m *Metrics) error {
	err := push.New(gatewayURL, PushJob).
		Gatherer(m.Registry).
		Grouping("prefecture", prefecture).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
