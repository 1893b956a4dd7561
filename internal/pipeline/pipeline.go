package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
	"github.com/couchcryptid/covid19-age-ratio/internal/observability"
)

// Fetcher retrieves the raw rows of a source's case table.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.RawRow, error)
	Header() []string
}

// Transformer converts raw rows into fully dated case records.
type Transformer interface {
	Transform(rows []domain.RawRow) TransformResult
}

// RecordStore is the append-only store of case records.
type RecordStore interface {
	LoadExistingIDs() (domain.IDSet, bool, error)
	Append(records []domain.CaseRecord, header []string, existing domain.IDSet, headerWritten bool) (int, error)
}

// Publisher forwards newly stored records downstream.
type Publisher interface {
	Publish(ctx context.Context, records []domain.PublishedRecord) error
}

// Summary counts what one run did.
type Summary struct {
	Fetched    int
	Skipped    int
	Dropped    int
	Duplicates int
	Appended   int
	Published  int
}

// Pipeline runs the write path once: fetch, parse, qualify dates, append.
type Pipeline struct {
	source      string
	fetcher     Fetcher
	transformer Transformer
	store       RecordStore
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline. publisher may be nil to disable publishing.
func New(source string, f Fetcher, t Transformer, s RecordStore, pub Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:      source,
		fetcher:     f,
		transformer: t,
		store:       s,
		publisher:   pub,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run executes one fetch-and-append pass. Nothing is written unless the
// fetch and the whole parse succeed.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	existing, headerWritten, err := p.store.LoadExistingIDs()
	if err != nil {
		return sum, err
	}
	p.logger.Info("record store loaded", "source", p.source, "existing", len(existing))

	start := time.Now()
	rows, err := p.fetcher.Fetch(ctx)
	p.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return sum, err
	}
	sum.Fetched = len(rows)
	p.metrics.RowsFetched.Add(float64(len(rows)))

	res := p.transformer.Transform(rows)
	sum.Skipped = res.Skipped
	sum.Dropped = res.Dropped
	p.metrics.RowsSkipped.Add(float64(res.Skipped))
	p.metrics.RecordsDropped.Add(float64(res.Dropped))

	fresh := newRecords(res.Records, existing)
	sum.Duplicates = len(res.Records) - len(fresh)
	p.metrics.RecordsDuplicate.Add(float64(sum.Duplicates))

	appended, err := p.store.Append(fresh, p.fetcher.Header(), existing, headerWritten)
	sum.Appended = appended
	p.metrics.RecordsAppended.Add(float64(appended))
	if err != nil {
		return sum, fmt.Errorf("append records: %w", err)
	}

	if p.publisher != nil && len(fresh) > 0 {
		out := make([]domain.PublishedRecord, len(fresh))
		for i, r := range fresh {
			out[i] = domain.NewPublishedRecord(p.source, r)
		}
		if err := p.publisher.Publish(ctx, out); err != nil {
			return sum, err
		}
		sum.Published = len(out)
		p.metrics.RecordsPublished.Add(float64(len(out)))
	}

	p.metrics.LastSuccess.Set(float64(domain.Now().Unix()))
	p.logger.Info("ingest complete",
		"source", p.source,
		"fetched", sum.Fetched,
		"skipped", sum.Skipped,
		"dropped", sum.Dropped,
		"duplicates", sum.Duplicates,
		"appended", sum.Appended,
		"published", sum.Published,
	)
	return sum, nil
}

// newRecords returns the records whose id is neither stored already nor
// repeated earlier in the same batch, in input order.
func newRecords(records []domain.CaseRecord, existing domain.IDSet) []domain.CaseRecord {
	seen := make(domain.IDSet, len(records))
	out := make([]domain.CaseRecord, 0, len(records))
	for _, r := range records {
		if existing.Has(r.ID) || seen.Has(r.ID) {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
