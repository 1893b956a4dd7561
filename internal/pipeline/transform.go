package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
)

// RowParser is the per-source parse and date-mutation capability.
type RowParser interface {
	Name() string
	ParseRow(row domain.RawRow) (domain.ParsedRow, bool)
	Mutate(rows []domain.ParsedRow) ([]domain.CaseRecord, []error)
}

// TransformResult is the outcome of turning raw rows into case records.
type TransformResult struct {
	Records []domain.CaseRecord
	Skipped int
	Dropped int
}

// CaseTransformer implements Transformer for one source variant.
type CaseTransformer struct {
	parser RowParser
	logger *slog.Logger
}

// NewTransformer creates a CaseTransformer for parser.
func NewTransformer(parser RowParser, logger *slog.Logger) *CaseTransformer {
	return &CaseTransformer{parser: parser, logger: logger}
}

// Transform parses every row and qualifies the report dates. Rows with the
// wrong shape are skipped and records with an unresolvable date are dropped;
// neither fails the batch.
func (t *CaseTransformer) Transform(rows []domain.RawRow) TransformResult {
	parsed := make([]domain.ParsedRow, 0, len(rows))
	var res TransformResult
	for i, row := range rows {
		rec, ok := t.parser.ParseRow(row)
		if !ok {
			res.Skipped++
			t.logger.Debug("row skipped", "source", t.parser.Name(), "row", i, "cells", len(row.Cells))
			continue
		}
		parsed = append(parsed, rec)
	}

	records, dropped := t.parser.Mutate(parsed)
	for _, err := range dropped {
		t.logger.Warn("record dropped", "source", t.parser.Name(), "error", err)
	}
	res.Records = records
	res.Dropped = len(dropped)
	return res
}
