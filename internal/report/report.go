// Package report turns a stored case CSV into the age-ratio chart and,
// optionally, a spreadsheet of the same buckets.
package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/covid19-age-ratio/internal/adapter/chart"
	"github.com/couchcryptid/covid19-age-ratio/internal/adapter/csvstore"
	"github.com/couchcryptid/covid19-age-ratio/internal/adapter/xlsx"
	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
	"github.com/couchcryptid/covid19-age-ratio/internal/prefecture"
)

// Options controls one report run. Zero Start or End fall back to the
// variant's defaults for the mode.
type Options struct {
	Mode   domain.Mode
	Start  time.Time
	End    time.Time
	Out    string
	XLSX   string
	Width  int
	Height int
}

// Result summarizes what was read and drawn.
type Result struct {
	Records int
	Window  domain.Window
	Buckets []domain.Bucket
}

// Reporter runs the read path for one prefecture.
type Reporter struct {
	variant prefecture.Variant
	logger  *slog.Logger
}

// New creates a Reporter for variant.
func New(variant prefecture.Variant, logger *slog.Logger) *Reporter {
	return &Reporter{variant: variant, logger: logger}
}

// WindowFor resolves the aggregation window, filling zero bounds from the
// variant defaults.
func WindowFor(v prefecture.Variant, mode domain.Mode, start, end time.Time) domain.Window {
	d := v.Defaults()
	if start.IsZero() {
		start = d.DailyStart
		if mode == domain.ModeWeekly {
			start = d.WeeklyStart
		}
	}
	if end.IsZero() {
		end = d.End
	}
	return domain.Window{Start: start, End: end, Mode: mode}
}

// Title is the chart title for the variant.
func Title(v prefecture.Variant) string {
	return fmt.Sprintf("New cases ratio by age (%s)", v.Title())
}

// Run reads the CSV at path, aggregates it and writes the outputs named in
// opts. A window without recognized records is not an error: the chart is
// skipped with a warning and the spreadsheet holds only its header row.
func (r *Reporter) Run(path string, opts Options) (Result, error) {
	header := r.variant.Header()
	cols := csvstore.Columns{ID: header[0], Date: header[1], Age: header[2]}

	records, err := csvstore.New(path).ReadAll(cols)
	if err != nil {
		return Result{}, fmt.Errorf("read records: %w", err)
	}

	w := WindowFor(r.variant, opts.Mode, opts.Start, opts.End)
	if w.End.Before(w.Start) {
		return Result{}, fmt.Errorf("window end %s is before start %s", w.End.Format(domain.DateLayout), w.Start.Format(domain.DateLayout))
	}

	brackets := r.variant.Brackets()
	buckets := domain.Aggregate(records, brackets, w)
	r.logger.Info("records aggregated",
		"prefecture", r.variant.Name(),
		"mode", w.Mode,
		"start", w.Start.Format(domain.DateLayout),
		"end", w.End.Format(domain.DateLayout),
		"records", len(records),
		"buckets", len(buckets),
	)

	res := Result{Records: len(records), Window: w, Buckets: buckets}

	switch {
	case opts.Out == "":
	case len(buckets) == 0:
		r.logger.Warn("no recognized records in window, chart not written", "path", opts.Out)
	default:
		in := chart.Input{
			Title:    Title(r.variant),
			Window:   w,
			Buckets:  buckets,
			Brackets: brackets,
			Width:    opts.Width,
			Height:   opts.Height,
		}
		if err := chart.RenderFile(opts.Out, in); err != nil {
			return res, fmt.Errorf("render chart: %w", err)
		}
		r.logger.Info("chart written", "path", opts.Out)
	}

	if opts.XLSX != "" {
		if err := xlsx.WriteFile(opts.XLSX, buckets, brackets); err != nil {
			return res, fmt.Errorf("export spreadsheet: %w", err)
		}
		r.logger.Info("spreadsheet written", "path", opts.XLSX)
	}

	return res, nil
}
