// Command ratio reads a case CSV written by fetch and renders the share of
// new cases per age bracket as a stacked area chart.
//
// Usage:
//
//	ratio -prefecture akita -mode weekly -out weekly.png data/akita.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/covid19-age-ratio/internal/config"
	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
	"github.com/couchcryptid/covid19-age-ratio/internal/observability"
	"github.com/couchcryptid/covid19-age-ratio/internal/prefecture"
	"github.com/couchcryptid/covid19-age-ratio/internal/report"
)

// options are the command-line inputs of one run.
type options struct {
	CSV        string `validate:"required"`
	Prefecture string `validate:"required"`
	Mode       string `validate:"required,oneof=daily weekly"`
	Start      string `validate:"omitempty,datetime=2006-01-02"`
	End        string `validate:"omitempty,datetime=2006-01-02"`
	Out        string `validate:"required,endswith=.png|endswith=.svg"`
	XLSX       string `validate:"omitempty,endswith=.xlsx"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	if err := run(cfg, logger, opts); err != nil {
		logger.Error("ratio failed", "csv", opts.CSV, "error", err)
		os.Exit(1)
	}
}

func parseOptions(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("ratio", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "usage: ratio [flags] <csv>")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.Prefecture, "prefecture", "akita", "source prefecture")
	fs.StringVar(&opts.Mode, "mode", string(domain.ModeDaily), "bucket mode: daily or weekly")
	fs.StringVar(&opts.Start, "start", "", "first day, YYYY-MM-DD (default depends on prefecture and mode)")
	fs.StringVar(&opts.End, "end", "", "last day, YYYY-MM-DD (default depends on prefecture)")
	fs.StringVar(&opts.Out, "out", "chart.png", "chart output; .png or .svg")
	fs.StringVar(&opts.XLSX, "xlsx", "", "optional spreadsheet of the bucket table")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, fmt.Errorf("expected one CSV path, got %d arguments", fs.NArg())
	}
	opts.CSV = fs.Arg(0)

	if err := validate.Struct(opts); err != nil {
		return opts, fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}

func run(cfg *config.Config, logger *slog.Logger, opts options) error {
	variant, err := prefecture.Lookup(opts.Prefecture)
	if err != nil {
		return err
	}
	mode, err := domain.ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	start, err := parseDay(opts.Start)
	if err != nil {
		return err
	}
	end, err := parseDay(opts.End)
	if err != nil {
		return err
	}

	_, err = report.New(variant, logger).Run(opts.CSV, report.Options{
		Mode:   mode,
		Start:  start,
		End:    end,
		Out:    opts.Out,
		XLSX:   opts.XLSX,
		Width:  cfg.ChartWidth,
		Height: cfg.ChartHeight,
	})
	return err
}

// parseDay parses an optional YYYY-MM-DD flag; empty means unset.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(domain.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
