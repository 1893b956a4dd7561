// Package chart renders age-ratio buckets as a stacked percentage area chart.
package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
)

// ErrNoData is returned when there is no bucket to draw.
var ErrNoData = errors.New("no buckets to render")

// Input is everything one chart needs.
type Input struct {
	Title    string
	Window   domain.Window
	Buckets  []domain.Bucket
	Brackets domain.BracketSet
	Width    int
	Height   int
}

// Build assembles the chart. Brackets are stacked in enumeration order from
// the bottom; each series is the cumulative share up to its bracket and is
// drawn top-down so lower brackets paint over the ones above. The legend
// therefore lists brackets top to bottom, matching the stack.
func Build(in Input) (gochart.Chart, error) {
	if len(in.Buckets) == 0 {
		return gochart.Chart{}, ErrNoData
	}

	xs := make([]time.Time, len(in.Buckets))
	for i, b := range in.Buckets {
		xs[i] = b.Key.Start
	}
	stacked := cumulative(domain.Series(in.Buckets, in.Brackets.Len()))

	// A single point has no span; repeat it one bucket later, or one bucket
	// earlier when later would leave the fixed daily range.
	if len(xs) == 1 {
		step := 24 * time.Hour
		if in.Window.Mode == domain.ModeWeekly {
			step = 7 * 24 * time.Hour
		}
		if in.Window.Mode == domain.ModeDaily && xs[0].Add(step).After(in.Window.End) {
			xs = []time.Time{xs[0].Add(-step), xs[0]}
		} else {
			xs = append(xs, xs[0].Add(step))
		}
		for i := range stacked {
			stacked[i] = append(stacked[i], stacked[i][0])
		}
	}

	series := make([]gochart.Series, 0, len(stacked))
	for i := len(stacked) - 1; i >= 0; i-- {
		col := colorAt(in.Brackets.Colors, i)
		series = append(series, gochart.TimeSeries{
			Name:    labelAt(in.Brackets, i),
			XValues: xs,
			YValues: stacked[i],
			Style: gochart.Style{
				StrokeColor: col,
				StrokeWidth: 1,
				FillColor:   col,
			},
		})
	}

	ch := gochart.Chart{
		Title:      in.Title,
		Width:      in.Width,
		Height:     in.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis(in.Window),
		YAxis: gochart.YAxis{
			Name:  "Percentage",
			Range: &gochart.ContinuousRange{Min: 0, Max: 100},
			Ticks: []gochart.Tick{{Value: 0, Label: "0"}, {Value: 25, Label: "25"}, {Value: 50, Label: "50"}, {Value: 75, Label: "75"}, {Value: 100, Label: "100"}},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch, nil
}

// xAxis fixes the daily range to the window; weekly follows the data.
func xAxis(w domain.Window) gochart.XAxis {
	xa := gochart.XAxis{
		Name:           "Date",
		ValueFormatter: gochart.TimeDateValueFormatter,
	}
	if w.Mode == domain.ModeDaily && w.End.After(w.Start) {
		xa.Range = &gochart.ContinuousRange{
			Min: gochart.TimeToFloat64(w.Start),
			Max: gochart.TimeToFloat64(w.End),
		}
	}
	return xa
}

// Render writes the chart as PNG, or as SVG when svg is true.
func Render(w io.Writer, in Input, svg bool) error {
	ch, err := Build(in)
	if err != nil {
		return err
	}
	var provider gochart.RendererProvider = gochart.PNG
	if svg {
		provider = gochart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// RenderFile writes the chart to path; a .svg extension selects SVG.
func RenderFile(path string, in Input) error {
	if len(in.Buckets) == 0 {
		return ErrNoData
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	svg := strings.EqualFold(filepath.Ext(path), ".svg")
	if err := Render(f, in, svg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func cumulative(series [][]float64) [][]float64 {
	out := make([][]float64, len(series))
	for i, s := range series {
		out[i] = make([]float64, len(s))
		for j, v := range s {
			if i > 0 {
				v += out[i-1][j]
			}
			out[i][j] = v
		}
	}
	return out
}

func colorAt(colors []string, i int) drawing.Color {
	if len(colors) == 0 {
		return gochart.ColorAlternateGray
	}
	return drawing.ColorFromHex(strings.TrimPrefix(colors[i%len(colors)], "#"))
}

func labelAt(b domain.BracketSet, i int) string {
	if i < len(b.Labels) {
		return b.Labels[i]
	}
	return b.Names[i]
}
