package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
)

var testBrackets = domain.BracketSet{
	Names:  []string{"10歳未満", "10歳代", "20歳代"},
	Labels: []string{"-9", "10-19", "20-"},
	Colors: []string{"#1f77b4", "#ff7f0e", "#2ca02c"},
}

func day(d int) time.Time {
	return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC)
}

func bucket(d int, pct ...float64) domain.Bucket {
	return domain.Bucket{Key: domain.BucketKey{Mode: domain.ModeDaily, Start: day(d)}, Percentages: pct}
}

func dailyInput(buckets ...domain.Bucket) Input {
	return Input{
		Title:    "New cases ratio by age (Akita)",
		Window:   domain.Window{Start: day(1), End: day(31), Mode: domain.ModeDaily},
		Buckets:  buckets,
		Brackets: testBrackets,
		Width:    800,
		Height:   400,
	}
}

func TestBuild_StacksInEnumerationOrder(t *testing.T) {
	ch, err := Build(dailyInput(bucket(1, 50, 0, 50), bucket(2, 20, 30, 50)))
	require.NoError(t, err)

	require.Len(t, ch.Series, 3)
	names := make([]string, len(ch.Series))
	for i, s := range ch.Series {
		names[i] = s.GetName()
	}
	assert.Equal(t, []string{"20-", "10-19", "-9"}, names)

	top := ch.Series[0].(gochart.TimeSeries)
	middle := ch.Series[1].(gochart.TimeSeries)
	bottom := ch.Series[2].(gochart.TimeSeries)
	assert.Equal(t, []float64{100, 100}, top.YValues)
	assert.Equal(t, []float64{50, 50}, middle.YValues)
	assert.Equal(t, []float64{50, 20}, bottom.YValues)
	assert.Equal(t, []time.Time{day(1), day(2)}, bottom.XValues)
	assert.Equal(t, top.Style.FillColor, top.Style.StrokeColor)
}

func TestBuild_Axes(t *testing.T) {
	ch, err := Build(dailyInput(bucket(1, 100, 0, 0), bucket(3, 0, 100, 0)))
	require.NoError(t, err)

	yr, ok := ch.YAxis.Range.(*gochart.ContinuousRange)
	require.True(t, ok)
	assert.Equal(t, 0.0, yr.Min)
	assert.Equal(t, 100.0, yr.Max)

	xr, ok := ch.XAxis.Range.(*gochart.ContinuousRange)
	require.True(t, ok)
	assert.Equal(t, gochart.TimeToFloat64(day(1)), xr.Min)
	assert.Equal(t, gochart.TimeToFloat64(day(31)), xr.Max)
}

func TestBuild_WeeklyAxisIsDataDriven(t *testing.T) {
	in := dailyInput(bucket(4, 100, 0, 0), bucket(11, 0, 100, 0))
	in.Window.Mode = domain.ModeWeekly

	ch, err := Build(in)
	require.NoError(t, err)
	assert.Nil(t, ch.XAxis.Range)
}

func TestBuild_SingleBucketPadded(t *testing.T) {
	ch, err := Build(dailyInput(bucket(5, 10, 20, 70)))
	require.NoError(t, err)

	ts := ch.Series[0].(gochart.TimeSeries)
	assert.Equal(t, []time.Time{day(5), day(6)}, ts.XValues)
	assert.Equal(t, []float64{100, 100}, ts.YValues)
}

func TestBuild_SingleBucketOnLastDayPadsBackwards(t *testing.T) {
	ch, err := Build(dailyInput(bucket(31, 10, 20, 70)))
	require.NoError(t, err)

	ts := ch.Series[0].(gochart.TimeSeries)
	assert.Equal(t, []time.Time{day(30), day(31)}, ts.XValues)
	assert.Equal(t, []float64{100, 100}, ts.YValues)
	for _, x := range ts.XValues {
		assert.False(t, x.After(day(31)), "point %s outside the window", x)
	}
}

func TestBuild_NoData(t *testing.T) {
	_, err := Build(dailyInput())
	require.ErrorIs(t, err, ErrNoData)
}

func TestRender_PNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, dailyInput(bucket(1, 50, 0, 50), bucket(2, 20, 30, 50)), false))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRender_SVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, dailyInput(bucket(1, 50, 0, 50), bucket(2, 20, 30, 50)), true))
	assert.Contains(t, buf.String(), "<svg")
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	in := dailyInput(bucket(1, 50, 0, 50), bucket(2, 20, 30, 50))

	pngPath := filepath.Join(dir, "ratio.png")
	require.NoError(t, RenderFile(pngPath, in))
	b, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))

	svgPath := filepath.Join(dir, "ratio.SVG")
	require.NoError(t, RenderFile(svgPath, in))
	b, err = os.ReadFile(svgPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")
}

func TestCumulative(t *testing.T) {
	got := cumulative([][]float64{{10, 0}, {30, 50}, {60, 50}})
	assert.Equal(t, [][]float64{{10, 0}, {40, 50}, {100, 100}}, got)
}
