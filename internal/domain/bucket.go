package domain

import (
	"fmt"
	"time"
)

// Mode selects the width of a time bucket.
type Mode string

const (
	ModeDaily  Mode = "daily"
	ModeWeekly Mode = "weekly"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDaily, ModeWeekly:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown bucket mode %q", s)
	}
}

// Window is the inclusive date range and bucket width of one aggregation.
type Window struct {
	Start time.Time
	End   time.Time
	Mode  Mode
}

// BucketKey identifies a bucket. Start is the day itself for daily buckets
// and the Monday of the ISO week for weekly ones.
type BucketKey struct {
	Mode    Mode
	Start   time.Time
	ISOYear int
	Week    int
}

func (k BucketKey) String() string {
	if k.Mode == ModeWeekly {
		return fmt.Sprintf("%d-W%02d", k.ISOYear, k.Week)
	}
	return k.Start.Format(DateLayout)
}

// Bucket holds the per-bracket counts of one time bucket and their share of
// the bucket total, both in bracket enumeration order.
type Bucket struct {
	Key         BucketKey
	Counts      []int
	Total       int
	Percentages []float64
}

type bucketID struct {
	year int
	n    int
}

func idOf(day time.Time, mode Mode) bucketID {
	if mode == ModeWeekly {
		y, w := day.ISOWeek()
		return bucketID{year: y, n: w}
	}
	return bucketID{year: day.Year(), n: day.YearDay()}
}

// Aggregate groups records inside the window by time bucket and age bracket
// and converts the counts to percentages of each bucket's total.
//
// Buckets come out in chronological order. Days are walked from Start to End
// and a bucket is emitted the first time a day maps to it; later days of the
// same ISO week are skipped. Records whose bracket is not in the enumeration
// do not count towards the total, and buckets with a zero total are omitted.
func Aggregate(records []CaseRecord, brackets BracketSet, w Window) []Bucket {
	start := truncateDay(w.Start)
	end := truncateDay(w.End)
	if end.Before(start) || brackets.Len() == 0 {
		return nil
	}

	groups := make(map[bucketID][]int)
	for _, r := range records {
		day := truncateDay(r.ReportDate)
		if day.Before(start) || day.After(end) {
			continue
		}
		i := brackets.Index(r.AgeBracket)
		if i < 0 {
			continue
		}
		id := idOf(day, w.Mode)
		counts, ok := groups[id]
		if !ok {
			counts = make([]int, brackets.Len())
			groups[id] = counts
		}
		counts[i]++
	}

	var out []Bucket
	seen := make(map[bucketID]bool)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		id := idOf(day, w.Mode)
		if seen[id] {
			continue
		}
		counts, ok := groups[id]
		if !ok {
			continue
		}
		seen[id] = true

		total := 0
		for _, c := range counts {
			total += c
		}
		if total == 0 {
			continue
		}

		pct := make([]float64, len(counts))
		for i, c := range counts {
			pct[i] = float64(c) / float64(total) * 100
		}
		out = append(out, Bucket{
			Key:         keyFor(day, w.Mode),
			Counts:      counts,
			Total:       total,
			Percentages: pct,
		})
	}
	return out
}

// Series transposes buckets into one series per bracket, aligned index for
// index with the bucket sequence.
func Series(buckets []Bucket, n int) [][]float64 {
	series := make([][]float64, n)
	for i := range series {
		series[i] = make([]float64, len(buckets))
		for j, b := range buckets {
			if i < len(b.Percentages) {
				series[i][j] = b.Percentages[i]
			}
		}
	}
	return series
}

func keyFor(day time.Time, mode Mode) BucketKey {
	y, w := day.ISOWeek()
	start := day
	if mode == ModeWeekly {
		// ISO weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
	}
	return BucketKey{Mode: mode, Start: start, ISOYear: y, Week: w}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
