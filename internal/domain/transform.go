package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"
)

// digitsRe matches a run of ASCII digits, e.g. "3月15日" -> ["3", "15"].
var digitsRe = regexp.MustCompile(`\d+`)

// YearRule assigns Year to every record whose id is at least FromID.
// Rules are ordered by ascending FromID; the last matching rule wins.
type YearRule struct {
	FromID int
	Year   int
}

// NormalizeCell folds full-width characters to ASCII and trims whitespace.
func NormalizeCell(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// DigitRuns returns every run of ASCII digits in s, in order.
func DigitRuns(s string) []string {
	return digitsRe.FindAllString(NormalizeCell(s), -1)
}

// LeadingInt parses the first digit run of s.
func LeadingInt(s string) (int, bool) {
	runs := DigitRuns(s)
	if len(runs) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(runs[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

// YearFor returns the year assigned to id by rules.
func YearFor(id int, rules []YearRule) (int, bool) {
	year, ok := 0, false
	for _, r := range rules {
		if id < r.FromID {
			break
		}
		year, ok = r.Year, true
	}
	return year, ok
}

// QualifyDate turns a date fragment into a full calendar date. A fragment
// with three components ("2021-03-15") is taken as is; a month-day fragment
// ("3-15") gets its year from the id via rules.
func QualifyDate(id int, fragment string, rules []YearRule) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(fragment), "-")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: id %d: fragment %q", ErrUnresolvedDate, id, fragment)
		}
		nums[i] = n
	}

	var y, m, d int
	switch len(nums) {
	case 3:
		y, m, d = nums[0], nums[1], nums[2]
	case 2:
		year, ok := YearFor(id, rules)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: id %d precedes every year rule", ErrUnresolvedDate, id)
		}
		y, m, d = year, nums[0], nums[1]
	default:
		return time.Time{}, fmt.Errorf("%w: id %d: fragment %q", ErrUnresolvedDate, id, fragment)
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range values; a round trip catches "2-30".
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, fmt.Errorf("%w: id %d: invalid date %q", ErrUnresolvedDate, id, fragment)
	}
	return t, nil
}

// ParseReportDate parses a stored report date. Month and day may be unpadded
// ("2020-3-5") and a trailing time part is ignored.
func ParseReportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " T"); i >= 0 {
		s = s[:i]
	}
	return time.ParseInLocation("2006-1-2", s, time.UTC)
}
