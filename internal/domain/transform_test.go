package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var akitaRules = []YearRule{{FromID: 0, Year: 2020}, {FromID: 14, Year: 2021}}

func TestQualifyDate(t *testing.T) {
	tests := []struct {
		name     string
		id       int
		fragment string
		expected time.Time
	}{
		{"below cutoff", 10, "03-15", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"at cutoff", 14, "3-15", time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"above cutoff", 20, "03-15", time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"already qualified", 20, "2021-03-15", time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"qualified year wins over rules", 1, "2022-01-02", time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"unpadded fragment", 3, "4-1", time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QualifyDate(tt.id, tt.fragment, akitaRules)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQualifyDate_Deterministic(t *testing.T) {
	a, err := QualifyDate(10, "03-15", akitaRules)
	require.NoError(t, err)
	b, err := QualifyDate(10, "03-15", akitaRules)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestQualifyDate_Unresolved(t *testing.T) {
	tests := []struct {
		name     string
		id       int
		fragment string
		rules    []YearRule
	}{
		{"id below every rule", 3, "03-15", []YearRule{{FromID: 5, Year: 2021}}},
		{"no rules", 3, "03-15", nil},
		{"single component", 20, "15", akitaRules},
		{"four components", 20, "2021-03-15-1", akitaRules},
		{"non numeric", 20, "3-xx", akitaRules},
		{"empty", 20, "", akitaRules},
		{"invalid day", 20, "2-30", akitaRules},
		{"invalid month", 20, "13-01", akitaRules},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := QualifyDate(tt.id, tt.fragment, tt.rules)
			require.ErrorIs(t, err, ErrUnresolvedDate)
		})
	}
}

func TestYearFor(t *testing.T) {
	rules := []YearRule{{FromID: 1, Year: 2020}, {FromID: 14, Year: 2021}, {FromID: 5000, Year: 2022}}

	_, ok := YearFor(0, rules)
	assert.False(t, ok)

	for id, want := range map[int]int{1: 2020, 13: 2020, 14: 2021, 4999: 2021, 5000: 2022, 90000: 2022} {
		got, ok := YearFor(id, rules)
		assert.True(t, ok)
		assert.Equal(t, want, got, "id %d", id)
	}
}

func TestDigitRuns(t *testing.T) {
	assert.Equal(t, []string{"3", "15"}, DigitRuns("3月15日"))
	assert.Equal(t, []string{"12", "3"}, DigitRuns("１２月３日"))
	assert.Equal(t, []string{"1024"}, DigitRuns(" 1024例目 "))
	assert.Empty(t, DigitRuns("調査中"))
}

func TestLeadingInt(t *testing.T) {
	n, ok := LeadingInt("No.１５")
	require.True(t, ok)
	assert.Equal(t, 15, n)

	_, ok = LeadingInt("-")
	assert.False(t, ok)
}

func TestParseReportDate(t *testing.T) {
	want := time.Date(2020, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2020-03-05", "2020-3-5", " 2020-03-05 ", "2020-03-05 00:00:00", "2020-03-05T00:00:00Z"} {
		got, err := ParseReportDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := ParseReportDate("3月5日")
	require.Error(t, err)
}
