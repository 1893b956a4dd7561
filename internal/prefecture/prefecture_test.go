package prefecture

import (
	"testing"
	"time"

	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(cells ...string) domain.RawRow {
	return domain.RawRow{Cells: cells}
}

func TestLookup(t *testing.T) {
	v, err := Lookup("akita")
	require.NoError(t, err)
	assert.Equal(t, "akita", v.Name())
	assert.Equal(t, AkitaURL, v.URL())
	assert.Equal(t, []string{"No", "感染判明日", "年齢"}, v.Header())

	_, err = Lookup("tokyo")
	require.ErrorIs(t, err, ErrUnknownPrefecture)
	assert.Contains(t, err.Error(), "akita")
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"akita"}, Names())
}

func TestAkita_Header_IsCopy(t *testing.T) {
	a := NewAkita()
	h := a.Header()
	h[0] = "changed"
	assert.Equal(t, "No", a.Header()[0])
}

func TestAkita_Brackets(t *testing.T) {
	b := NewAkita().Brackets()
	assert.Equal(t, 10, b.Len())
	assert.Len(t, b.Labels, b.Len())
	assert.Len(t, b.Colors, b.Len())
	assert.Equal(t, "-9", b.Labels[0])
	assert.Equal(t, "90-", b.Labels[9])
}

func TestAkita_ParseRow(t *testing.T) {
	a := NewAkita()

	tests := []struct {
		name     string
		row      domain.RawRow
		expected domain.ParsedRow
	}{
		{
			"typical row",
			row("15", "3月15日", "20歳代", "男性", "秋田市", "会社員", ""),
			domain.ParsedRow{ID: 15, DateFragment: "3-15", AgeBracket: "20歳代"},
		},
		{
			"full-width digits and suffix",
			row("１０２例目", "１２月３日", " 10歳未満 ", "女性", "横手市", "-", "-"),
			domain.ParsedRow{ID: 102, DateFragment: "12-3", AgeBracket: "10歳未満"},
		},
		{
			"date with year",
			row("2001", "2021年8月1日", "30歳代", "", "", "", ""),
			domain.ParsedRow{ID: 2001, DateFragment: "2021-8-1", AgeBracket: "30歳代"},
		},
		{
			"weekday suffix",
			row("16", "3月16日（火）", "40歳代", "", "", "", ""),
			domain.ParsedRow{ID: 16, DateFragment: "3-16", AgeBracket: "40歳代"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := a.ParseRow(tt.row)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAkita_ParseRow_Skip(t *testing.T) {
	a := NewAkita()

	tests := []struct {
		name string
		row  domain.RawRow
	}{
		{"header row has no td", row()},
		{"too few cells", row("15", "3月15日", "20歳代")},
		{"too many cells", row("15", "3月15日", "20歳代", "", "", "", "", "")},
		{"merged footnote", row("※ 欠番")},
		{"no id digits", row("欠番", "3月15日", "20歳代", "", "", "", "")},
		{"no date digits", row("15", "調査中", "20歳代", "", "", "", "")},
		{"only one date run", row("15", "3月", "20歳代", "", "", "", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := a.ParseRow(tt.row)
			assert.False(t, ok)
		})
	}
}

func TestAkita_Mutate(t *testing.T) {
	a := NewAkita()
	rows := []domain.ParsedRow{
		{ID: 10, DateFragment: "03-15", AgeBracket: "20歳代"},
		{ID: 20, DateFragment: "03-15", AgeBracket: "30歳代"},
		{ID: 21, DateFragment: "2021-03-15", AgeBracket: "40歳代"},
		{ID: 22, DateFragment: "2-30", AgeBracket: "40歳代"},
	}

	records, dropped := a.Mutate(rows)

	require.Len(t, records, 3)
	assert.Equal(t, time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), records[0].ReportDate)
	assert.Equal(t, time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC), records[1].ReportDate)
	assert.Equal(t, time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC), records[2].ReportDate)
	assert.Equal(t, "40歳代", records[2].AgeBracket)

	require.Len(t, dropped, 1)
	assert.ErrorIs(t, dropped[0], domain.ErrUnresolvedDate)
}

func TestAkita_Defaults(t *testing.T) {
	d := NewAkita().Defaults()
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), d.DailyStart)
	assert.Equal(t, time.Date(2021, 1, 7, 0, 0, 0, 0, time.UTC), d.WeeklyStart)
	assert.True(t, d.End.After(d.WeeklyStart))
}
