package prefecture

import (
	"fmt"
	"time"

	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
)

const (
	akitaName    = "akita"
	akitaColumns = 7

	// AkitaURL is the page listing every confirmed case in Akita.
	// Older snapshots of the same table live under /pages/archive/60163,
	// 59894, 59729, 59331, 58645, 57552, 57444 and 57443.
	AkitaURL = "https://www.pref.akita.lg.jp/pages/archive/47957"
)

// Akita parses the Akita prefecture case table.
type Akita struct {
	Profile
}

// NewAkita returns the Akita variant.
func NewAkita() *Akita {
	return &Akita{Profile: Profile{
		ID:        akitaName,
		Display:   "Akita",
		SourceURL: AkitaURL,
		Columns:   []string{"No", "感染判明日", "年齢"},
		Ages: domain.BracketSet{
			Names:  []string{"10歳未満", "10歳代", "20歳代", "30歳代", "40歳代", "50歳代", "60歳代", "70歳代", "80歳代", "90歳以上"},
			Labels: []string{"-9", "10-19", "20-29", "30-39", "40-49", "50-59", "60-69", "70-79", "80-89", "90-"},
			Colors: []string{
				"#1f77b4",
				"#ff7f0e",
				"#2ca02c",
				"#d62728",
				"#9467bd",
				"#8c564b",
				"#e377c2",
				"#7f7f7f",
				"#bcbd22",
				"#17becf",
			},
		},
		// Case 13 was the last one reported in 2020.
		YearRules: []domain.YearRule{
			{FromID: 0, Year: 2020},
			{FromID: 14, Year: 2021},
		},
		Window: Defaults{
			DailyStart:  time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			WeeklyStart: time.Date(2021, 1, 7, 0, 0, 0, 0, time.UTC),
			End:         time.Date(2021, 9, 17, 0, 0, 0, 0, time.UTC),
		},
	}}
}

// ParseRow reads No (cell 0), the report date "M月D日" (cell 1) and the age
// bracket (cell 2). Rows without exactly seven cells are header, footnote
// or merged-cell rows and are skipped.
func (a *Akita) ParseRow(row domain.RawRow) (domain.ParsedRow, bool) {
	if len(row.Cells) != akitaColumns {
		return domain.ParsedRow{}, false
	}
	id, ok := domain.LeadingInt(row.Cells[0])
	if !ok {
		return domain.ParsedRow{}, false
	}
	date := domain.DigitRuns(row.Cells[1])
	if len(date) < 2 {
		return domain.ParsedRow{}, false
	}
	fragment := fmt.Sprintf("%s-%s", date[0], date[1])
	if len(date) >= 3 && len(date[0]) == 4 {
		// "2021年3月15日" already carries its year.
		fragment = fmt.Sprintf("%s-%s-%s", date[0], date[1], date[2])
	}
	return domain.ParsedRow{
		ID:           id,
		DateFragment: fragment,
		AgeBracket:   domain.NormalizeCell(row.Cells[2]),
	}, true
}
