// Package prefecture holds one source variant per supported prefecture:
// where its case table lives, how a table row is parsed and how partial
// report dates are qualified.
package prefecture

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
)

// ErrUnknownPrefecture is returned by Lookup for an unregistered name.
var ErrUnknownPrefecture = errors.New("unknown prefecture")

// Variant is the capability set of one source.
type Variant interface {
	Name() string
	Title() string
	URL() string
	// Header returns the CSV column names: id, report date, age bracket.
	Header() []string
	Brackets() domain.BracketSet
	Defaults() Defaults
	// ParseRow extracts a record from one table row; ok is false when the
	// row does not have the source's shape.
	ParseRow(row domain.RawRow) (rec domain.ParsedRow, ok bool)
	// Mutate qualifies every date fragment. Rows whose date cannot be
	// resolved are left out and reported in dropped.
	Mutate(rows []domain.ParsedRow) (records []domain.CaseRecord, dropped []error)
}

// Defaults are the chart windows used when no dates are given.
type Defaults struct {
	DailyStart  time.Time
	WeeklyStart time.Time
	End         time.Time
}

// Profile is the static configuration shared by all variants.
type Profile struct {
	ID        string
	Display   string
	SourceURL string
	Columns   []string
	Ages      domain.BracketSet
	YearRules []domain.YearRule
	Window    Defaults
}

func (p Profile) Name() string                { return p.ID }
func (p Profile) Title() string               { return p.Display }
func (p Profile) URL() string                 { return p.SourceURL }
func (p Profile) Header() []string            { return append([]string(nil), p.Columns...) }
func (p Profile) Brackets() domain.BracketSet { return p.Ages }
func (p Profile) Defaults() Defaults          { return p.Window }

// Mutate qualifies date fragments using the profile's year rules.
func (p Profile) Mutate(rows []domain.ParsedRow) ([]domain.CaseRecord, []error) {
	records := make([]domain.CaseRecord, 0, len(rows))
	var dropped []error
	for _, r := range rows {
		date, err := domain.QualifyDate(r.ID, r.DateFragment, p.YearRules)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		records = append(records, domain.CaseRecord{ID: r.ID, ReportDate: date, AgeBracket: r.AgeBracket})
	}
	return records, dropped
}

var variants = map[string]Variant{
	akitaName: NewAkita(),
}

// Lookup returns the variant registered under name.
func Lookup(name string) (Variant, error) {
	v, ok := variants[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownPrefecture, name, Names())
	}
	return v, nil
}

// Names lists the registered prefectures in sorted order.
func Names() []string {
	names := make([]string, 0, len(variants))
	for n := range variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
