package domain

import (
	"time"
)

// DateLayout is the on-disk format of a fully qualified report date.
const DateLayout = "2006-01-02"

// RawRow is one table row as scraped: the text of each cell, in order.
type RawRow struct {
	Cells []string
}

// ParsedRow is a row whose id and age are known but whose report date may
// still be a partial fragment such as "3-15".
type ParsedRow struct {
	ID           int
	DateFragment string
	AgeBracket   string
}

// CaseRecord is one reported case as kept in the record store.
type CaseRecord struct {
	ID         int       `json:"id"`
	ReportDate time.Time `json:"report_date"`
	AgeBracket string    `json:"age_bracket"`
}

// PublishedRecord is the message form of a newly appended case.
type PublishedRecord struct {
	Prefecture string    `json:"prefecture"`
	ID         int       `json:"id"`
	ReportDate string    `json:"report_date"`
	AgeBracket string    `json:"age_bracket"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// NewPublishedRecord stamps a record with the prefecture and the current time.
func NewPublishedRecord(prefecture string, r CaseRecord) PublishedRecord {
	return PublishedRecord{
		Prefecture: prefecture,
		ID:         r.ID,
		ReportDate: r.ReportDate.Format(DateLayout),
		AgeBracket: r.AgeBracket,
		FetchedAt:  clock.Now().UTC(),
	}
}

// IDSet is a set of record ids.
type IDSet map[int]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// BracketSet is the fixed, ordered age enumeration of one source together
// with its legend labels and palette. Index i of each slice describes the
// same bracket.
type BracketSet struct {
	Names  []string
	Labels []string
	Colors []string
}

// Len returns the number of brackets.
func (b BracketSet) Len() int { return len(b.Names) }

// Index returns the position of name in the enumeration, or -1.
func (b BracketSet) Index(name string) int {
	for i, n := range b.Names {
		if n == name {
			return i
		}
	}
	return -1
}
