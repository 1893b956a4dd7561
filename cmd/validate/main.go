// Command validate performs integrity checks on a record store CSV written
// by fetch: header layout, id uniqueness, report date format and range, age
// bracket coverage, and agreement with the read path.
//
// Usage:
//
//	go run ./cmd/validate -prefecture akita data/akita.csv
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/covid19-age-ratio/internal/adapter/csvstore"
	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
	"github.com/couchcryptid/covid19-age-ratio/internal/prefecture"
)

// earliestReport is the first day any prefecture published a case.
var earliestReport = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase. Notes are informational
// and do not fail the phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// csvRow is one data row with its 1-based line number.
type csvRow struct {
	lineNum int
	fields  []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	name := fs.String("prefecture", "akita", "source prefecture")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: validate [-prefecture name] <csv>")
		return 1
	}
	path := fs.Arg(0)

	variant, err := prefecture.Lookup(*name)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	header, rows, err := loadCSV(path)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: load %s: %v\n", path, err)
		return 1
	}

	fmt.Fprintf(stdout, "=== Record Store Validation (%s) ===\n\n", variant.Name())

	phases := []*phase{
		validateHeader(header, variant.Header()),
		validateIDs(rows),
		validateDates(rows, domain.Now()),
		validateAges(rows, variant.Brackets()),
		validateReadPath(path, variant.Header(), rows),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(stdout, "  %-42s %s\n", p.name, status)
	}
	fmt.Fprintf(stdout, "\nRecords: %d rows in %s\n", len(rows), path)

	for _, p := range phases {
		if len(p.notes) == 0 && p.passed() {
			continue
		}
		fmt.Fprintf(stdout, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(stdout, "  [%d] %s\n", i+1, e)
		}
		for _, n := range p.notes {
			fmt.Fprintf(stdout, "  note: %s\n", n)
		}
	}

	if allPassed {
		fmt.Fprintln(stdout, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(stdout, "\nValidation FAILED.")
	return 1
}

// loadCSV reads the raw rows without the store's skip rules, so malformed
// rows are visible to the phases.
func loadCSV(path string) ([]string, []csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, errors.New("empty file")
	}

	header := all[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	rows := make([]csvRow, 0, len(all)-1)
	for i, row := range all[1:] {
		rows = append(rows, csvRow{lineNum: i + 2, fields: row})
	}
	return header, rows, nil
}

// ── Phase 1: Header ──

func validateHeader(header, want []string) *phase {
	p := &phase{name: "Phase 1: Header"}
	if !slices.Equal(header, want) {
		p.errorf("header is %q, want %q", header, want)
	}
	return p
}

// ── Phase 2: Record ids ──
// Every row has three fields and a numeric id not seen on an earlier line.

func validateIDs(rows []csvRow) *phase {
	p := &phase{name: "Phase 2: Record ids (numeric, unique)"}
	firstSeen := make(map[int]int, len(rows))
	for _, row := range rows {
		if len(row.fields) < 3 {
			p.errorf("line %d: %d fields, want 3", row.lineNum, len(row.fields))
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(row.fields[0]))
		if err != nil {
			p.errorf("line %d: id %q is not a number", row.lineNum, row.fields[0])
			continue
		}
		if line, ok := firstSeen[id]; ok {
			p.errorf("line %d: id %d already stored on line %d", row.lineNum, id, line)
			continue
		}
		firstSeen[id] = row.lineNum
	}
	return p
}

// ── Phase 3: Report dates ──
// Dates are written as YYYY-MM-DD and fall between the first reported case
// and now.

func validateDates(rows []csvRow, now time.Time) *phase {
	p := &phase{name: "Phase 3: Report dates (format, range)"}
	for _, row := range rows {
		if len(row.fields) < 2 {
			continue
		}
		d, err := time.ParseInLocation(domain.DateLayout, row.fields[1], time.UTC)
		if err != nil {
			p.errorf("line %d: date %q is not YYYY-MM-DD", row.lineNum, row.fields[1])
			continue
		}
		if d.Before(earliestReport) || d.After(now) {
			p.errorf("line %d: date %s is outside %s..%s", row.lineNum, row.fields[1],
				earliestReport.Format(domain.DateLayout), now.Format(domain.DateLayout))
		}
	}
	return p
}

// ── Phase 4: Age brackets ──
// Empty ages fail. Values outside the enumeration are legitimate source
// values (undisclosed, under investigation) and are only reported.

func validateAges(rows []csvRow, brackets domain.BracketSet) *phase {
	p := &phase{name: "Phase 4: Age brackets"}
	unknown := map[string]int{}
	for _, row := range rows {
		if len(row.fields) < 3 {
			continue
		}
		age := strings.TrimSpace(row.fields[2])
		switch {
		case age == "":
			p.errorf("line %d: empty age bracket", row.lineNum)
		case brackets.Index(age) < 0:
			unknown[age]++
		}
	}

	names := make([]string, 0, len(unknown))
	for n := range unknown {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		p.notef("%d rows with unrecognized bracket %q (excluded from ratios)", unknown[n], n)
	}
	return p
}

// ── Phase 5: Read path ──
// The store's reader must see every well-formed row.

func validateReadPath(path string, header []string, rows []csvRow) *phase {
	p := &phase{name: "Phase 5: Read path agreement"}
	records, err := csvstore.New(path).ReadAll(csvstore.Columns{ID: header[0], Date: header[1], Age: header[2]})
	if err != nil {
		p.errorf("read records: %v", err)
		return p
	}

	wellFormed := 0
	for _, row := range rows {
		if len(row.fields) < 3 {
			continue
		}
		if _, err := strconv.Atoi(strings.TrimSpace(row.fields[0])); err != nil {
			continue
		}
		if _, err := domain.ParseReportDate(row.fields[1]); err != nil {
			continue
		}
		wellFormed++
	}
	if len(records) != wellFormed {
		p.errorf("reader returned %d records, expected %d well-formed rows", len(records), wellFormed)
	}
	return p
}
