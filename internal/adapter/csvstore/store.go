// Package csvstore is the append-only CSV file that holds every known case
// record between fetch runs and chart runs. A single writer is assumed.
package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
)

// ErrMissingColumn means the store header lacks a column the reader needs.
var ErrMissingColumn = errors.New("missing column")

// Store reads and appends case records at one path.
type Store struct {
	path string
}

// New returns a store backed by the file at path. The file need not exist.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// LoadExistingIDs returns the ids already recorded. A missing or empty file
// is a first run: the set is empty and headerWritten is false.
func (s *Store) LoadExistingIDs() (ids domain.IDSet, headerWritten bool, err error) {
	ids = make(domain.IDSet)

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return ids, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open record store: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("read record store: %w", err)
		}
		headerWritten = true
		if len(rec) == 0 {
			continue
		}
		// The header row and any non-numeric first column are not ids.
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids, headerWritten, nil
}

// Append writes records whose id is not in existing. The header is written
// first when headerWritten is false. existing is updated with every id
// written, so a record repeated within records is written once. Existing
// rows are never touched.
func (s *Store) Append(records []domain.CaseRecord, header []string, existing domain.IDSet, headerWritten bool) (int, error) {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open record store for append: %w", err)
	}
	if err := terminateLastLine(f); err != nil {
		f.Close()
		return 0, err
	}

	w := csv.NewWriter(f)
	if !headerWritten {
		if err := w.Write(header); err != nil {
			f.Close()
			return 0, fmt.Errorf("write header: %w", err)
		}
	}

	appended := 0
	for _, r := range records {
		if existing.Has(r.ID) {
			continue
		}
		row := []string{strconv.Itoa(r.ID), r.ReportDate.Format(domain.DateLayout), r.AgeBracket}
		if err := w.Write(row); err != nil {
			f.Close()
			return appended, fmt.Errorf("write record %d: %w", r.ID, err)
		}
		existing[r.ID] = struct{}{}
		appended++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return appended, fmt.Errorf("flush record store: %w", err)
	}
	if err := f.Close(); err != nil {
		return appended, fmt.Errorf("close record store: %w", err)
	}
	return appended, nil
}

// terminateLastLine writes a newline when the file does not end in one, so
// the first appended row never joins the last stored row.
func terminateLastLine(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat record store: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return fmt.Errorf("read record store tail: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := f.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("terminate last row: %w", err)
	}
	return nil
}

// Columns names the header columns the read path looks up.
type Columns struct {
	ID   string
	Date string
	Age  string
}

// ReadAll loads every record. Columns are located by header name and a
// missing one fails immediately; rows with an unparsable id or date are
// skipped.
func (s *Store) ReadAll(cols Columns) ([]domain.CaseRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idIdx, dateIdx, ageIdx := indexOf(header, cols.ID), indexOf(header, cols.Date), indexOf(header, cols.Age)
	for name, idx := range map[string]int{cols.ID: idIdx, cols.Date: dateIdx, cols.Age: ageIdx} {
		if idx < 0 {
			return nil, fmt.Errorf("%w %q in %s", ErrMissingColumn, name, s.path)
		}
	}

	var records []domain.CaseRecord
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record store: %w", err)
		}
		if len(rec) <= max(idIdx, dateIdx, ageIdx) {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[idIdx]))
		if err != nil {
			continue
		}
		date, err := domain.ParseReportDate(rec[dateIdx])
		if err != nil {
			continue
		}
		records = append(records, domain.CaseRecord{
			ID:         id,
			ReportDate: date,
			AgeBracket: strings.TrimSpace(rec[ageIdx]),
		})
	}
	return records, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	// Stores written by older tools carry a fourth column on data rows.
	cr.FieldsPerRecord = -1
	return cr
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\uFEFF")
		if h == name {
			return i
		}
	}
	return -1
}
