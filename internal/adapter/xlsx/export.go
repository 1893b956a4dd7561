// Package xlsx exports the bucket percentage table as a spreadsheet.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/covid19-age-ratio/internal/domain"
)

// SheetName is the name of the single exported sheet.
const SheetName = "Ratio"

// Build creates a workbook with one row per bucket: the bucket key, its
// total, then the percentage of each bracket.
func Build(buckets []domain.Bucket, brackets domain.BracketSet) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := append([]any{"Bucket", "Total"}, labels(brackets)...)
	if err := setRow(f, 1, header); err != nil {
		f.Close()
		return nil, err
	}

	for i, b := range buckets {
		row := make([]any, 0, 2+len(b.Percentages))
		row = append(row, b.Key.String(), b.Total)
		for _, p := range b.Percentages {
			row = append(row, p)
		}
		if err := setRow(f, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freeze header: %w", err)
	}
	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, buckets []domain.Bucket, brackets domain.BracketSet) error {
	f, err := Build(buckets, brackets)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile builds the workbook and saves it at path.
func WriteFile(path string, buckets []domain.Bucket, brackets domain.BracketSet) error {
	f, err := Build(buckets, brackets)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func labels(b domain.BracketSet) []any {
	out := make([]any, b.Len())
	for i := range out {
		if i < len(b.Labels) {
			out[i] = b.Labels[i]
		} else {
			out[i] = b.Names[i]
		}
	}
	return out
}
