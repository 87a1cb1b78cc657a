// Package export writes calculation tables to XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// Sheet is one worksheet: a bold header row followed by data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Workbook builds a workbook with one worksheet per sheet, in order.
func Workbook(sheets ...Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("build workbook: no sheets")
	}
	seen := map[string]bool{}
	for _, s := range sheets {
		if s.Name == "" || len(s.Name) > maxSheetName || strings.ContainsAny(s.Name, `:\/?*[]`) {
			return nil, fmt.Errorf("build workbook: invalid sheet name %q", s.Name)
		}
		key := strings.ToLower(s.Name)
		if seen[key] {
			return nil, fmt.Errorf("build workbook: duplicate sheet name %q", s.Name)
		}
		seen[key] = true
	}

	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet %q: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %q: %w", s.Name, err)
		}
		if err := writeSheet(f, s, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	row := 1
	if len(s.Header) > 0 {
		header := make([]any, len(s.Header))
		for i, h := range s.Header {
			header[i] = h
		}
		if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
			return fmt.Errorf("write header of %q: %w", s.Name, err)
		}
		if err := f.SetRowStyle(s.Name, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("style header of %q: %w", s.Name, err)
		}
		lastCol, err := excelize.ColumnNumberToName(len(s.Header))
		if err != nil {
			return fmt.Errorf("size columns of %q: %w", s.Name, err)
		}
		if err := f.SetColWidth(s.Name, "A", lastCol, 18); err != nil {
			return fmt.Errorf("size columns of %q: %w", s.Name, err)
		}
		row++
	}
	for i := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, row+i)
		if err != nil {
			return fmt.Errorf("address row %d of %q: %w", row+i, s.Name, err)
		}
		values := s.Rows[i]
		if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
			return fmt.Errorf("write row %d of %q: %w", row+i, s.Name, err)
		}
	}
	return nil
}

// Write streams a workbook of sheets to w.
func Write(w io.Writer, sheets ...Sheet) error {
	f, err := Workbook(sheets...)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
