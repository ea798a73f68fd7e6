package availability

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// ReadXLSX reads an availability table from an Excel workbook.
// An empty sheet name selects the first sheet.
func ReadXLSX(r io.Reader, sheet string, layout Layout) (*model.AvailabilityTable, error) {
	rows, err := ReadXLSXRows(r, sheet)
	if err != nil {
		return nil, err
	}
	return ParseRows(rows, layout)
}

// ReadXLSXRows returns the raw cell text of one sheet of a workbook
func ReadXLSXRows(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if index, err := f.GetSheetIndex(sheet); err != nil || index == -1 {
		return nil, fmt.Errorf("sheet %q not found in workbook", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// WriteXLSXRows writes rows to a single-sheet workbook, bolding the header row
func WriteXLSXRows(w io.Writer, sheet string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, value := range row {
			values[j] = value
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		lastCell, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return fmt.Errorf("failed to address header: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A1", lastCell, bold); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
