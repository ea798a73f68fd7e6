package availability

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// ReadCSV reads an availability table from comma-separated text
func ReadCSV(r io.Reader, layout Layout) (*model.AvailabilityTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	lineNum := 0
	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		rows = append(rows, record)
	}

	return ParseRows(rows, layout)
}

// WriteCSVRows writes rows as comma-separated text
func WriteCSVRows(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
