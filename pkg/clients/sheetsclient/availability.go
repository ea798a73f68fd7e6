package sheetsclient

import (
	"context"
	"fmt"

	"github.com/pibshift/pibshift/pkg/availability"
	"github.com/pibshift/pibshift/pkg/core/model"
)

// ReadAvailabilityRows reads the raw rows of the form response tab.
// An empty tab reads the first sheet of the spreadsheet.
func (c *Client) ReadAvailabilityRows(spreadsheetID, tab string) ([][]string, error) {
	sheetRange := "A1:ZZ"
	if tab != "" {
		sheetRange = a1Range(tab, "A1:ZZ")
	}

	values, err := c.GetValues(spreadsheetID, sheetRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read availability responses: %w", err)
	}

	return cellsToStrings(values), nil
}

// AvailabilitySource loads the availability table from a Google Forms response sheet
type AvailabilitySource struct {
	Client        *Client
	SpreadsheetID string
	Tab           string
	Layout        availability.Layout
}

func (s *AvailabilitySource) Load(ctx context.Context) (*model.AvailabilityTable, error) {
	if s.SpreadsheetID == "" {
		return nil, fmt.Errorf("availability spreadsheet ID is not configured")
	}

	rows, err := s.Client.ReadAvailabilityRows(s.SpreadsheetID, s.Tab)
	if err != nil {
		return nil, err
	}

	return availability.ParseRows(rows, s.Layout)
}

// cellsToStrings converts API cell values to their text
func cellsToStrings(values [][]interface{}) [][]string {
	rows := make([][]string, 0, len(values))
	for _, row := range values {
		cells := make([]string, len(row))
		for i, value := range row {
			if value != nil {
				cells[i] = fmt.Sprint(value)
			}
		}
		rows = append(rows, cells)
	}
	return rows
}
