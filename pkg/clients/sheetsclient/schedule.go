package sheetsclient

import "fmt"

// PublishSchedule writes a schedule grid to a tab of the schedule spreadsheet.
// If the tab doesn't exist it is created; if it exists its values are cleared
// and overwritten, so a regenerated schedule replaces the previous one.
func (c *Client) PublishSchedule(spreadsheetID, tabTitle string, grid [][]string) error {
	exists, err := c.HasSheet(spreadsheetID, tabTitle)
	if err != nil {
		return err
	}

	if exists {
		if err := c.ClearValues(spreadsheetID, a1Range(tabTitle, "")); err != nil {
			return fmt.Errorf("failed to clear tab %q: %w", tabTitle, err)
		}
	} else {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return fmt.Errorf("failed to create tab %q: %w", tabTitle, err)
		}
	}

	if err := c.UpdateValues(spreadsheetID, a1Range(tabTitle, "A1"), toValues(grid)); err != nil {
		return fmt.Errorf("failed to write tab %q: %w", tabTitle, err)
	}

	return nil
}

func toValues(grid [][]string) [][]interface{} {
	values := make([][]interface{}, 0, len(grid))
	for _, row := range grid {
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}
	return values
}
