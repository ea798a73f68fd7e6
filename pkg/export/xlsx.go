package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pibshift/pibshift/pkg/core/model"
)

const (
	flatSheet = "Escala"
	gridSheet = "Escala Completa"
)

// ErrNotASchedule is returned when a workbook has no Data/Função/Voluntário columns
var ErrNotASchedule = errors.New("workbook is not a schedule")

// WriteXLSX writes a workbook with a flat sheet (Data, Funcao, Voluntario)
// and a grid sheet with one column per role
func WriteXLSX(w io.Writer, schedule *model.Schedule, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", flatSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	flat := [][]string{{"Data", "Funcao", "Voluntario"}}
	for _, row := range Rows(schedule, opts) {
		flat = append(flat, []string{row.Date, row.Role, row.Volunteer})
	}
	if err := writeRows(f, flatSheet, flat); err != nil {
		return err
	}

	if _, err := f.NewSheet(gridSheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", gridSheet, err)
	}
	if err := writeRows(f, gridSheet, Grid(schedule, opts)); err != nil {
		return err
	}

	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(gridRoles(schedule, opts)) + 1)
	lastRow := len(scheduleDates(schedule)) + 1
	if err := f.SetCellStyle(gridSheet, "A1", fmt.Sprintf("%s%d", lastCol, lastRow), wrap); err != nil {
		return fmt.Errorf("failed to style grid: %w", err)
	}
	if err := f.SetColWidth(gridSheet, "A", lastCol, 22); err != nil {
		return fmt.Errorf("failed to size grid: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, value := range row {
			values[j] = value
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+1, sheet, err)
		}
	}
	return nil
}

// ReadScheduleXLSX reads back a flat schedule sheet, as written by WriteXLSX
// or edited by hand. Cells equal to the unassigned label become UNASSIGNED.
func ReadScheduleXLSX(r io.Reader, opts Options) (*model.Schedule, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := flatSheet
	if index, err := f.GetSheetIndex(sheet); err != nil || index == -1 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return parseScheduleRows(rows, opts)
}

func parseScheduleRows(rows [][]string, opts Options) (*model.Schedule, error) {
	if len(rows) == 0 {
		return nil, ErrNotASchedule
	}

	dateCol, roleCol, volunteerCol := -1, -1, -1
	for i, header := range rows[0] {
		switch strings.ToUpper(strings.TrimSpace(header)) {
		case "DATA", "DATE":
			dateCol = i
		case "FUNCAO", "FUNÇÃO", "ROLE":
			roleCol = i
		case "VOLUNTARIO", "VOLUNTÁRIO", "VOLUNTEER":
			volunteerCol = i
		}
	}
	if dateCol == -1 || roleCol == -1 || volunteerCol == -1 {
		return nil, ErrNotASchedule
	}

	schedule := &model.Schedule{}
	seenDates := make(map[string]bool)
	slotIndex := make(map[string]int)

	for _, row := range rows[1:] {
		date := strings.TrimSpace(cellAt(row, dateCol))
		role := strings.TrimSpace(cellAt(row, roleCol))
		if date == "" || role == "" {
			continue
		}
		if !seenDates[date] {
			seenDates[date] = true
			schedule.Dates = append(schedule.Dates, date)
		}

		volunteer := strings.TrimSpace(cellAt(row, volunteerCol))
		assignee := model.Identity(volunteer)
		if volunteer == "" || strings.EqualFold(volunteer, opts.UnassignedLabel) || assignee.IsUnassigned() {
			assignee = model.Unassigned
		}

		key := date + "|" + role
		schedule.Slots = append(schedule.Slots, model.AssignmentSlot{
			Date:        date,
			RoleKey:     role,
			RoleDisplay: role,
			SlotIndex:   slotIndex[key],
			Assignee:    assignee,
		})
		slotIndex[key]++
	}

	return schedule, nil
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
