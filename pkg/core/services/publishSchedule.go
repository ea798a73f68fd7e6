package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pibshift/pibshift/internal/config"
	"github.com/pibshift/pibshift/pkg/core/model"
	"github.com/pibshift/pibshift/pkg/export"
)

// ScheduleSheetClient defines the Sheets operation needed to publish a schedule
type ScheduleSheetClient interface {
	PublishSchedule(spreadsheetID, tabTitle string, grid [][]string) error
}

// PublishedSchedule describes where a schedule was written
type PublishedSchedule struct {
	SpreadsheetID string
	TabTitle      string
	// Grid is what was written: a header row, then one row per date
	Grid [][]string
}

// PublishSchedule writes the schedule grid (one row per date, one column per
// role) to a tab named after its first and last dates
func PublishSchedule(
	ctx context.Context,
	sheetClient ScheduleSheetClient,
	cfg *config.Config,
	logger *zap.Logger,
	schedule *model.Schedule,
	roles []model.RoleDefinition,
) (*PublishedSchedule, error) {
	if cfg.Sheets.ScheduleSheetID == "" {
		return nil, fmt.Errorf("schedule spreadsheet ID is not configured (sheets.scheduleSheetID)")
	}

	tabTitle, err := ScheduleTabTitle(schedule.Dates)
	if err != nil {
		return nil, err
	}

	grid := export.Grid(schedule, ExportOptions(cfg, roles))

	logger.Debug("Publishing schedule",
		zap.String("spreadsheet_id", cfg.Sheets.ScheduleSheetID),
		zap.String("tab", tabTitle),
		zap.Int("rows", len(grid)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := sheetClient.PublishSchedule(cfg.Sheets.ScheduleSheetID, tabTitle, grid); err != nil {
		return nil, fmt.Errorf("failed to publish schedule: %w", err)
	}

	logger.Info("Schedule published", zap.String("tab", tabTitle))

	return &PublishedSchedule{
		SpreadsheetID: cfg.Sheets.ScheduleSheetID,
		TabTitle:      tabTitle,
		Grid:          grid,
	}, nil
}

// ScheduleTabTitle names the tab of a published schedule, such as
// "Escala QUA 04/06 - QUA 18/06". Sheets limits titles to 100 characters.
func ScheduleTabTitle(dates []string) (string, error) {
	if len(dates) == 0 {
		return "", fmt.Errorf("schedule has no dates")
	}

	title := "Escala " + dates[0]
	if len(dates) > 1 {
		title += " - " + dates[len(dates)-1]
	}

	runes := []rune(title)
	if len(runes) > 100 {
		title = string(runes[:100])
	}
	return title, nil
}
