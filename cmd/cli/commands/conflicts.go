package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pibshift/pibshift/pkg/core/model"
	"github.com/pibshift/pibshift/pkg/core/services"
	"github.com/pibshift/pibshift/pkg/export"
)

// ConflictsCmd creates the conflicts command
func ConflictsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts <schedule.xlsx>",
		Short: "Check an edited schedule for volunteers booked twice on one date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := readSchedule(app, args[0])
			if err != nil {
				return err
			}

			conflicts := services.CheckConflicts(schedule, app.Logger)

			out := cmd.OutOrStdout()
			if len(conflicts) == 0 {
				fmt.Fprintf(out, "\n✓ No conflicts in %d slots\n\n", len(schedule.Slots))
				return nil
			}

			fmt.Fprintf(out, "\n⚠️  %d conflicts found:\n", len(conflicts))
			for _, conflict := range conflicts {
				fmt.Fprintf(out, "  ✗ %s: %s\n", conflict.Date, conflict.Identity)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

// readSchedule reads a schedule workbook written by generate, possibly edited by hand
func readSchedule(app *AppContext, path string) (*model.Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule: %w", err)
	}
	defer f.Close()

	schedule, err := export.ReadScheduleXLSX(f, services.ExportOptions(app.Cfg, app.Cfg.Roles))
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule %s: %w", path, err)
	}
	return schedule, nil
}
