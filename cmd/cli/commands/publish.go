package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pibshift/pibshift/pkg/core/services"
)

// PublishCmd creates the publish command
func PublishCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [availability.xlsx|availability.csv]",
		Short: "Generate a schedule and publish it to Google Sheets",
		Long: `Generate a schedule and publish it to Google Sheets.

The schedule is written to a tab named after its first and last dates in the
configured schedule spreadsheet. An existing tab of the same name is overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runGenerate(cmd, app, args)
			if err != nil {
				return err
			}

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}

			published, err := services.PublishSchedule(app.Ctx, client, app.Cfg, app.Logger, result.Schedule(), result.Roles)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✅ Schedule Published Successfully\n\n")
			fmt.Fprintf(out, "Sheet ID: %s\n", published.SpreadsheetID)
			fmt.Fprintf(out, "Tab:      %s\n\n", published.TabTitle)
			for _, row := range published.Grid {
				fmt.Fprintln(out, strings.Join(row, " | "))
			}
			printSummary(out, result.Outcome)
			return nil
		},
	}

	addGenerateFlags(cmd)
	return cmd
}
