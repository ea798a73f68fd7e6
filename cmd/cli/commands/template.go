package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pibshift/pibshift/pkg/availability"
	"github.com/pibshift/pibshift/pkg/core/services"
)

const dateFlagLayout = "2006-01-02"

// TemplateCmd creates the template command
func TemplateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a blank availability sheet for a date range",
		Long: `Write a blank availability sheet with one column per service date.

Service dates come from the configured template rrule, e.g. every Wednesday
and Sunday. The file type follows the --output extension (.xlsx or .csv).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromValue, _ := cmd.Flags().GetString("from")
			untilValue, _ := cmd.Flags().GetString("until")
			output, _ := cmd.Flags().GetString("output")

			from, err := parseDateFlag("from", fromValue)
			if err != nil {
				return err
			}
			until, err := parseDateFlag("until", untilValue)
			if err != nil {
				return err
			}

			header, err := services.BuildTemplate(app.Cfg, app.Logger, from, until)
			if err != nil {
				return err
			}

			rows := [][]string{header}
			err = writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				if strings.EqualFold(filepath.Ext(output), ".csv") {
					return availability.WriteCSVRows(w, rows)
				}
				return availability.WriteXLSXRows(w, "Respostas", rows)
			})
			if err != nil {
				return fmt.Errorf("failed to write template: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Template with %d dates written to %s\n", len(header)-2, output)
			return nil
		},
	}

	cmd.Flags().String("from", "", "First date (YYYY-MM-DD)")
	cmd.Flags().String("until", "", "Last date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringP("output", "o", "disponibilidade.xlsx", "Output file (.xlsx or .csv)")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("until")

	return cmd
}

func parseDateFlag(name, value string) (time.Time, error) {
	date, err := time.Parse(dateFlagLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be a date like 2025-06-01, got %q", name, value)
	}
	return date, nil
}
