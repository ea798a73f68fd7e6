package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pibshift/pibshift/pkg/core/services"
	"github.com/pibshift/pibshift/pkg/export"
)

// ExportCmd creates the export command
func ExportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <schedule.xlsx>",
		Short: "Render an edited schedule in another format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			if output == "" && isBinary(format) {
				return fmt.Errorf("--output is required for %s output", format)
			}

			schedule, err := readSchedule(app, args[0])
			if err != nil {
				return err
			}

			opts := services.ExportOptions(app.Cfg, app.Cfg.Roles)
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return export.Write(w, format, schedule, opts)
			})
		},
	}

	cmd.Flags().StringP("format", "f", string(export.FormatWhatsApp), "Output format: text, whatsapp, pdf, ics, xlsx or json")
	cmd.Flags().StringP("output", "o", "", "Output file (stdout when empty)")

	return cmd
}
