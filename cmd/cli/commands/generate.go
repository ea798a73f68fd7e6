package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pibshift/pibshift/pkg/availability"
	"github.com/pibshift/pibshift/pkg/clients/sheetsclient"
	"github.com/pibshift/pibshift/pkg/core/allocator"
	"github.com/pibshift/pibshift/pkg/core/services"
	"github.com/pibshift/pibshift/pkg/export"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [availability.xlsx|availability.csv]",
		Short: "Generate a schedule from an availability sheet",
		Long: `Generate a schedule from an availability sheet.

Reads the given .xlsx or .csv file, or the configured Google Sheets form
responses when --google is set. Dates are filled in column order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			showPools, _ := cmd.Flags().GetBool("show-pools")

			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			if output == "" && isBinary(format) {
				return fmt.Errorf("--output is required for %s output", format)
			}

			result, err := runGenerate(cmd, app, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showPools {
				printPools(out, result.Outcome.DayPools)
			}

			opts := services.ExportOptions(app.Cfg, result.Roles)
			if err := writeOutput(out, output, func(w io.Writer) error {
				return export.Write(w, format, result.Schedule(), opts)
			}); err != nil {
				return fmt.Errorf("failed to write schedule: %w", err)
			}

			printSummary(out, result.Outcome)
			if output != "" {
				fmt.Fprintf(out, "Schedule written to %s\n", output)
			}
			return nil
		},
	}

	addGenerateFlags(cmd)
	cmd.Flags().StringP("format", "f", string(export.FormatText), "Output format: text, whatsapp, pdf, ics, xlsx or json")
	cmd.Flags().StringP("output", "o", "", "Output file (stdout when empty)")
	cmd.Flags().Bool("show-pools", false, "Print the eligible pool of each role per date")

	return cmd
}

// addGenerateFlags registers the input and allocation flags shared by
// generate, publish and share
func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("roles", "", "Comma separated role keys to fill (all configured roles when empty)")
	cmd.Flags().Int("max-shifts", 0, "Override the maximum number of dates per person")
	cmd.Flags().Bool("consecutive", true, "Limit runs of back-to-back service days")
	cmd.Flags().String("sheet", "", "Worksheet of an .xlsx file, or tab with --google (first sheet when empty)")
	cmd.Flags().Bool("google", false, "Read availability from the configured Google Sheets responses")
}

// runGenerate loads availability according to the command's flags and runs the allocator
func runGenerate(cmd *cobra.Command, app *AppContext, args []string) (*services.GenerateResult, error) {
	opts, err := generateOptions(cmd)
	if err != nil {
		return nil, err
	}

	source, err := availabilitySource(cmd, app, args)
	if err != nil {
		return nil, err
	}

	app.Logger.Debug("generate command",
		zap.Strings("roles", opts.Roles),
		zap.Int("max_shifts", opts.MaxShifts))

	result, err := services.GenerateSchedule(app.Ctx, source, app.Cfg, app.Logger, opts)
	app.PushMetrics()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func generateOptions(cmd *cobra.Command) (services.GenerateOptions, error) {
	roles, _ := cmd.Flags().GetString("roles")
	maxShifts, _ := cmd.Flags().GetInt("max-shifts")

	if maxShifts < 0 {
		return services.GenerateOptions{}, fmt.Errorf("--max-shifts must not be negative, got %d", maxShifts)
	}

	opts := services.GenerateOptions{
		Roles:     parseRoles(roles),
		MaxShifts: maxShifts,
	}
	if cmd.Flags().Changed("consecutive") {
		consecutive, _ := cmd.Flags().GetBool("consecutive")
		opts.Consecutive = &consecutive
	}
	return opts, nil
}

func availabilitySource(cmd *cobra.Command, app *AppContext, args []string) (availability.Source, error) {
	google, _ := cmd.Flags().GetBool("google")
	sheet, _ := cmd.Flags().GetString("sheet")

	switch {
	case google && len(args) > 0:
		return nil, fmt.Errorf("give either an availability file or --google, not both")
	case google:
		client, err := app.SheetsClient()
		if err != nil {
			return nil, err
		}
		tab := app.Cfg.Sheets.AvailabilityTab
		if sheet != "" {
			tab = sheet
		}
		return &sheetsclient.AvailabilitySource{
			Client:        client,
			SpreadsheetID: app.Cfg.Sheets.AvailabilitySheetID,
			Tab:           tab,
			Layout:        app.Cfg.Input,
		}, nil
	case len(args) == 0:
		return nil, fmt.Errorf("an availability file is required (or --google)")
	default:
		return availability.NewFileSource(args[0], sheet, app.Cfg.Input), nil
	}
}

// parseRoles splits a --roles value into upper-cased keys
func parseRoles(value string) []string {
	var roles []string
	for _, role := range strings.Split(value, ",") {
		if role = strings.ToUpper(strings.TrimSpace(role)); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

func isBinary(format export.Format) bool {
	return format == export.FormatPDF || format == export.FormatXLSX
}

// printPools prints who was eligible for each role on each date
func printPools(w io.Writer, reports []allocator.DayPoolReport) {
	fmt.Fprintf(w, "\n📋 Eligible volunteers per date:\n")
	for _, report := range reports {
		fmt.Fprintf(w, "\n📅 %s\n", report.Date)
		for _, pool := range report.Pools {
			names := make([]string, 0, len(pool.Identities))
			for _, id := range pool.Identities {
				names = append(names, string(id))
			}
			list := strings.Join(names, ", ")
			if list == "" {
				list = "-"
			}
			fmt.Fprintf(w, "  %-12s %s\n", pool.Role, list)
		}
	}
	fmt.Fprintln(w)
}

// printSummary prints the run totals and any validation findings
func printSummary(w io.Writer, outcome *allocator.AllocationOutcome) {
	fmt.Fprintf(w, "\nDates: %d  Slots: %d  Unassigned: %d  Pair placements: %d\n",
		len(outcome.Schedule.Dates),
		len(outcome.Schedule.Slots),
		outcome.UnassignedCount(),
		outcome.PairPlacements)

	for _, conflict := range outcome.Conflicts {
		fmt.Fprintf(w, "  ✗ %s is booked more than once on %s\n", conflict.Identity, conflict.Date)
	}

	for _, finding := range outcome.ValidationErrors {
		marker := "✗"
		if finding.Warning {
			marker = "⚠️"
		}
		fmt.Fprintf(w, "  %s [%s] %s\n", marker, finding.CriterionName, finding.Description)
	}

	if outcome.Success {
		fmt.Fprintln(w, "✓ Schedule is valid")
	} else {
		fmt.Fprintln(w, "✗ Schedule failed validation")
	}
}
