package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pibshift/pibshift/pkg/core/services"
)

// ShareCmd creates the share command
func ShareCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share [availability.xlsx|availability.csv]",
		Short: "Generate a schedule and email it to the configured recipients",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runGenerate(cmd, app, args)
			if err != nil {
				return err
			}

			client, err := app.GmailClient()
			if err != nil {
				return err
			}

			sent, failed, err := services.ShareSchedule(app.Ctx, client, app.Cfg, app.Logger, result.Schedule(), result.Roles)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ Schedule shared!\n\n")

			if len(sent) > 0 {
				fmt.Fprintf(out, "Sent to %d recipients:\n", len(sent))
				for _, recipient := range sent {
					fmt.Fprintf(out, "  ✓ %s\n", recipient)
				}
				fmt.Fprintln(out)
			}

			if len(failed) > 0 {
				fmt.Fprintf(out, "⚠️  Failed to send %d emails:\n", len(failed))
				for _, fe := range failed {
					fmt.Fprintf(out, "  ✗ %s: %s\n", fe.Recipient, fe.Error)
				}
				fmt.Fprintln(out)
			}

			return nil
		},
	}

	addGenerateFlags(cmd)
	return cmd
}
