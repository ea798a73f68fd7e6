package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth command. Publish and share use the token it stores.
func AuthCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "auth [login|status|logout]",
		Short: "Log in to Google for publish and share (status when no action is given)",
		Long: `Log in to Google once per environment. login prints a consent URL and waits
for Google's redirect on sheets.callbackPort; the token is stored as
token[.<env>].json under sheets.tokenDir and refreshed automatically.`,
		ValidArgs: []string{"login", "status", "logout"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "status"
			if len(args) == 1 {
				action = args[0]
			}

			authorizer, err := app.Authorizer()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch action {
			case "login":
				granted, err := authorizer.Login(app.Ctx, out)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Logged in with %d scopes\n", len(granted))
				return nil

			case "logout":
				if err := authorizer.Logout(); err != nil {
					return err
				}
				fmt.Fprintln(out, "✓ Logged out")
				return nil
			}

			status, err := authorizer.Status()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Token file: %s\n", status.TokenPath)
			if !status.LoggedIn {
				fmt.Fprintln(out, "Not logged in (run `pibshift auth login`)")
				return nil
			}
			fmt.Fprintf(out, "Expires:    %s (refreshable: %t)\n", status.Expiry.Format("02/01/2006 15:04"), status.Refreshable)
			fmt.Fprintf(out, "Scopes:     %s\n", strings.Join(status.Scopes, " "))
			if len(status.Missing) > 0 {
				fmt.Fprintf(out, "⚠️  Missing: %s (run `pibshift auth login` again)\n", strings.Join(status.Missing, " "))
			}
			return nil
		},
	}
}
