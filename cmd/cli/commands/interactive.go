package commands

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (authenticate once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands without
re-loading configuration or re-authenticating with Google.

Type 'help' to see available commands, 'exit' or 'quit' to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\n🚀 Starting interactive session...")
			fmt.Fprintln(out, "Type 'help' for available commands, 'exit' or 'quit' to leave")

			commands := sessionCommands(cmd.Parent())
			scanner := bufio.NewScanner(cmd.InOrStdin())

			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				if done := runLine(out, commands, scanner.Text()); done {
					return nil
				}
				if err := app.Ctx.Err(); err != nil {
					return err
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}
			return nil
		},
	}
}

// sessionCommands returns the root's subcommands that can run inside a session
func sessionCommands(root *cobra.Command) map[string]*cobra.Command {
	commands := make(map[string]*cobra.Command)
	if root == nil {
		return commands
	}
	for _, sub := range root.Commands() {
		switch sub.Name() {
		case "interactive", "completion", "help":
			continue
		}
		commands[sub.Name()] = sub
	}
	return commands
}

// runLine executes one session line and reports whether the session should end.
// Commands run through RunE directly so PersistentPreRunE does not rebuild the app.
func runLine(out io.Writer, commands map[string]*cobra.Command, line string) bool {
	parts, err := parseCommandLine(strings.TrimSpace(line))
	if err != nil {
		fmt.Fprintf(out, "❌ Error parsing command: %v\n\n", err)
		return false
	}
	if len(parts) == 0 {
		return false
	}

	name, args := parts[0], parts[1:]
	switch name {
	case "exit", "quit":
		fmt.Fprintln(out, "👋 Goodbye!")
		return true
	case "help":
		printInteractiveHelp(out, commands)
		return false
	}

	target, ok := commands[name]
	if !ok {
		fmt.Fprintf(out, "❌ Unknown command: %s (type 'help' for available commands)\n\n", name)
		return false
	}

	// Flags keep their values between runs unless reset
	target.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		flag.Value.Set(flag.DefValue)
	})

	if err := target.ParseFlags(args); err != nil {
		fmt.Fprintf(out, "❌ Error parsing flags: %v\n\n", err)
		return false
	}
	args = target.Flags().Args()

	if target.Args != nil {
		if err := target.Args(target, args); err != nil {
			fmt.Fprintf(out, "❌ Error: %v\n\n", err)
			return false
		}
	}

	if target.RunE != nil {
		if err := target.RunE(target, args); err != nil {
			fmt.Fprintf(out, "❌ Error: %v\n\n", err)
		}
	} else if target.Run != nil {
		target.Run(target, args)
	}
	return false
}

func printInteractiveHelp(out io.Writer, commands map[string]*cobra.Command) {
	fmt.Fprintln(out, "\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		fmt.Fprintf(out, "  %-50s %s\n", commands[name].Use, commands[name].Short)
	}

	fmt.Fprintf(out, "\n  %-50s %s\n", "help", "Show this help message")
	fmt.Fprintf(out, "  %-50s %s\n", "exit, quit", "Exit the interactive session")
}

// parseCommandLine splits a line into arguments. Single or double quotes group
// words, so file names with spaces can be passed.
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var quote rune
	inArg := false

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", quote)
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
