package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pibshift/pibshift/cmd/cli/commands"
	"github.com/pibshift/pibshift/internal/config"
	"github.com/pibshift/pibshift/pkg/utils/logging"
)

var (
	env        string
	configPath string
	logDir     string
	pushURL    string
	app        = &commands.AppContext{}
)

func main() {
	// .env is optional; it only provides PIBSHIFT_* overrides
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "pibshift",
		Short: "PibShift - Schedule media ministry volunteers",
		Long: `A CLI tool for building volunteer service schedules from availability sheets,
checking them for conflicts, and sharing them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (selects pibshift_config.<env>.yaml, oauthClient.<env>.json and token.<env>.json)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (overrides --env lookup)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", logging.DefaultDir, "Directory for log files")
	rootCmd.PersistentFlags().StringVar(&pushURL, "push-url", "", "Prometheus Pushgateway URL (metrics.pushURL from config when empty)")

	rootCmd.AddCommand(commands.AuthCmd(app))
	rootCmd.AddCommand(commands.GenerateCmd(app))
	rootCmd.AddCommand(commands.ConflictsCmd(app))
	rootCmd.AddCommand(commands.ExportCmd(app))
	rootCmd.AddCommand(commands.PublishCmd(app))
	rootCmd.AddCommand(commands.ShareCmd(app))
	rootCmd.AddCommand(commands.TemplateCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger and config. Google clients are created by the commands that need them.
func initApp() error {
	var err error
	app.Ctx = context.Background()
	app.Env = env

	app.Logger, err = logging.InitLogger(env, logDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Starting application", zap.String("environment", env))

	if configPath != "" {
		app.Logger.Debug("Loading configuration", zap.String("path", configPath))
		app.Cfg, err = config.LoadFromPath(configPath)
	} else {
		app.Logger.Debug("Loading configuration")
		app.Cfg, err = config.LoadWithEnv(env)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.Int("roles", len(app.Cfg.Roles)))

	app.PushURL = pushURL
	if app.PushURL == "" {
		app.PushURL = app.Cfg.Metrics.PushURL
	}

	return nil
}
