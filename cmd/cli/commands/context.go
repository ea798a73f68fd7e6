package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/pibshift/pibshift/internal/config"
	"github.com/pibshift/pibshift/pkg/clients/gmailclient"
	"github.com/pibshift/pibshift/pkg/clients/googleauth"
	"github.com/pibshift/pibshift/pkg/clients/sheetsclient"
	"github.com/pibshift/pibshift/pkg/metrics"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg    *config.Config
	Env    string
	Logger *zap.Logger
	Ctx    context.Context

	// PushURL is the Pushgateway metrics are sent to after a run, if set
	PushURL string

	authorizer   *googleauth.Authorizer
	sheetsClient *sheetsclient.Client
	gmailClient  *gmailclient.Client
}

// Authorizer returns the Google login for the current environment
func (app *AppContext) Authorizer() (*googleauth.Authorizer, error) {
	if app.authorizer != nil {
		return app.authorizer, nil
	}

	app.Logger.Debug("Loading OAuth client configuration", zap.String("environment", app.Env))
	client, err := config.LoadOAuthClient(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	authorizer, err := googleauth.New(client, app.Cfg.Sheets, app.Env, app.Logger)
	if err != nil {
		return nil, err
	}
	app.authorizer = authorizer
	return authorizer, nil
}

// googleHTTPClient returns an HTTP client carrying the stored Google token
func (app *AppContext) googleHTTPClient() (*http.Client, error) {
	authorizer, err := app.Authorizer()
	if err != nil {
		return nil, err
	}
	return authorizer.HTTPClient(app.Ctx)
}

// SheetsClient returns the Google Sheets client
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}

	httpClient, err := app.googleHTTPClient()
	if err != nil {
		return nil, err
	}

	client, err := sheetsclient.NewClient(app.Ctx, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.Logger.Debug("Sheets client initialized")

	app.sheetsClient = client
	return client, nil
}

// GmailClient returns the Gmail client. It shares the Sheets login.
func (app *AppContext) GmailClient() (*gmailclient.Client, error) {
	if app.gmailClient != nil {
		return app.gmailClient, nil
	}

	httpClient, err := app.googleHTTPClient()
	if err != nil {
		return nil, err
	}

	client, err := gmailclient.NewClient(app.Ctx, httpClient, app.Cfg.Share)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	app.Logger.Debug("Gmail client initialized")

	app.gmailClient = client
	return client, nil
}

// PushMetrics sends the run's metrics to the Pushgateway. Failures are logged, not returned.
func (app *AppContext) PushMetrics() {
	if app.PushURL == "" {
		return
	}
	if err := metrics.Push(app.PushURL, app.Cfg.Metrics.Job); err != nil {
		app.Logger.Warn("Metrics push failed", zap.String("url", app.PushURL), zap.Error(err))
		return
	}
	app.Logger.Debug("Metrics pushed", zap.String("url", app.PushURL))
}

// writeOutput runs write against the file at path, or stdout when path is empty
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
