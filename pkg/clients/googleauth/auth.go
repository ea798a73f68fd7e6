// Package googleauth logs PibShift into Google and hands authorized HTTP
// clients to the sheets and gmail clients.
package googleauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/pibshift/pibshift/internal/config"
)

const (
	loginTimeout = 5 * time.Minute
	tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
)

// ErrNotLoggedIn is returned when no usable token is stored for the environment
var ErrNotLoggedIn = errors.New("not logged in to Google, run `pibshift auth login`")

// Authorizer owns one environment's Google token. Login is the only step that
// talks to the user; everything else works from the stored token.
type Authorizer struct {
	oauth        *oauth2.Config
	scopes       []string
	port         int
	store        tokenStore
	logger       *zap.Logger
	tokenInfoURL string

	mu    sync.Mutex
	token *oauth2.Token
}

// Status describes the stored token without contacting Google
type Status struct {
	TokenPath   string
	LoggedIn    bool
	Expiry      time.Time
	Refreshable bool
	Scopes      []string
	Missing     []string
}

// New creates an Authorizer for env using the scopes and callback port from sheets
func New(client *config.OAuthClient, sheets config.SheetsConfig, env string, logger *zap.Logger) (*Authorizer, error) {
	oauthConfig, err := google.ConfigFromJSON(client.JSON(), sheets.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client: %w", err)
	}
	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d%s", sheets.CallbackPort, callbackPath)

	tokenPath, err := sheets.TokenPath(env)
	if err != nil {
		return nil, err
	}

	return &Authorizer{
		oauth:        oauthConfig,
		scopes:       sheets.Scopes,
		port:         sheets.CallbackPort,
		store:        tokenStore{path: tokenPath},
		logger:       logger,
		tokenInfoURL: tokenInfoURL,
	}, nil
}

// MissingScopes returns the required scopes absent from granted
func MissingScopes(granted, required []string) []string {
	var missing []string
	for _, scope := range required {
		if !slices.Contains(granted, scope) {
			missing = append(missing, scope)
		}
	}
	return missing
}

// Token returns a valid token, refreshing and re-saving the stored one when it expired
func (a *Authorizer) Token(ctx context.Context) (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != nil && a.token.Valid() {
		return a.token, nil
	}

	stored, err := a.store.load()
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrNotLoggedIn
	}
	if missing := MissingScopes(stored.Scopes, a.scopes); len(missing) > 0 {
		return nil, fmt.Errorf("stored token lacks scopes %v: %w", missing, ErrNotLoggedIn)
	}

	token := stored.Token
	if !token.Valid() {
		if token.RefreshToken == "" {
			return nil, fmt.Errorf("stored token expired: %w", ErrNotLoggedIn)
		}
		refreshed, err := a.oauth.TokenSource(ctx, token).Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
		stored.Token = refreshed
		if err := a.store.save(stored); err != nil {
			a.logger.Warn("Refreshed token was not saved", zap.Error(err))
		}
		a.logger.Debug("Google token refreshed", zap.Time("expiry", refreshed.Expiry))
		token = refreshed
	}

	a.token = token
	return token, nil
}

// HTTPClient returns an http.Client that authorizes requests with the stored token
func (a *Authorizer) HTTPClient(ctx context.Context) (*http.Client, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	return a.oauth.Client(ctx, token), nil
}

// Login sends the user to Google's consent page, waits for the redirect on the
// callback port and stores the token. It returns the scopes Google granted.
func (a *Authorizer) Login(ctx context.Context, out io.Writer) ([]string, error) {
	state := uuid.NewString()
	authURL := a.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "Open this URL to authorize PibShift:\n%s\n\n", authURL)

	code, err := a.awaitCode(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization code: %w", err)
	}

	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	granted, err := a.grantedScopes(ctx, token)
	if err != nil {
		return nil, err
	}
	if missing := MissingScopes(granted, a.scopes); len(missing) > 0 {
		return nil, fmt.Errorf("authorization is missing scopes %v, grant every permission on the consent page", missing)
	}

	if err := a.store.save(&storedToken{Token: token, Scopes: granted}); err != nil {
		return nil, err
	}
	a.logger.Info("Google login stored", zap.String("path", a.store.path), zap.Strings("scopes", granted))

	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
	return granted, nil
}

// Logout forgets the token in memory and on disk
func (a *Authorizer) Logout() error {
	a.mu.Lock()
	a.token = nil
	a.mu.Unlock()
	return a.store.remove()
}

// Status reports the stored token
func (a *Authorizer) Status() (Status, error) {
	status := Status{TokenPath: a.store.path}
	stored, err := a.store.load()
	if err != nil || stored == nil {
		return status, err
	}

	status.LoggedIn = true
	status.Expiry = stored.Token.Expiry
	status.Refreshable = stored.Token.RefreshToken != ""
	status.Scopes = stored.Scopes
	status.Missing = MissingScopes(stored.Scopes, a.scopes)
	return status, nil
}

// grantedScopes reads the scopes from the token response, falling back to the
// tokeninfo endpoint when Google left them out
func (a *Authorizer) grantedScopes(ctx context.Context, token *oauth2.Token) ([]string, error) {
	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		return strings.Fields(scope), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.tokenInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}
	req.URL.RawQuery = url.Values{"access_token": {token.AccessToken}}.Encode()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call tokeninfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tokeninfo request failed with status %d: %s", resp.StatusCode, body)
	}

	var info struct {
		Scope string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}
	return strings.Fields(info.Scope), nil
}
