package config

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// OAuthClientEnvVar names a client secret file that takes precedence over the search path
const OAuthClientEnvVar = "PIBSHIFT_OAUTH_CLIENT"

// OAuthClient is the client secret file Google issues for a desktop app.
// Only the fields the login flow needs are checked; the file is handed to
// oauth2/google as read.
type OAuthClient struct {
	Installed struct {
		ClientID     string `json:"client_id" validate:"required"`
		ClientSecret string `json:"client_secret" validate:"required"`
		AuthURI      string `json:"auth_uri" validate:"required,url"`
		TokenURI     string `json:"token_uri" validate:"required,url"`
	} `json:"installed"`

	raw []byte
}

// JSON returns the client secret file contents
func (c *OAuthClient) JSON() []byte {
	return c.raw
}

// LoadOAuthClient loads the client secret for env: $PIBSHIFT_OAUTH_CLIENT when set,
// otherwise oauthClient[.env].json from the current directory or ~/.pibshift
func LoadOAuthClient(env string) (*OAuthClient, error) {
	if path := os.Getenv(OAuthClientEnvVar); path != "" {
		return LoadOAuthClientFromPath(path)
	}

	name := envFileName("oauthClient", env, "json")
	if _, err := os.Stat(name); err == nil {
		return LoadOAuthClientFromPath(name)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	homePath := filepath.Join(homeDir, ".pibshift", name)
	if _, err := os.Stat(homePath); err != nil {
		return nil, fmt.Errorf("%s not found in current directory or ~/.pibshift", name)
	}
	return LoadOAuthClientFromPath(homePath)
}

// LoadOAuthClientFromPath loads and validates a client secret file
func LoadOAuthClientFromPath(path string) (*OAuthClient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	client := &OAuthClient{raw: data}
	if err := json.Unmarshal(data, client); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client file: %w", err)
	}
	if err := validate.Struct(client); err != nil {
		return nil, fmt.Errorf("oauth client validation failed: %w", err)
	}
	return client, nil
}
