package googleauth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

// storedToken is the token file: the token plus the scopes Google granted with it
type storedToken struct {
	Token  *oauth2.Token `json:"token"`
	Scopes []string      `json:"scopes"`
}

// tokenStore keeps one environment's token on disk, readable by the owner only
type tokenStore struct {
	path string
}

// load returns nil without an error when no token was saved
func (s tokenStore) load() (*storedToken, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var stored storedToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", s.path, err)
	}
	if stored.Token == nil {
		return nil, nil
	}
	return &stored, nil
}

func (s tokenStore) save(stored *storedToken) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s tokenStore) remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}
