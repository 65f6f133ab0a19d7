package client

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoToken reports that no token is cached. Callers treat it as "not
// logged in" and skip the network call entirely.
var ErrNoToken = errors.New("no cached token")

// TokenCache persists the admin bearer token across process restarts.
// The token lives in a single file with owner-only permissions.
type TokenCache struct {
	path string
}

// NewTokenCache returns a cache backed by the given file path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Load returns the cached token, or ErrNoToken when none is stored.
func (c *TokenCache) Load() (string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save stores the token, creating parent directories as needed.
func (c *TokenCache) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.path, []byte(token), 0o600)
}

// Clear removes the cached token. Clearing an empty cache is not an error.
func (c *TokenCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
