package client

import (
	"errors"

	"branchpulse/pkg/domain"
)

// AdminSession wraps the API client with durable token persistence for the
// admin view. A missing cached token fails fast without touching the
// network, and a rejected token is evicted from the cache so the next
// attempt prompts for a fresh login.
type AdminSession struct {
	client *Client
	cache  *TokenCache
}

// NewAdminSession binds a client to a token cache.
func NewAdminSession(c *Client, cache *TokenCache) *AdminSession {
	return &AdminSession{client: c, cache: cache}
}

// Login authenticates and persists the issued token.
func (s *AdminSession) Login(email, password string) error {
	token, err := s.client.Login(email, password)
	if err != nil {
		return err
	}
	return s.cache.Save(token)
}

// Logout revokes the token server-side and always clears the cache, even
// when revocation fails.
func (s *AdminSession) Logout() error {
	token, err := s.cache.Load()
	if errors.Is(err, ErrNoToken) {
		return nil
	}
	if err != nil {
		return err
	}
	revokeErr := s.client.Logout(token)
	if clearErr := s.cache.Clear(); clearErr != nil {
		return clearErr
	}
	return revokeErr
}

// List fetches feedback with the cached token. Returns ErrNoToken without a
// network call when no token is stored. A token the server rejects is
// cleared from the cache before the error is returned.
func (s *AdminSession) List() ([]domain.Feedback, error) {
	token, err := s.cache.Load()
	if err != nil {
		return nil, err
	}
	items, err := s.client.List(token)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			_ = s.cache.Clear()
		}
		return nil, err
	}
	return items, nil
}
