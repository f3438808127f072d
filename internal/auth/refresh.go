package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// RefreshBuffer is how long before expiry a token is treated as stale
const RefreshBuffer = 60 * time.Second

// TokenStore persists Strava tokens between runs
type TokenStore interface {
	UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error
}

// TokenSource wraps oauth2.TokenSource with persistence
// It automatically refreshes tokens and calls onRefresh when a new token is obtained
type TokenSource struct {
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	refresher func(ctx context.Context, t *oauth2.Token) (*oauth2.Token, error)
	now       func() time.Time
	mu        sync.Mutex
}

// NewTokenSource creates a new TokenSource that will refresh tokens as needed
// and call onRefresh to persist new tokens
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	ts := &TokenSource{
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
		now:       time.Now,
	}
	ts.refresher = func(ctx context.Context, t *oauth2.Token) (*oauth2.Token, error) {
		return ts.config.TokenSource(ctx, t).Token()
	}
	return ts
}

// NewPersistingTokenSource refreshes through cfg and writes every new token to store
func NewPersistingTokenSource(cfg *oauth2.Config, token *oauth2.Token, store TokenStore) *TokenSource {
	return NewTokenSource(cfg, token, func(t *oauth2.Token) error {
		if err := store.UpdateTokens(t.AccessToken, t.RefreshToken, t.Expiry); err != nil {
			return fmt.Errorf("persisting refreshed token: %w", err)
		}
		return nil
	})
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.expiredLocked() {
		return ts.token, nil
	}

	newToken, err := ts.refresher(context.Background(), ts.token)
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	// Persist the new token if callback is set
	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, err
		}
	}

	ts.token = newToken
	return newToken, nil
}

func (ts *TokenSource) expiredLocked() bool {
	return ts.token.Expiry.Sub(ts.now()) <= RefreshBuffer
}

// IsExpired checks if the current token is expired or will expire within the buffer
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.expiredLocked()
}

// CurrentToken returns the current token without refreshing
func (ts *TokenSource) CurrentToken() *oauth2.Token {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token
}
