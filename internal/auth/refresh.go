package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"threshold/internal/store"
)

// refreshBuffer renews tokens this long before they expire
const refreshBuffer = 60 * time.Second

// TokenSource refreshes an OAuth token when it nears expiry and hands every
// new token to onRefresh for persistence.
type TokenSource struct {
	ctx       context.Context
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	mu        sync.Mutex
}

// NewTokenSource creates a TokenSource seeded with token
func NewTokenSource(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{
		ctx:       ctx,
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
	}
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > refreshBuffer {
		return ts.token, nil
	}

	newToken, err := ts.config.TokenSource(ts.ctx, ts.token).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, fmt.Errorf("persisting refreshed token: %w", err)
		}
	}

	ts.token = newToken
	return newToken, nil
}

// TokenStore persists OAuth tokens between runs
type TokenStore interface {
	GetAuth() (*store.Auth, error)
	SaveAuth(*store.Auth) error
	UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error
}

// Session returns a token source backed by the stored tokens. When none are stored,
// or the stored refresh token is rejected, it runs the browser flow via Authenticate
// and writes its prompts to out.
func Session(ctx context.Context, cfg *oauth2.Config, tokens TokenStore, out io.Writer) (oauth2.TokenSource, error) {
	stored, err := tokens.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Fprintln(out, "No Strava authentication found. Starting OAuth flow...")
		if stored, err = login(ctx, cfg, tokens, out); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking auth: %w", err)
	}

	ts := newStoredSource(ctx, cfg, tokens, stored)
	if _, err := ts.Token(); err != nil {
		fmt.Fprintln(out, "Stored token is invalid or expired. Re-authenticating...")
		if stored, err = login(ctx, cfg, tokens, out); err != nil {
			return nil, err
		}
		ts = newStoredSource(ctx, cfg, tokens, stored)
	}
	return ts, nil
}

func newStoredSource(ctx context.Context, cfg *oauth2.Config, tokens TokenStore, a *store.Auth) *TokenSource {
	token := &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		Expiry:       a.ExpiresAt,
	}
	return NewTokenSource(ctx, cfg, token, func(t *oauth2.Token) error {
		return tokens.UpdateTokens(t.AccessToken, t.RefreshToken, t.Expiry)
	})
}

func login(ctx context.Context, cfg *oauth2.Config, tokens TokenStore, out io.Writer) (*store.Auth, error) {
	result, err := Authenticate(ctx, cfg, out)
	if err != nil {
		return nil, fmt.Errorf("authentication: %w", err)
	}

	a := &store.Auth{
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	}
	if err := tokens.SaveAuth(a); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}

	fmt.Fprintf(out, "\nSuccessfully authenticated as athlete %d!\n", result.AthleteID)
	return a, nil
}
