// ABOUTME: OAuth token management for the GHL v2 API
// ABOUTME: Serves the stored access token and refreshes it once per expiry across concurrent callers
package ghl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/harperreed/hireos/models"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultExpiryMargin treats a token as expired this long before its stored expiry.
	DefaultExpiryMargin = 60 * time.Second

	// defaultTokenLifetime applies when the token endpoint omits expires_in.
	defaultTokenLifetime = time.Hour
)

// TokenStore persists the single token row.
type TokenStore interface {
	GetToken(ctx context.Context, userType string) (*models.OAuthToken, error)
	SaveToken(ctx context.Context, tok *models.OAuthToken) error
}

// NewOAuthConfig creates the refresh-grant configuration for GHL. Client
// credentials go in the form body, which is what the GHL token endpoint expects.
func NewOAuthConfig(clientID, clientSecret, tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

type TokenManager struct {
	store      TokenStore
	oauth      *oauth2.Config
	userType   string
	margin     time.Duration
	now        func() time.Time
	httpClient *http.Client
	log        zerolog.Logger

	refreshes singleflight.Group
}

type TokenOption func(*TokenManager)

func WithTokenClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) { m.now = now }
}

func WithTokenHTTPClient(c *http.Client) TokenOption {
	return func(m *TokenManager) { m.httpClient = c }
}

func WithTokenLogger(log zerolog.Logger) TokenOption {
	return func(m *TokenManager) { m.log = log }
}

func NewTokenManager(store TokenStore, cfg *oauth2.Config, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		store:    store,
		oauth:    cfg,
		userType: models.UserTypeLocation,
		margin:   DefaultExpiryMargin,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// GetAccessToken returns a usable access token, refreshing it first when it
// expires within the safety margin.
func (m *TokenManager) GetAccessToken(ctx context.Context) (string, error) {
	tok, err := m.load(ctx)
	if err != nil {
		return "", err
	}
	if !m.expiring(tok) {
		return tok.AccessToken, nil
	}
	return m.refresh(ctx, m.expiring)
}

// RefreshAccessToken refreshes unconditionally.
func (m *TokenManager) RefreshAccessToken(ctx context.Context) (string, error) {
	return m.refresh(ctx, func(*models.OAuthToken) bool { return true })
}

// RefreshRejected refreshes after the API rejected accessToken. When another
// caller already replaced that token, the replacement is returned without a
// second refresh.
func (m *TokenManager) RefreshRejected(ctx context.Context, accessToken string) (string, error) {
	return m.refresh(ctx, func(tok *models.OAuthToken) bool {
		return tok.AccessToken == accessToken || m.expiring(tok)
	})
}

// Token returns the stored token row.
func (m *TokenManager) Token(ctx context.Context) (*models.OAuthToken, error) {
	return m.load(ctx)
}

func (m *TokenManager) load(ctx context.Context) (*models.OAuthToken, error) {
	tok, err := m.store.GetToken(ctx, m.userType)
	if err != nil {
		return nil, fmt.Errorf("failed to load GHL token: %w", err)
	}
	if tok == nil {
		return nil, ErrNoToken
	}
	return tok, nil
}

func (m *TokenManager) expiring(tok *models.OAuthToken) bool {
	return !m.now().Add(m.margin).Before(tok.ExpiresAt)
}

// refresh collapses concurrent callers into one token endpoint call. The
// stored row is re-read inside the flight so a caller that queued behind a
// finished refresh picks up its result.
func (m *TokenManager) refresh(ctx context.Context, needed func(*models.OAuthToken) bool) (string, error) {
	ch := m.refreshes.DoChan(m.userType, func() (any, error) {
		return m.doRefresh(context.WithoutCancel(ctx), needed)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// expiryOf prefers the wire expires_in so expiry follows the manager's clock.
func (m *TokenManager) expiryOf(tok *oauth2.Token) time.Time {
	if secs, ok := tok.Extra("expires_in").(float64); ok && secs > 0 {
		return m.now().Add(time.Duration(secs) * time.Second)
	}
	if !tok.Expiry.IsZero() {
		return tok.Expiry
	}
	return m.now().Add(defaultTokenLifetime)
}

func (m *TokenManager) doRefresh(ctx context.Context, needed func(*models.OAuthToken) bool) (string, error) {
	tok, err := m.load(ctx)
	if err != nil {
		return "", err
	}
	if !needed(tok) {
		return tok.AccessToken, nil
	}
	if tok.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	if m.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	}

	fresh, err := m.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: tok.RefreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			switch retrieveErr.Response.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized:
				m.log.Warn().Int("status", retrieveErr.Response.StatusCode).Msg("GHL refresh token rejected")
				return "", fmt.Errorf("%w (status %d)", ErrReauthorize, retrieveErr.Response.StatusCode)
			}
		}
		return "", fmt.Errorf("failed to refresh GHL access token: %w", err)
	}

	updated := *tok
	updated.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		updated.RefreshToken = fresh.RefreshToken
	}
	updated.ExpiresAt = m.expiryOf(fresh)
	if loc, ok := fresh.Extra("locationId").(string); ok && loc != "" {
		updated.LocationID = loc
	}

	if err := m.store.SaveToken(ctx, &updated); err != nil {
		return "", fmt.Errorf("failed to save refreshed GHL token: %w", err)
	}

	m.log.Info().Time("expires_at", updated.ExpiresAt).Msg("refreshed GHL access token")
	return updated.AccessToken, nil
}
