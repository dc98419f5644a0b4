// ABOUTME: Database operations for the ghl_tokens table
// ABOUTME: Stores the single rotating OAuth access/refresh token pair keyed by user type
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/hireos/models"
)

// TokenRepository persists OAuth tokens.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new token repository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// GetToken returns the token row for userType, or nil if none exists.
func (r *TokenRepository) GetToken(ctx context.Context, userType string) (*models.OAuthToken, error) {
	var tok models.OAuthToken
	var locationID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT user_type, access_token, refresh_token, location_id, expires_at, created_at, updated_at
		FROM ghl_tokens
		WHERE user_type = ?
	`, userType).Scan(
		&tok.UserType,
		&tok.AccessToken,
		&tok.RefreshToken,
		&locationID,
		&tok.ExpiresAt,
		&tok.CreatedAt,
		&tok.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	tok.LocationID = locationID.String

	return &tok, nil
}

// SaveToken upserts the token row, overwriting both tokens and the expiry.
func (r *TokenRepository) SaveToken(ctx context.Context, tok *models.OAuthToken) error {
	if tok == nil || tok.UserType == "" {
		return fmt.Errorf("token user type is required")
	}

	var locationID sql.NullString
	if tok.LocationID != "" {
		locationID = sql.NullString{String: tok.LocationID, Valid: true}
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ghl_tokens (user_type, access_token, refresh_token, location_id, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_type) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			location_id = COALESCE(excluded.location_id, ghl_tokens.location_id),
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, tok.UserType, tok.AccessToken, tok.RefreshToken, locationID, tok.ExpiresAt.UTC(), now, now)

	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}
