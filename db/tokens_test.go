// ABOUTME: Tests for OAuth token persistence
// ABOUTME: Covers missing rows, upsert, and in-place rotation of the token pair
package db

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/hireos/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTokenMissing(t *testing.T) {
	repo := NewTokenRepository(setupTestDB(t))

	tok, err := repo.GetToken(context.Background(), models.UserTypeLocation)
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestSaveTokenRotatesInPlace(t *testing.T) {
	database := setupTestDB(t)
	repo := NewTokenRepository(database)
	ctx := context.Background()

	first := &models.OAuthToken{
		UserType:     models.UserTypeLocation,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		LocationID:   "loc-1",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, repo.SaveToken(ctx, first))

	second := &models.OAuthToken{
		UserType:     models.UserTypeLocation,
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		ExpiresAt:    time.Now().Add(2 * time.Hour).Truncate(time.Second),
	}
	require.NoError(t, repo.SaveToken(ctx, second))

	got, err := repo.GetToken(ctx, models.UserTypeLocation)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "access-2", got.AccessToken)
	assert.Equal(t, "refresh-2", got.RefreshToken)
	assert.Equal(t, "loc-1", got.LocationID, "location id should survive a refresh that omits it")
	assert.True(t, got.ExpiresAt.Equal(second.ExpiresAt.UTC()))

	var rows int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM ghl_tokens").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSaveTokenRequiresUserType(t *testing.T) {
	repo := NewTokenRepository(setupTestDB(t))

	err := repo.SaveToken(context.Background(), &models.OAuthToken{AccessToken: "a"})
	assert.Error(t, err)
}
