package repository

import (
	"context"
	"testing"
	"time"

	"sellerhood/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByEmail_MissingIsNilNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_CreateAndFetch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "seller@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.CreateProfile(ctx, &models.Profile{
		UserID:          user.ID,
		Nickname:        "한솔",
		OnlinePlatforms: []string{"smartstore", "coupang"},
	}))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "한솔", got.Profile.Nickname)
	assert.Equal(t, []string{"smartstore", "coupang"}, got.Profile.OnlinePlatforms)

	byEmail, err := repo.GetByEmail(ctx, "seller@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepository_GetProfileByUserID_OrphanedIdentity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "orphan@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(ctx, user))

	profile, err := repo.GetProfileByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "seller@example.com", Password: "old"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new"))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Password)

	err = repo.UpdatePassword(ctx, 999, "new")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ConsumePasswordReset(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "seller@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.CreatePasswordReset(ctx, &models.PasswordReset{
		Token:     "valid-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, repo.CreatePasswordReset(ctx, &models.PasswordReset{
		Token:     "expired-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	reset, err := repo.ConsumePasswordReset(ctx, "valid-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, reset.UserID)
	require.NotNil(t, reset.UsedAt)

	// Single use: a second claim on the same token fails.
	_, err = repo.ConsumePasswordReset(ctx, "valid-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.ConsumePasswordReset(ctx, "expired-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.ConsumePasswordReset(ctx, "unknown-token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
