package repository

import (
	"testing"

	"sellerhood/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.PasswordReset{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, nickname string) *models.User {
	t.Helper()

	user := &models.User{Email: email, Password: "hashed"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: user.ID, Nickname: nickname}).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, authorID uint, title, category string) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:       title,
		Content:     "내용 " + title,
		AuthorID:    authorID,
		Category:    category,
		IsPublished: true,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
