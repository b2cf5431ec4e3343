// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is the identity record: credentials only. Display data lives in
// Profile, which is created in a second step during signup and may therefore
// be missing for an orphaned identity.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Profile   *Profile       `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Profile holds the public-facing part of an account plus the signup survey.
type Profile struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Nickname         string         `gorm:"not null" json:"nickname"`
	AvatarURL        string         `json:"avatar_url,omitempty"`
	SellerExperience string         `json:"seller_experience,omitempty"`
	OnlinePlatforms  []string       `gorm:"serializer:json" json:"online_platforms,omitempty"`
	Expectations     string         `json:"expectations,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuthUser is the merged session view of an account: identity fields joined
// with profile fields. It is never persisted.
type AuthUser struct {
	ID               uint     `json:"id"`
	Email            string   `json:"email"`
	Nickname         string   `json:"nickname"`
	AvatarURL        string   `json:"avatar_url,omitempty"`
	SellerExperience string   `json:"seller_experience,omitempty"`
	OnlinePlatforms  []string `json:"online_platforms,omitempty"`
	Expectations     string   `json:"expectations,omitempty"`
}

// MergeAuthUser joins an identity with its profile. A nil profile produces a
// degraded AuthUser carrying identity fields only, with the nickname falling
// back to the email local part.
func MergeAuthUser(user *User, profile *Profile) *AuthUser {
	if user == nil {
		return nil
	}
	au := &AuthUser{
		ID:    user.ID,
		Email: user.Email,
	}
	if profile == nil {
		if at := strings.IndexByte(user.Email, '@'); at > 0 {
			au.Nickname = user.Email[:at]
		} else {
			au.Nickname = user.Email
		}
		return au
	}
	au.Nickname = profile.Nickname
	au.AvatarURL = profile.AvatarURL
	au.SellerExperience = profile.SellerExperience
	au.OnlinePlatforms = profile.OnlinePlatforms
	au.Expectations = profile.Expectations
	return au
}

// PasswordReset is a single-use password reset token.
type PasswordReset struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Token     string     `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
