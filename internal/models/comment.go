package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a reply on a post. The author (with profile) is always loaded
// alongside so views can render a display name without a second query.
type Comment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PostID      uint           `gorm:"not null;index" json:"post_id"`
	AuthorID    uint           `gorm:"not null;index" json:"author_id"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool           `gorm:"not null;default:false" json:"is_anonymous"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like is a per-(user, post) membership record. The unique index makes the
// toggle idempotent at the storage level.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
