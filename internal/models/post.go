package models

import (
	"time"

	"gorm.io/gorm"
)

// Post categories. These match the community's board structure.
const (
	CategorySellerChat = "seller_chat"
	CategoryStress     = "stress"
	CategoryTips       = "tips"
	CategoryWorry      = "worry"
)

// Categories lists all valid post categories.
var Categories = []string{CategorySellerChat, CategoryStress, CategoryTips, CategoryWorry}

// ValidCategory reports whether c is a known post category.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Post is a community post. The counter columns (view_count, like_count,
// comment_count) are maintained by atomic repository operations, never by
// client-side arithmetic. BestScore is an externally computed ranking value
// used only as a sort key.
type Post struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"not null" json:"title"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	AuthorID     uint           `gorm:"not null;index" json:"author_id"`
	Author       *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Category     string         `gorm:"not null;index" json:"category"`
	IsAnonymous  bool           `gorm:"not null;default:false" json:"is_anonymous"`
	ViewCount    int            `gorm:"not null;default:0" json:"view_count"`
	LikeCount    int            `gorm:"not null;default:0" json:"like_count"`
	CommentCount int            `gorm:"not null;default:0" json:"comment_count"`
	BestScore    float64        `gorm:"not null;default:0;index" json:"best_score"`
	IsPublished  bool           `gorm:"not null;default:true;index" json:"is_published"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Post ordering fields accepted by PostFilters.OrderBy.
const (
	OrderByCreatedAt = "created_at"
	OrderByLikeCount = "like_count"
	OrderByViewCount = "view_count"
	OrderByBestScore = "best_score"
)

// ValidOrderBy reports whether f is an accepted ordering column.
func ValidOrderBy(f string) bool {
	switch f {
	case OrderByCreatedAt, OrderByLikeCount, OrderByViewCount, OrderByBestScore:
		return true
	}
	return false
}

// PostFilters describes a post list query. Exactly one ordering field and
// direction pair is active per call; zero values fall back to created_at
// descending.
type PostFilters struct {
	Category       string `json:"category,omitempty"`
	SearchKeyword  string `json:"search_keyword,omitempty"`
	OrderBy        string `json:"order_by,omitempty"`
	OrderDirection string `json:"order_direction,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}

// LikeResult is the outcome of a like toggle: the caller's new membership
// state and the authoritative aggregate count, produced together by a single
// transaction.
type LikeResult struct {
	IsLiked      bool `json:"is_liked"`
	NewLikeCount int  `json:"new_like_count"`
}
