// Package repository provides data access layer implementations for the
// application. Each method performs one logical operation against the
// backing store; no caching happens at this layer.
package repository

import (
	"context"
	"strings"

	"sellerhood/internal/models"
	"sellerhood/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filters models.PostFilters) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id, authorID uint) error
	IncrementViewCount(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeResult, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID returns a published post with its author profile denormalized.
// Unpublished posts are invisible to every read path.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author.Profile").
		Where("is_published = ?", true).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filters models.PostFilters) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	q := r.db.WithContext(ctx).
		Preload("Author.Profile").
		Where("is_published = ?", true)

	if filters.Category != "" {
		q = q.Where("category = ?", filters.Category)
	}
	if kw := strings.TrimSpace(filters.SearchKeyword); kw != "" {
		// LOWER/LIKE keeps the substring match case-insensitive on both
		// Postgres and the sqlite used in tests.
		pattern := "%" + strings.ToLower(kw) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern)
	}

	q = q.Order(orderClause(filters.OrderBy, filters.OrderDirection))

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	q = q.Limit(limit)
	if filters.Offset > 0 {
		q = q.Offset(filters.Offset)
	}

	var posts []*models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// orderClause validates the requested ordering against the whitelist.
// Exactly one field and direction pair is ever active; anything
// unrecognized falls back to created_at descending.
func orderClause(orderBy, direction string) string {
	if !models.ValidOrderBy(orderBy) {
		orderBy = models.OrderByCreatedAt
	}
	dir := "DESC"
	if direction == "asc" {
		dir = "ASC"
	}
	return orderBy + " " + dir
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	return r.db.WithContext(ctx).Save(post).Error
}

// Delete removes a post scoped to its author. Deleting someone else's post
// affects zero rows and reports gorm.ErrRecordNotFound.
func (r *postRepository) Delete(ctx context.Context, id, authorID uint) error {
	defer observability.TrackQuery("delete", "posts")()
	res := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&models.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementViewCount bumps the counter atomically in the store; the client
// never computes the new value.
func (r *postRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND is_published = ?", id, true).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// ToggleLike flips the caller's like membership and the aggregate counter in
// a single transaction, returning the new membership state and count
// together. A second toggle reverses the first.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeResult, error) {
	defer observability.TrackQuery("toggle_like", "likes")()

	var result models.LikeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").Where("is_published = ?", true).First(&post, postID).Error; err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}

		delta := 1
		if res.RowsAffected > 0 {
			result.IsLiked = false
			delta = -1
		} else {
			if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
				return err
			}
			result.IsLiked = true
		}

		if err := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error; err != nil {
			return err
		}

		var refreshed models.Post
		if err := tx.Select("like_count").First(&refreshed, postID).Error; err != nil {
			return err
		}
		result.NewLikeCount = refreshed.LikeCount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
