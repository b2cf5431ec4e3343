package repository

import (
	"context"

	"sellerhood/internal/models"
	"sellerhood/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment operations. Creation
// and deletion keep the parent post's comment_count in step inside the same
// transaction.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	Delete(ctx context.Context, commentID, authorID uint) (postID uint, err error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

// Create inserts the comment, bumps the parent's comment_count, and reloads
// the row with the author profile denormalized.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").Where("is_published = ?", true).First(&post, comment.PostID).Error; err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogWrite(ctx, "create", map[string]interface{}{"post_id": comment.PostID})

	return r.db.WithContext(ctx).Preload("Author.Profile").First(comment, comment.ID).Error
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author.Profile").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// Delete removes a comment scoped to its author and corrects the parent's
// comment_count in the same transaction. When the caller does not own the
// comment zero rows match and gorm.ErrRecordNotFound is returned; the
// parent's counter is untouched.
func (r *commentRepository) Delete(ctx context.Context, commentID, authorID uint) (uint, error) {
	var postID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Where("id = ? AND author_id = ?", commentID, authorID).First(&comment).Error; err != nil {
			return err
		}
		postID = comment.PostID

		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return 0, err
	}
	r.log.LogWrite(ctx, "delete", map[string]interface{}{"comment_id": commentID, "post_id": postID})
	return postID, nil
}
