package service

import (
	"context"
	"errors"
	"strings"

	"sellerhood/internal/models"
	"sellerhood/internal/querycache"
	"sellerhood/internal/repository"

	"gorm.io/gorm"
)

// CommentInput carries the writable fields of a comment.
type CommentInput struct {
	Content     string `json:"content"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// CommentService serves post comments. Comment mutations always invalidate
// rather than patch: the comment list and the parent post's cached counter
// both change shape, so the next read refetches.
type CommentService struct {
	comments repository.CommentRepository
	cache    *querycache.Cache
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments repository.CommentRepository, cache *querycache.Cache) *CommentService {
	return &CommentService{comments: comments, cache: cache}
}

// List returns a post's comments oldest first. The cached list is served on
// every read while a background refetch keeps it current.
func (s *CommentService) List(ctx context.Context, postID uint) ([]*models.Comment, error) {
	comments, err := querycache.Fetch(ctx, s.cache, querycache.CommentsKey(postID), querycache.CommentsStale,
		func(ctx context.Context) ([]*models.Comment, error) {
			return s.comments.ListByPost(ctx, postID)
		})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// Create adds a comment to a published post.
func (s *CommentService) Create(ctx context.Context, authorID, postID uint, input CommentInput) (*models.Comment, error) {
	if authorID == 0 {
		return nil, models.NewLoginRequiredError()
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, models.NewValidationError("댓글 내용을 입력해주세요.")
	}

	comment := &models.Comment{
		PostID:      postID,
		AuthorID:    authorID,
		Content:     input.Content,
		IsAnonymous: input.IsAnonymous,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("게시글", postID)
		}
		return nil, models.NewInternalError(err)
	}

	s.invalidateFor(postID)
	return comment, nil
}

// Delete removes the caller's own comment. Someone else's comment is
// untouchable; the repository reports that as not-found and nothing in the
// cache moves.
func (s *CommentService) Delete(ctx context.Context, authorID, commentID uint) error {
	if authorID == 0 {
		return models.NewLoginRequiredError()
	}

	postID, err := s.comments.Delete(ctx, commentID, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewForbiddenError("본인이 작성한 댓글만 삭제할 수 있습니다.")
		}
		return models.NewInternalError(err)
	}

	s.invalidateFor(postID)
	return nil
}

// invalidateFor drops every cached view affected by a comment change: the
// comment list itself, the parent detail (comment_count), and the post
// lists that display the counter.
func (s *CommentService) invalidateFor(postID uint) {
	s.cache.Invalidate(querycache.CommentsKey(postID))
	s.cache.Invalidate(querycache.PostKey(postID))
	s.cache.InvalidatePrefix(querycache.PostListPrefix)
}
