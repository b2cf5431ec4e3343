package service

import (
	"context"
	"errors"
	"strings"

	"sellerhood/internal/models"
	"sellerhood/internal/observability"
	"sellerhood/internal/querycache"
	"sellerhood/internal/repository"

	"gorm.io/gorm"
)

// PostInput carries the writable fields of a post.
type PostInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	IsAnonymous bool   `json:"is_anonymous"`
}

func (in PostInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return models.NewValidationError("제목을 입력해주세요.")
	}
	if strings.TrimSpace(in.Content) == "" {
		return models.NewValidationError("내용을 입력해주세요.")
	}
	if !models.ValidCategory(in.Category) {
		return models.NewValidationError("올바르지 않은 게시판입니다.")
	}
	return nil
}

// PostService serves the post board. All reads flow through the query cache;
// writes reconcile it. Like toggles patch cached values in place so the UI
// updates without a refetch, while structural changes (create, edit, delete)
// invalidate instead.
type PostService struct {
	posts repository.PostRepository
	cache *querycache.Cache
}

// NewPostService creates a new PostService.
func NewPostService(posts repository.PostRepository, cache *querycache.Cache) *PostService {
	return &PostService{posts: posts, cache: cache}
}

// List returns published posts matching the filters, cached per canonical
// filter key.
func (s *PostService) List(ctx context.Context, filters models.PostFilters) ([]*models.Post, error) {
	key := querycache.PostListKey(filters)
	posts, err := querycache.Fetch(ctx, s.cache, key, querycache.PostListStale,
		func(ctx context.Context) ([]*models.Post, error) {
			return s.posts.List(ctx, filters)
		})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Get returns one published post by ID.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := querycache.Fetch(ctx, s.cache, querycache.PostKey(id), querycache.PostStale,
		func(ctx context.Context) (*models.Post, error) {
			return s.posts.GetByID(ctx, id)
		})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("게시글", id)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// Create publishes a new post and invalidates every cached list so it shows
// up regardless of filter combination.
func (s *PostService) Create(ctx context.Context, authorID uint, input PostInput) (*models.Post, error) {
	if authorID == 0 {
		return nil, models.NewLoginRequiredError()
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       strings.TrimSpace(input.Title),
		Content:     input.Content,
		AuthorID:    authorID,
		Category:    input.Category,
		IsAnonymous: input.IsAnonymous,
		IsPublished: true,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.cache.InvalidatePrefix(querycache.PostListPrefix)
	return s.Get(ctx, post.ID)
}

// Update edits a post. Only the author may edit; the detail entry and every
// list are invalidated.
func (s *PostService) Update(ctx context.Context, authorID, id uint, input PostInput) (*models.Post, error) {
	if authorID == 0 {
		return nil, models.NewLoginRequiredError()
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("게시글", id)
		}
		return nil, models.NewInternalError(err)
	}
	if post.AuthorID != authorID {
		return nil, models.NewForbiddenError("본인이 작성한 글만 수정할 수 있습니다.")
	}

	post.Title = strings.TrimSpace(input.Title)
	post.Content = input.Content
	post.Category = input.Category
	post.IsAnonymous = input.IsAnonymous
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.cache.Invalidate(querycache.PostKey(id))
	s.cache.InvalidatePrefix(querycache.PostListPrefix)
	return s.Get(ctx, id)
}

// Delete removes the caller's post and drops its cached detail, comment
// list, and every post list.
func (s *PostService) Delete(ctx context.Context, authorID, id uint) error {
	if authorID == 0 {
		return models.NewLoginRequiredError()
	}
	if err := s.posts.Delete(ctx, id, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewForbiddenError("본인이 작성한 글만 삭제할 수 있습니다.")
		}
		return models.NewInternalError(err)
	}

	s.cache.Invalidate(querycache.PostKey(id))
	s.cache.Invalidate(querycache.CommentsKey(id))
	s.cache.InvalidatePrefix(querycache.PostListPrefix)
	return nil
}

// ToggleLike flips the caller's like and synchronizes the cache by patching:
// the membership key gets the new value outright, and every cached copy of
// the post (detail and list entries) gets its like_count replaced in place
// without disturbing fetch timestamps.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeResult, error) {
	if userID == 0 {
		return nil, models.NewLoginRequiredError()
	}

	result, err := s.posts.ToggleLike(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("게시글", postID)
		}
		return nil, models.NewInternalError(err)
	}

	s.cache.Put(querycache.LikeStatusKey(userID, postID), result.IsLiked)
	s.patchLikeCount(postID, result.NewLikeCount)
	return result, nil
}

// patchLikeCount rewrites the cached like_count for one post wherever it
// appears. Values are copied before mutation; earlier readers may still hold
// the old structs.
func (s *PostService) patchLikeCount(postID uint, likeCount int) {
	s.cache.Patch(querycache.PostKey(postID), func(value any) any {
		post, ok := value.(*models.Post)
		if !ok || post == nil {
			return value
		}
		updated := *post
		updated.LikeCount = likeCount
		return &updated
	})

	s.cache.PatchPrefix(querycache.PostListPrefix, func(_ string, value any) any {
		posts, ok := value.([]*models.Post)
		if !ok {
			return value
		}
		patched := false
		out := make([]*models.Post, len(posts))
		for i, p := range posts {
			if p != nil && p.ID == postID {
				updated := *p
				updated.LikeCount = likeCount
				out[i] = &updated
				patched = true
			} else {
				out[i] = p
			}
		}
		if !patched {
			return value
		}
		return out
	})
}

// CheckLike reports whether the user has liked the post. An anonymous caller
// simply has not liked anything; that is an answer, not an error.
func (s *PostService) CheckLike(ctx context.Context, userID, postID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	liked, err := querycache.Fetch(ctx, s.cache, querycache.LikeStatusKey(userID, postID), querycache.LikeStatusStale,
		func(ctx context.Context) (bool, error) {
			return s.posts.IsLiked(ctx, userID, postID)
		})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return liked, nil
}

// RecordView bumps the view counter. Best effort: a failed bump never blocks
// serving the post. Cached copies are patched so the number moves without
// invalidating anything.
func (s *PostService) RecordView(ctx context.Context, postID uint) {
	if err := s.posts.IncrementViewCount(ctx, postID); err != nil {
		observability.GlobalLogger.Warn("view count bump failed",
			"post_id", postID, "error", err.Error())
		return
	}
	s.cache.Patch(querycache.PostKey(postID), func(value any) any {
		post, ok := value.(*models.Post)
		if !ok || post == nil {
			return value
		}
		updated := *post
		updated.ViewCount++
		return &updated
	})
}
