package server

import (
	"errors"
	"time"

	"sellerhood/internal/models"
	"sellerhood/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const maxPaginationLimit = 50

// parseID extracts a route parameter as a positive uint. On failure it
// writes a 400 JSON response and returns errResponseWritten; callers should
// then return nil.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("잘못된 요청입니다."))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user ID, or zero for anonymous
// requests running behind OptionalAuth.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// parsePostFilters reads the post list query parameters into filters,
// clamping the limit.
func parsePostFilters(c *fiber.Ctx) models.PostFilters {
	limit := c.QueryInt("limit", 0)
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return models.PostFilters{
		Category:       c.Query("category"),
		SearchKeyword:  c.Query("q"),
		OrderBy:        c.Query("order_by"),
		OrderDirection: c.Query("order"),
		Limit:          limit,
		Offset:         offset,
	}
}

// authorView is what community views expose about an author: the masked
// nickname, or the anonymous label. The underlying identity never leaves
// the server for anonymous content.
type authorView struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func buildAuthorView(author *models.User, isAnonymous bool) authorView {
	nickname := ""
	avatar := ""
	if author != nil && author.Profile != nil {
		nickname = author.Profile.Nickname
		if !isAnonymous {
			avatar = author.Profile.AvatarURL
		}
	}
	return authorView{
		DisplayName: validation.DisplayName(nickname, isAnonymous),
		AvatarURL:   avatar,
	}
}

type postView struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Category     string     `json:"category"`
	Author       authorView `json:"author"`
	IsAnonymous  bool       `json:"is_anonymous"`
	IsMine       bool       `json:"is_mine"`
	ViewCount    int        `json:"view_count"`
	LikeCount    int        `json:"like_count"`
	CommentCount int        `json:"comment_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func buildPostView(post *models.Post, viewerID uint) postView {
	return postView{
		ID:           post.ID,
		Title:        post.Title,
		Content:      post.Content,
		Category:     post.Category,
		Author:       buildAuthorView(post.Author, post.IsAnonymous),
		IsAnonymous:  post.IsAnonymous,
		IsMine:       viewerID != 0 && post.AuthorID == viewerID,
		ViewCount:    post.ViewCount,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
	}
}

func buildPostViews(posts []*models.Post, viewerID uint) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, buildPostView(p, viewerID))
	}
	return views
}

type commentView struct {
	ID          uint       `json:"id"`
	PostID      uint       `json:"post_id"`
	Content     string     `json:"content"`
	Author      authorView `json:"author"`
	IsAnonymous bool       `json:"is_anonymous"`
	IsMine      bool       `json:"is_mine"`
	CreatedAt   time.Time  `json:"created_at"`
}

func buildCommentView(comment *models.Comment, viewerID uint) commentView {
	return commentView{
		ID:          comment.ID,
		PostID:      comment.PostID,
		Content:     comment.Content,
		Author:      buildAuthorView(comment.Author, comment.IsAnonymous),
		IsAnonymous: comment.IsAnonymous,
		IsMine:      viewerID != 0 && comment.AuthorID == viewerID,
		CreatedAt:   comment.CreatedAt,
	}
}

func buildCommentViews(comments []*models.Comment, viewerID uint) []commentView {
	views := make([]commentView, 0, len(comments))
	for _, cm := range comments {
		views = append(views, buildCommentView(cm, viewerID))
	}
	return views
}

// respondError maps an application error onto its HTTP status.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.HTTPStatus(err), err)
}
