package querycache

import (
	"fmt"
	"strings"
	"time"

	"sellerhood/internal/models"
)

// Staleness windows per entity. A stale entry is still returned
// synchronously; the window only controls when a background refetch kicks
// in. Comment lists use zero: every read serves the cached value and
// refreshes behind it.
const (
	PostListStale   = 5 * time.Minute
	PostStale       = 5 * time.Minute
	LikeStatusStale = 1 * time.Minute
	CommentsStale   = 0
)

// DefaultPostListLimit applies when a list query does not specify a limit.
const DefaultPostListLimit = 10

// PostListPrefix prefixes every post list key, so list-wide invalidation
// covers any filter combination.
const PostListPrefix = "posts:"

// PostKey keys a single post detail entry.
func PostKey(id uint) string {
	return fmt.Sprintf("post:%d", id)
}

// PostListKey builds a canonical key for a filtered post list. Structurally
// equal filters always produce the same key: zero values are normalized to
// their effective defaults before serialization.
func PostListKey(f models.PostFilters) string {
	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = models.OrderByCreatedAt
	}
	dir := f.OrderDirection
	if dir != "asc" {
		dir = "desc"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPostListLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf("%scat=%s|q=%s|order=%s.%s|limit=%d|offset=%d",
		PostListPrefix, f.Category, strings.ToLower(strings.TrimSpace(f.SearchKeyword)), orderBy, dir, limit, offset)
}

// CommentsKey keys the comment list of a post.
func CommentsKey(postID uint) string {
	return fmt.Sprintf("comments:%d", postID)
}

// LikeStatusKey keys one user's like membership on one post.
func LikeStatusKey(userID, postID uint) string {
	return fmt.Sprintf("post-like:%d:%d", userID, postID)
}
