package server

import (
	"sellerhood/internal/models"
	"sellerhood/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	filters := parsePostFilters(c)
	if filters.Category != "" && !models.ValidCategory(filters.Category) {
		return respondError(c, models.NewValidationError("올바르지 않은 게시판입니다."))
	}

	posts, err := s.postService.List(c.Context(), filters)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts": buildPostViews(posts, currentUserID(c)),
	})
}

// GetPost handles GET /api/posts/:id. Serving the post also records a view;
// the bump is best effort and never blocks the response.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	s.postService.RecordView(c.Context(), id)

	view := buildPostView(post, currentUserID(c))
	view.ViewCount++

	return c.JSON(fiber.Map{"post": view})
}

// CreatePost handles POST /api/posts.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.PostInput
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("잘못된 요청입니다."))
	}

	post, err := s.postService.Create(c.Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post": buildPostView(post, currentUserID(c)),
	})
}

// UpdatePost handles PUT /api/posts/:id.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.PostInput
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("잘못된 요청입니다."))
	}

	post, err := s.postService.Update(c.Context(), currentUserID(c), id, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"post": buildPostView(post, currentUserID(c))})
}

// DeletePost handles DELETE /api/posts/:id.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.Context(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "삭제되었습니다."})
}

// ToggleLike handles POST /api/posts/:id/like. One call likes, the next
// unlikes; the response carries the new membership state and the
// authoritative count together.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleLike(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"is_liked":   result.IsLiked,
		"like_count": result.NewLikeCount,
	})
}

// GetLikeStatus handles GET /api/posts/:id/like. Anonymous callers get
// is_liked=false, not an error.
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.postService.CheckLike(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"is_liked": liked})
}
