package server

import (
	"errors"

	"sellerhood/internal/models"
	"sellerhood/internal/ogimage"

	"github.com/gofiber/fiber/v2"
)

const ogExcerptRunes = 80

// categoryLabels maps board identifiers to the names rendered on cards.
var categoryLabels = map[string]string{
	models.CategorySellerChat: "셀러수다",
	models.CategoryStress:     "스트레스해소",
	models.CategoryTips:       "꿀팁공유",
	models.CategoryWorry:      "고민상담",
}

// GetOGImage handles GET /api/og?post=<id>&format=webp. Crawlers always
// receive an image: a missing or hidden post renders the generic site card
// instead of an error.
func (s *Server) GetOGImage(c *fiber.Ctx) error {
	card := ogimage.GenericCard()

	if postID := c.QueryInt("post", 0); postID > 0 {
		post, err := s.postService.Get(c.Context(), uint(postID))
		switch {
		case err == nil:
			card = ogimage.Card{
				Title:        post.Title,
				Excerpt:      ogimage.Excerpt(post.Content, ogExcerptRunes),
				Category:     categoryLabels[post.Category],
				LikeCount:    post.LikeCount,
				CommentCount: post.CommentCount,
			}
		case isNotFound(err):
			// Keep the generic card.
		default:
			return respondError(c, err)
		}
	}

	img := s.ogRenderer.Render(card)

	if c.Query("format") == "webp" && s.flags.Enabled("og_webp", 0) {
		data, err := ogimage.EncodeWebP(img)
		if err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		c.Set(fiber.HeaderContentType, "image/webp")
		c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
		return c.Send(data)
	}

	data, err := ogimage.EncodePNG(img)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(data)
}

func isNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}
