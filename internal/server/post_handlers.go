package server

import (
	"strings"

	"mooderia/internal/models"
	"mooderia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest represents the request body for POST /api/posts
type CreatePostRequest struct {
	Content string `json:"content"`
}

// CommentRequest represents the request body for POST /api/posts/:id/comments
type CommentRequest struct {
	Text string `json:"text"`
}

// GetPosts handles GET /api/posts?filter=all|following
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts := s.social.VisiblePosts(service.ParseFeedFilter(c.Query("filter")))
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.social.CreatePost(c.UserContext(), req.Content)
	if err != nil {
		return respond(c, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Post content is required"))
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// HeartPost handles POST /api/posts/:id/heart
func (s *Server) HeartPost(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.social.Heart(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return s.postOrNotFound(c, id, post)
}

// CommentPost handles POST /api/posts/:id/comments
func (s *Server) CommentPost(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return nil
	}
	var req CommentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if strings.TrimSpace(req.Text) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Comment text is required"))
	}

	post, err := s.social.Comment(c.UserContext(), id, req.Text)
	if err != nil {
		return respond(c, err)
	}
	return s.postOrNotFound(c, id, post)
}

// RepostPost handles POST /api/posts/:id/repost
func (s *Server) RepostPost(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.social.Repost(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Post", id))
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (s *Server) postOrNotFound(c *fiber.Ctx, id string, post *models.Post) error {
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Post", id))
	}
	return c.JSON(post)
}
