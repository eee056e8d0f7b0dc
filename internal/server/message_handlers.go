package server

import (
	"strings"

	"mooderia/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest represents the request body for POST /api/messages/:username
type SendMessageRequest struct {
	Text string `json:"text"`
}

// GetConversations handles GET /api/messages
func (s *Server) GetConversations(c *fiber.Ctx) error {
	return c.JSON(s.messages.Conversations())
}

// GetUnreadMessages handles GET /api/messages/unread
func (s *Server) GetUnreadMessages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"total":    s.messages.UnreadMessageCount(),
		"bySender": s.messages.UnreadBySender(),
	})
}

// GetThread handles GET /api/messages/:username. Opening a thread marks the
// counterpart's messages read; pass peek=true to only look.
func (s *Server) GetThread(c *fiber.Ctx) error {
	with, err := param(c, "username")
	if err != nil {
		return nil
	}

	if c.QueryBool("peek") {
		return c.JSON(s.messages.Thread(with))
	}
	thread, err := s.messages.OpenThread(c.UserContext(), with)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(thread)
}

// SendMessage handles POST /api/messages/:username
func (s *Server) SendMessage(c *fiber.Ctx) error {
	recipient, err := param(c, "username")
	if err != nil {
		return nil
	}
	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if strings.TrimSpace(req.Text) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Message text is required"))
	}

	msg, err := s.messages.SendMessage(c.UserContext(), recipient, req.Text)
	if err != nil {
		return respond(c, err)
	}
	if msg == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
