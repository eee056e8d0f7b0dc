package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mooderia/internal/models"
	"mooderia/internal/notifications"
	"mooderia/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const streamKeepAlive = 15 * time.Second

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	return c.JSON(s.inbox.List())
}

// GetUnreadNotifications handles GET /api/notifications/unread
func (s *Server) GetUnreadNotifications(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"count": s.inbox.UnreadCount()})
}

// OpenNotifications handles POST /api/notifications/open: the inbox view is
// opened, so everything is marked read and listed.
func (s *Server) OpenNotifications(c *fiber.Ctx) error {
	list, err := s.inbox.OpenNotifications(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(list)
}

// MarkNotificationsRead handles POST /api/notifications/read
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	if err := s.inbox.MarkAllRead(c.UserContext()); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"count": s.inbox.UnreadCount()})
}

// StreamNotifications handles GET /api/notifications/stream, a server-sent
// event stream of citizen reactions to the acting user's posts.
func (s *Server) StreamNotifications(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(errors.New("notification stream requires Redis")))
	}

	username := actingUser(c)
	ctx, cancel := context.WithCancel(s.shutdownCtx)
	events := make(chan notifications.Payload, 16)
	err := s.notifier.Subscribe(ctx, username, func(p notifications.Payload) {
		select {
		case events <- p:
		default:
			observability.GlobalLogger.Warn("dropping notification for slow stream",
				slog.String("username", username))
		}
	})
	if err != nil {
		cancel()
		return models.RespondWithError(c, fiber.StatusServiceUnavailable, models.NewInternalError(err))
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(streamKeepAlive)
		defer ticker.Stop()

		// Flush headers
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case p := <-events:
				data, err := json.Marshal(p.Notification)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data)
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}
