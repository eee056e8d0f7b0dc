package server

import (
	"mooderia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetSystemStatus handles GET /api/system/status
func (s *Server) GetSystemStatus(c *fiber.Ctx) error {
	status, err := s.state.Status()
	body := fiber.Map{
		"status":  status,
		"session": s.sessions.Current() != nil,
	}
	if status == service.BootCorrupted && err != nil {
		body["error"] = err.Error()
	}
	return c.JSON(body)
}

// ResetSystem handles POST /api/system/reset. It wipes every stored record
// and forgets the persona conversations; it is also the only way out of a
// corrupted boot.
func (s *Server) ResetSystem(c *fiber.Ctx) error {
	if err := s.state.Reset(c.UserContext()); err != nil {
		return respond(c, err)
	}
	s.personas.ResetConversations()
	status, _ := s.state.Status()
	return c.JSON(fiber.Map{"status": status})
}

// GetFeatureFlags returns configured feature flags and their evaluation for
// the active user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	var subject string
	if current := s.sessions.Current(); current != nil {
		subject = current.Username
	}
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(subject),
	})
}
