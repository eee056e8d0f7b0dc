package server

import (
	"mooderia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AskRequest represents the request body for POST /api/personas/:persona
type AskRequest struct {
	Message string `json:"message"`
}

// ListPersonas handles GET /api/personas
func (s *Server) ListPersonas(c *fiber.Ctx) error {
	return c.JSON(service.Personas)
}

// GetPersonaHistory handles GET /api/personas/:persona
func (s *Server) GetPersonaHistory(c *fiber.Ctx) error {
	persona, err := service.ParsePersona(c.Params("persona"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(s.personas.History(persona))
}

// AskPersona handles POST /api/personas/:persona. Generator trouble never
// fails the request; the persona answers with its fallback line.
func (s *Server) AskPersona(c *fiber.Ctx) error {
	persona, err := service.ParsePersona(c.Params("persona"))
	if err != nil {
		return respond(c, err)
	}
	var req AskRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	reply, err := s.personas.Ask(c.UserContext(), persona, req.Message)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{
		"persona": persona,
		"reply":   reply,
		"history": s.personas.History(persona),
	})
}
