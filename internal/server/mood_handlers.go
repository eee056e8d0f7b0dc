package server

import (
	"mooderia/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SubmitMoodRequest represents the request body for POST /api/mood
type SubmitMoodRequest struct {
	Mood string `json:"mood"`
}

// GetMoodSummary handles GET /api/mood
func (s *Server) GetMoodSummary(c *fiber.Ctx) error {
	summary := s.moods.Summary()
	if summary == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	return c.JSON(summary)
}

// SubmitMood handles POST /api/mood. A second check-in on the same day is
// answered with 200 and accepted=false.
func (s *Server) SubmitMood(c *fiber.Ctx) error {
	var req SubmitMoodRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, accepted, err := s.moods.SubmitMood(c.UserContext(), models.Mood(req.Mood))
	if err != nil {
		return respond(c, err)
	}

	status := fiber.StatusOK
	if accepted {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"accepted": accepted,
		"user":     user.Public(),
		"summary":  s.moods.Summary(),
	})
}
