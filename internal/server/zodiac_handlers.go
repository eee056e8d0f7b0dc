package server

import (
	"mooderia/internal/models"
	"mooderia/internal/service"
	"mooderia/internal/zodiac"

	"github.com/gofiber/fiber/v2"
)

// CompatibilityRequest represents the request body for POST
// /api/zodiac/compatibility. Either both signs or both birthdays are given.
type CompatibilityRequest struct {
	Sign1  string `json:"sign1"`
	Sign2  string `json:"sign2"`
	Month1 int    `json:"month1"`
	Day1   int    `json:"day1"`
	Month2 int    `json:"month2"`
	Day2   int    `json:"day2"`
}

// GetSigns handles GET /api/zodiac/signs
func (s *Server) GetSigns(c *fiber.Ctx) error {
	return c.JSON(zodiac.Signs)
}

// GetSign handles GET /api/zodiac/signs/:sign
func (s *Server) GetSign(c *fiber.Ctx) error {
	sign, ok := zodiac.Lookup(c.Params("sign"))
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Sign", c.Params("sign")))
	}
	return c.JSON(sign)
}

// GetSignFromDate handles GET /api/zodiac/sign-from-date?month=&day=
func (s *Server) GetSignFromDate(c *fiber.Ctx) error {
	name := zodiac.FromDate(c.QueryInt("month"), c.QueryInt("day"))
	sign, _ := zodiac.Lookup(name)
	return c.JSON(sign)
}

// GetLucky handles GET /api/zodiac/signs/:sign/lucky
func (s *Server) GetLucky(c *fiber.Ctx) error {
	sign, ok := zodiac.Lookup(c.Params("sign"))
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Sign", c.Params("sign")))
	}
	date := service.Today(s.clock)
	color, number := zodiac.Lucky(sign.Name, date)
	return c.JSON(fiber.Map{
		"sign":   sign.Name,
		"date":   date,
		"color":  color,
		"number": number,
	})
}

// GetHoroscope handles GET /api/zodiac/signs/:sign/horoscope
func (s *Server) GetHoroscope(c *fiber.Ctx) error {
	reading, err := s.personas.Horoscope(c.UserContext(), c.Params("sign"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(reading)
}

// CreatePlanetary handles POST /api/zodiac/signs/:sign/planetary
func (s *Server) CreatePlanetary(c *fiber.Ctx) error {
	reading, err := s.personas.PlanetaryInsight(c.UserContext(), c.Params("sign"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(reading)
}

// GetLastPlanetary handles GET /api/zodiac/signs/:sign/planetary
func (s *Server) GetLastPlanetary(c *fiber.Ctx) error {
	reading, ok := s.personas.LastPlanetaryInsight(c.Params("sign"))
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Planetary insight for", c.Params("sign")))
	}
	return c.JSON(reading)
}

// CreateCompatibility handles POST /api/zodiac/compatibility
func (s *Server) CreateCompatibility(c *fiber.Ctx) error {
	var req CompatibilityRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	var (
		result service.Compatibility
		err    error
	)
	if req.Sign1 == "" && req.Sign2 == "" && req.Month1 != 0 && req.Month2 != 0 {
		result, err = s.personas.CompatibilityByBirthday(c.UserContext(), req.Month1, req.Day1, req.Month2, req.Day2)
	} else {
		result, err = s.personas.Compatibility(c.UserContext(), req.Sign1, req.Sign2)
	}
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// GetLastCompatibility handles GET /api/zodiac/compatibility
func (s *Server) GetLastCompatibility(c *fiber.Ctx) error {
	result, ok := s.personas.LastCompatibility()
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Compatibility", "result"))
	}
	return c.JSON(result)
}
