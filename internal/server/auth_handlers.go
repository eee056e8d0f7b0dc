package server

import (
	"mooderia/internal/models"
	"mooderia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RegisterRequest represents the request body for POST /api/auth/register
type RegisterRequest struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// LoginRequest represents the request body for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	User         *models.User `json:"user"`
	NeedsCheckIn bool         `json:"needsCheckIn"`
}

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.sessions.Register(c.UserContext(), service.RegisterInput{
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		return respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{
		User:         res.User.Public(),
		NeedsCheckIn: res.NeedsCheckIn,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.sessions.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respond(c, err)
	}

	return c.JSON(SessionResponse{
		User:         res.User.Public(),
		NeedsCheckIn: res.NeedsCheckIn,
	})
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.sessions.Logout(c.UserContext()); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// UpdateProfileRequest represents the request body for PUT /api/me
type UpdateProfileRequest struct {
	DisplayName  string `json:"displayName"`
	Username     string `json:"username"`
	ProfilePic   string `json:"profilePic"`
	Title        string `json:"title"`
	BannerPic    string `json:"bannerPic"`
	ProfileColor string `json:"profileColor"`
}

// GetMe handles GET /api/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	current := s.sessions.Current()
	if current == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	return c.JSON(current.Public())
}

// UpdateMe handles PUT /api/me
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.sessions.EditProfile(c.UserContext(), service.EditProfileInput{
		DisplayName:  req.DisplayName,
		Username:     req.Username,
		ProfilePic:   req.ProfilePic,
		Title:        req.Title,
		BannerPic:    req.BannerPic,
		ProfileColor: req.ProfileColor,
	})
	if err != nil {
		return respond(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	return c.JSON(user.Public())
}

// GetTheme handles GET /api/theme
func (s *Server) GetTheme(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"theme": s.sessions.Theme()})
}

// SetTheme handles PUT /api/theme
func (s *Server) SetTheme(c *fiber.Ctx) error {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	theme, err := s.sessions.SetTheme(c.UserContext(), models.Theme(req.Theme))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"theme": theme})
}

// ToggleTheme handles POST /api/theme/toggle
func (s *Server) ToggleTheme(c *fiber.Ctx) error {
	theme, err := s.sessions.ToggleTheme(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"theme": theme})
}
