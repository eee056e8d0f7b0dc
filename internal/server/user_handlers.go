package server

import (
	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/users?q=...
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.social.SearchCitizens(c.UserContext(), c.Query("q"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username, err := param(c, "username")
	if err != nil {
		return nil
	}

	profile, err := s.social.UserProfile(c.UserContext(), username)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(profile)
}

// ToggleFollow handles POST /api/users/:username/follow
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	username, err := param(c, "username")
	if err != nil {
		return nil
	}

	following, err := s.social.Follow(c.UserContext(), username)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"username": username, "following": following})
}

// Unfollow handles DELETE /api/users/:username/follow
func (s *Server) Unfollow(c *fiber.Ctx) error {
	username, err := param(c, "username")
	if err != nil {
		return nil
	}

	if err := s.social.Unfollow(c.UserContext(), username); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"username": username, "following": false})
}

// Block handles POST /api/users/:username/block
func (s *Server) Block(c *fiber.Ctx) error {
	username, err := param(c, "username")
	if err != nil {
		return nil
	}

	if err := s.social.Block(c.UserContext(), username); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"username": username, "blocked": true})
}

// Unblock handles DELETE /api/users/:username/block
func (s *Server) Unblock(c *fiber.Ctx) error {
	username, err := param(c, "username")
	if err != nil {
		return nil
	}

	if err := s.social.Unblock(c.UserContext(), username); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"username": username, "blocked": false})
}

// GetBlockedUsers handles GET /api/me/blocked
func (s *Server) GetBlockedUsers(c *fiber.Ctx) error {
	return c.JSON(s.social.BlockedUsers())
}
