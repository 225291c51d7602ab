package server

import (
	"io"

	"atelier/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /api/users/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:username
// @Summary Get a user's profile
// @Description Returns the profile shaped by the viewer's permissions. A
// private account shows a shell profile to non-followers; a blocking
// account is reported as not found.
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} object{user=object,capabilities=service.Capabilities}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	viewerID, _ := s.optionalUserID(c)

	target, err := s.userService.GetByUsername(c.Context(), username)
	if err != nil {
		return respondServiceError(c, err)
	}

	caps, err := s.permissionService.Resolve(c.Context(), viewerID, target)
	if err != nil {
		return respondServiceError(c, err)
	}
	if caps.IsBlockedBy {
		// A blocked viewer must not learn the account exists.
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User not found"))
	}

	if caps.IsSelf {
		return c.JSON(fiber.Map{"user": target, "capabilities": caps})
	}
	if !caps.CanViewProjects {
		// Shell profile: identity fields only.
		return c.JSON(fiber.Map{"user": target.PublicProfile(), "capabilities": caps})
	}

	projects, err := s.projectService.ListByOwner(c.Context(), viewerID, target, 20, 0)
	if err != nil {
		return respondServiceError(c, err)
	}
	// The full struct (email included) is reserved for self views.
	profile := target.PublicProfile()
	profile["followers_count"] = target.FollowersCount
	profile["following_count"] = target.FollowingCount
	return c.JSON(fiber.Map{
		"user":         profile,
		"projects":     projects,
		"capabilities": caps,
	})
}

// SearchUsers handles GET /api/users/search
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.Search(c.Context(), c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return respondServiceError(c, err)
	}
	results := make([]map[string]any, len(users))
	for i := range users {
		results[i] = users[i].PublicProfile()
	}
	return c.JSON(fiber.Map{"users": results})
}

// UploadAvatar handles POST /api/users/avatar with a multipart "avatar"
// file. The image is normalized to a square WebP before storage.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	userID := currentUserID(c)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Avatar file is required"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read avatar file"))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	name, err := s.imageService.ProcessAvatar(data)
	if err != nil {
		return respondServiceError(c, err)
	}

	avatarURL := "/api/users/avatars/" + name
	if err := s.userService.UpdateAvatar(c.Context(), userID, avatarURL); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"avatar": avatarURL})
}

// GetAvatar serves a stored avatar file.
func (s *Server) GetAvatar(c *fiber.Ctx) error {
	file := c.Params("file")
	if file == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid file name"))
	}
	return c.SendFile(s.imageService.Path(file))
}

// PromoteToAdmin handles POST /api/users/:id/promote-admin
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.moderationService.Promote(c.Context(), currentUserID(c), targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User promoted to admin"})
}

// DemoteFromAdmin handles POST /api/users/:id/demote-admin
func (s *Server) DemoteFromAdmin(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.moderationService.Demote(c.Context(), currentUserID(c), targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Admin rights revoked"})
}
