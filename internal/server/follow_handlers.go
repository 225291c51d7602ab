package server

import (
	"atelier/internal/models"
	"atelier/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/follow/:userId
// @Summary Follow a user
// @Description Follows a public account immediately; creates a pending
// request toward a private account.
// @Tags follow
// @Produce json
// @Param userId path int true "Target user ID"
// @Success 201 {object} models.Follow
// @Failure 409 {object} models.ErrorResponse
// @Router /follow/{userId} [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	follow, followErr := s.followService.Follow(c.Context(), currentUserID(c), targetID)
	if followErr != nil {
		return respondServiceError(c, followErr)
	}
	return c.Status(fiber.StatusCreated).JSON(follow)
}

// UnfollowUser handles DELETE /api/follow/:userId
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.followService.Unfollow(c.Context(), currentUserID(c), targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unfollowed"})
}

// GetFollowRequests handles GET /api/follow/requests
func (s *Server) GetFollowRequests(c *fiber.Ctx) error {
	requests, err := s.followService.PendingRequests(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// AcceptFollowRequest handles POST /api/follow/requests/:requestId/accept
func (s *Server) AcceptFollowRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}
	follow, acceptErr := s.followService.AcceptRequest(c.Context(), currentUserID(c), requestID)
	if acceptErr != nil {
		return respondServiceError(c, acceptErr)
	}
	return c.JSON(follow)
}

// RejectFollowRequest handles POST /api/follow/requests/:requestId/reject
func (s *Server) RejectFollowRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}
	if err := s.followService.RejectRequest(c.Context(), currentUserID(c), requestID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Request rejected"})
}

// GetFollowers handles GET /api/follow/:username/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	target, err := s.userService.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}
	p := parsePagination(c, 50)
	users, err := s.followService.Followers(c.Context(), currentUserID(c), target, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"followers": publicProfiles(users)})
}

// GetFollowing handles GET /api/follow/:username/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	target, err := s.userService.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}
	p := parsePagination(c, 50)
	users, err := s.followService.Following(c.Context(), currentUserID(c), target, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"following": publicProfiles(users)})
}

// RemoveFollower handles DELETE /api/follow/followers/:userId
func (s *Server) RemoveFollower(c *fiber.Ctx) error {
	followerID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.followService.RemoveFollower(c.Context(), currentUserID(c), followerID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Follower removed"})
}

// GetFollowStatus handles GET /api/follow/status/:userId
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	target, statusErr := s.userService.GetByID(c.Context(), targetID)
	if statusErr != nil {
		return respondServiceError(c, statusErr)
	}
	caps, statusErr := s.permissionService.Resolve(c.Context(), currentUserID(c), target)
	if statusErr != nil {
		return respondServiceError(c, statusErr)
	}
	if caps.IsBlockedBy {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User not found"))
	}
	return c.JSON(caps)
}

// BlockUser handles POST /api/follow/block/:userId
func (s *Server) BlockUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.followService.Block(c.Context(), currentUserID(c), targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User blocked"})
}

// UnblockUser handles DELETE /api/follow/block/:userId
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.followService.Unblock(c.Context(), currentUserID(c), targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User unblocked"})
}

// GetBlockedUsers handles GET /api/follow/blocked
func (s *Server) GetBlockedUsers(c *fiber.Ctx) error {
	users, err := s.followService.BlockedUsers(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"blocked": publicProfiles(users)})
}

// GetPrivacySettings handles GET /api/follow/privacy
func (s *Server) GetPrivacySettings(c *fiber.Ctx) error {
	user, err := s.userService.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"is_private":            user.IsPrivate,
		"show_followers":        user.ShowFollowers,
		"show_following":        user.ShowFollowing,
		"allow_follow_requests": user.AllowFollowRequests,
	})
}

// UpdatePrivacySettings handles PUT /api/follow/privacy
func (s *Server) UpdatePrivacySettings(c *fiber.Ctx) error {
	var req service.PrivacyUpdate
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	user, err := s.userService.UpdatePrivacy(c.Context(), currentUserID(c), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

func publicProfiles(users []models.User) []map[string]any {
	out := make([]map[string]any, len(users))
	for i := range users {
		out[i] = users[i].PublicProfile()
	}
	return out
}
