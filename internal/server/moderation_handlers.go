package server

import (
	"atelier/internal/models"
	"atelier/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReport handles POST /api/reports
// @Summary Report content
// @Tags moderation
// @Accept json
// @Produce json
// @Param request body object{target_type=string,target_id=int,reason=string,description=string} true "Report payload"
// @Success 201 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Router /reports [post]
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var req struct {
		TargetType  string `json:"target_type"`
		TargetID    uint   `json:"target_id"`
		Reason      string `json:"reason"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.moderationService.Report(c.Context(), currentUserID(c),
		models.ReportTargetType(req.TargetType), req.TargetID, req.Reason, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetReports handles GET /api/admin/reports
func (s *Server) GetReports(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	status := models.ReportStatus(c.Query("status"))

	reports, err := s.moderationService.ListReports(c.Context(), currentUserID(c), status, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports})
}

// ReviewReport handles POST /api/admin/reports/:id/review
func (s *Server) ReviewReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	report, reviewErr := s.moderationService.StartReview(c.Context(), currentUserID(c), id)
	if reviewErr != nil {
		return respondServiceError(c, reviewErr)
	}
	return c.JSON(report)
}

// ResolveReport handles PUT /api/admin/reports/:id
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.Resolution
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, resolveErr := s.moderationService.Resolve(c.Context(), currentUserID(c), id, req)
	if resolveErr != nil {
		return respondServiceError(c, resolveErr)
	}
	return c.JSON(report)
}

// AdminGetUser handles GET /api/admin/users/:id
func (s *Server) AdminGetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, getErr := s.userService.GetByID(c.Context(), id)
	if getErr != nil {
		return respondServiceError(c, getErr)
	}
	return c.JSON(user)
}

func (s *Server) moderationReason(c *fiber.Ctx) (string, error) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return "", models.NewValidationError("Invalid request body")
	}
	return req.Reason, nil
}

// SuspendUser handles POST /api/admin/users/:id/suspend
func (s *Server) SuspendUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	reason, reasonErr := s.moderationReason(c)
	if reasonErr != nil {
		return respondServiceError(c, reasonErr)
	}
	if err := s.moderationService.Suspend(c.Context(), currentUserID(c), id, reason); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User suspended"})
}

// UnsuspendUser handles POST /api/admin/users/:id/unsuspend
func (s *Server) UnsuspendUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.moderationService.Unsuspend(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User unsuspended"})
}

// BanUser handles POST /api/admin/users/:id/ban
func (s *Server) BanUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	reason, reasonErr := s.moderationReason(c)
	if reasonErr != nil {
		return respondServiceError(c, reasonErr)
	}
	if err := s.moderationService.Ban(c.Context(), currentUserID(c), id, reason); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User banned"})
}

// UnbanUser handles POST /api/admin/users/:id/unban
func (s *Server) UnbanUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.moderationService.Unban(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User unbanned"})
}

// DeleteUserAccount handles POST /api/admin/users/:id/delete. The account
// is flagged deleted, not removed.
func (s *Server) DeleteUserAccount(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	reason, reasonErr := s.moderationReason(c)
	if reasonErr != nil {
		return respondServiceError(c, reasonErr)
	}
	if err := s.moderationService.FlagDeleted(c.Context(), currentUserID(c), id, reason); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account deleted"})
}
