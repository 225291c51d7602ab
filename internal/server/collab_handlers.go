package server

import (
	"atelier/internal/models"

	"github.com/gofiber/fiber/v2"
)

// InviteCollaborator handles POST /api/projects/:id/collaborators/invite
// @Summary Invite a collaborator
// @Description Owner invites a user by username or email with a role.
// Re-inviting a pending invitee or an existing collaborator is a conflict.
// @Tags collaboration
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body object{user=string,role=string} true "Invitee and role"
// @Success 201 {object} models.CollabInvitation
// @Failure 409 {object} models.ErrorResponse
// @Router /projects/{id}/collaborators/invite [post]
func (s *Server) InviteCollaborator(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		User string `json:"user"` // username or email
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	role := models.CollabRole(req.Role)
	if req.Role == "" {
		role = models.CollabRoleViewer
	}

	inv, invErr := s.collabService.Invite(c.Context(), currentUserID(c), projectID, req.User, role)
	if invErr != nil {
		return respondServiceError(c, invErr)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// GetMyInvitations handles GET /api/collaborations/invitations
func (s *Server) GetMyInvitations(c *fiber.Ctx) error {
	invs, err := s.collabService.ListInvitations(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"invitations": invs})
}

// GetProjectInvitations handles GET /api/projects/:id/invitations (owner only)
func (s *Server) GetProjectInvitations(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	invs, listErr := s.collabService.ListProjectInvitations(c.Context(), currentUserID(c), projectID)
	if listErr != nil {
		return respondServiceError(c, listErr)
	}
	return c.JSON(fiber.Map{"invitations": invs})
}

// AcceptInvitation handles POST /api/collaborations/invitations/:invitationId/accept
func (s *Server) AcceptInvitation(c *fiber.Ctx) error {
	invitationID, err := s.parseID(c, "invitationId")
	if err != nil {
		return nil
	}
	collab, acceptErr := s.collabService.Accept(c.Context(), currentUserID(c), invitationID)
	if acceptErr != nil {
		return respondServiceError(c, acceptErr)
	}
	return c.JSON(collab)
}

// RejectInvitation handles POST /api/collaborations/invitations/:invitationId/reject
func (s *Server) RejectInvitation(c *fiber.Ctx) error {
	invitationID, err := s.parseID(c, "invitationId")
	if err != nil {
		return nil
	}
	if err := s.collabService.Reject(c.Context(), currentUserID(c), invitationID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Invitation rejected"})
}

// GetCollaborators handles GET /api/projects/:id/collaborators
func (s *Server) GetCollaborators(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	collabs, listErr := s.collabService.ListCollaborators(c.Context(), currentUserID(c), projectID)
	if listErr != nil {
		return respondServiceError(c, listErr)
	}
	return c.JSON(fiber.Map{"collaborators": collabs})
}

// UpdateCollaboratorRole handles PUT /api/projects/:id/collaborators/:userId/role
func (s *Server) UpdateCollaboratorRole(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	collaboratorID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.collabService.UpdateRole(c.Context(), currentUserID(c), projectID, collaboratorID, models.CollabRole(req.Role)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated"})
}

// RemoveCollaborator handles DELETE /api/projects/:id/collaborators/:userId
func (s *Server) RemoveCollaborator(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	collaboratorID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.collabService.Remove(c.Context(), currentUserID(c), projectID, collaboratorID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Collaborator removed"})
}

// LeaveProject handles POST /api/projects/:id/collaborators/leave
func (s *Server) LeaveProject(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.collabService.Leave(c.Context(), currentUserID(c), projectID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Left project"})
}
