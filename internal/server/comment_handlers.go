package server

import (
	"atelier/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/projects/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)
	p := parsePagination(c, 50)

	comments, err := s.commentService.ListByProject(c.Context(), viewerID, projectID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/projects/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.Create(c.Context(), currentUserID(c), projectID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/projects/:id/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.Update(c.Context(), currentUserID(c), commentID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/projects/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	if err := s.commentService.Delete(c.Context(), currentUserID(c), commentID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// LikeComment handles POST /api/projects/:id/comments/:commentId/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.Like(c.Context(), currentUserID(c), commentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// UnlikeComment handles DELETE /api/projects/:id/comments/:commentId/like
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.Unlike(c.Context(), currentUserID(c), commentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}
