package server

import (
	"atelier/internal/models"
	"atelier/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateProject handles POST /api/projects
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Param request body service.ProjectInput true "Project payload"
// @Success 201 {object} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Router /projects [post]
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var req service.ProjectInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectService.Create(c.Context(), currentUserID(c), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetProjects handles GET /api/projects (public browse, optional tag filter)
func (s *Server) GetProjects(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	if tag := c.Query("tag"); tag != "" {
		projects, err := s.projectService.ListByTag(c.Context(), viewerID, tag, p.Limit, p.Offset)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(fiber.Map{"projects": projects})
	}

	projects, err := s.projectService.ListPublic(c.Context(), viewerID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}

// GetProject handles GET /api/projects/:id. Non-owner reads count as views.
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	project, err := s.projectService.Get(c.Context(), viewerID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project)
}

// UpdateProject handles PUT /api/projects/:id
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.ProjectInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectService.Update(c.Context(), currentUserID(c), id, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.projectService.Delete(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Project deleted"})
}

// LikeProject handles POST /api/projects/:id/like
// @Summary Like a project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} service.LikeResult
// @Router /projects/{id}/like [post]
func (s *Server) LikeProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.projectService.Like(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// UnlikeProject handles DELETE /api/projects/:id/like
func (s *Server) UnlikeProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.projectService.Unlike(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// SaveProject handles POST /api/projects/:id/save
func (s *Server) SaveProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	saved, err := s.projectService.SaveBookmark(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"saved": saved})
}

// UnsaveProject handles DELETE /api/projects/:id/save
func (s *Server) UnsaveProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	saved, err := s.projectService.RemoveBookmark(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"saved": saved})
}

// GetSavedProjects handles GET /api/projects/saved
func (s *Server) GetSavedProjects(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	projects, err := s.projectService.ListSaved(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}
