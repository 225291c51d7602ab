package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetDashboard handles GET /api/analytics/dashboard
func (s *Server) GetDashboard(c *fiber.Ctx) error {
	dashboard, err := s.analyticsService.Dashboard(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(dashboard)
}

// GetTopProjects handles GET /api/analytics/top-projects
func (s *Server) GetTopProjects(c *fiber.Ctx) error {
	dashboard, err := s.analyticsService.Dashboard(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"top_projects": dashboard.TopProjects})
}

// GetProjectStats handles GET /api/projects/:id/stats (owner only)
func (s *Server) GetProjectStats(c *fiber.Ctx) error {
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	stats, statsErr := s.analyticsService.ProjectStats(c.Context(), currentUserID(c), projectID)
	if statsErr != nil {
		return respondServiceError(c, statsErr)
	}
	return c.JSON(stats)
}
