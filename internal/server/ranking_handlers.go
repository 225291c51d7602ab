package server

import (
	"atelier/internal/featureflags"
	"atelier/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetGlobalRanking handles GET /api/ranking/global
// @Summary Global user leaderboard
// @Description Users ordered by total popularity score. Ranks are 1-based
// and continue across pages (rank = position + skip).
// @Tags ranking
// @Produce json
// @Param skip query int false "Entries to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} service.UserRankingPage
// @Router /ranking/global [get]
func (s *Server) GetGlobalRanking(c *fiber.Ctx) error {
	skip, limit := parseSkipLimit(c, 20)
	page, err := s.rankingService.Global(c.Context(), skip, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetWeeklyRanking handles GET /api/ranking/weekly
func (s *Server) GetWeeklyRanking(c *fiber.Ctx) error {
	if !s.featureFlags.Enabled(featureflags.WeeklyRanking) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Weekly ranking is not enabled"))
	}
	skip, limit := parseSkipLimit(c, 20)
	page, err := s.rankingService.Weekly(c.Context(), skip, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetProjectRanking handles GET /api/ranking/projects
func (s *Server) GetProjectRanking(c *fiber.Ctx) error {
	skip, limit := parseSkipLimit(c, 20)
	page, err := s.rankingService.Projects(c.Context(), skip, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetTagRanking handles GET /api/ranking/tags
func (s *Server) GetTagRanking(c *fiber.Ctx) error {
	skip, limit := parseSkipLimit(c, 20)
	page, err := s.rankingService.Tags(c.Context(), skip, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetMyPosition handles GET /api/ranking/my-position
func (s *Server) GetMyPosition(c *fiber.Ctx) error {
	pos, err := s.rankingService.MyPosition(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(pos)
}
