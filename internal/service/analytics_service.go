package service

import (
	"context"

	"atelier/internal/models"
	"atelier/internal/repository"
)

type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	projectRepo   repository.ProjectRepository
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, projectRepo repository.ProjectRepository) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo, projectRepo: projectRepo}
}

// Dashboard aggregates the caller's own engagement: account totals plus
// their strongest projects.
type Dashboard struct {
	Totals      *models.UserStats     `json:"totals"`
	TopProjects []models.ProjectStats `json:"top_projects"`
}

func (s *AnalyticsService) Dashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	totals, err := s.analyticsRepo.OwnerTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	top, err := s.analyticsRepo.TopProjectsByOwner(ctx, userID, 5)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Dashboard{Totals: totals, TopProjects: top}, nil
}

// ProjectStats is owner-only: engagement numbers on private drafts must not
// leak through the analytics surface.
func (s *AnalyticsService) ProjectStats(ctx context.Context, userID, projectID uint) (*models.ProjectStats, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != userID {
		return nil, models.NewForbiddenError("Only the owner can view project analytics")
	}
	return s.analyticsRepo.ProjectTotals(ctx, projectID)
}
