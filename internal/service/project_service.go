package service

import (
	"context"
	"fmt"
	"time"

	"atelier/internal/middleware"
	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/validation"
)

type ProjectService struct {
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	analyticsRepo repository.AnalyticsRepository
	permissions   *PermissionService
	notifications *NotificationService
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	analyticsRepo repository.AnalyticsRepository,
	permissions *PermissionService,
	notifications *NotificationService,
) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		analyticsRepo: analyticsRepo,
		permissions:   permissions,
		notifications: notifications,
	}
}

// ProjectInput is the create/update payload. Nil slices on update mean
// unchanged; empty slices clear.
type ProjectInput struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Visibility  *models.ProjectVisibility `json:"visibility"`
	Tags        []string                  `json:"tags"`
	ImageURLs   []string                  `json:"image_urls"`
}

func (s *ProjectService) Create(ctx context.Context, ownerID uint, input ProjectInput) (*models.Project, error) {
	if err := validation.ValidateProjectTitle(input.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateProjectDescription(input.Description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	tags, err := validation.NormalizeTags(input.Tags)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateImageURLs(input.ImageURLs); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	visibility := models.ProjectVisibilityPublic
	if input.Visibility != nil {
		if *input.Visibility != models.ProjectVisibilityPublic && *input.Visibility != models.ProjectVisibilityPrivate {
			return nil, models.NewValidationError("Visibility must be public or private")
		}
		visibility = *input.Visibility
	}

	project := &models.Project{
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		Visibility:  visibility,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(tags) > 0 {
		if err := s.projectRepo.ReplaceTags(ctx, project.ID, tags); err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	if len(input.ImageURLs) > 0 {
		if err := s.projectRepo.ReplaceImages(ctx, project.ID, input.ImageURLs); err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return s.projectRepo.GetByID(ctx, project.ID, ownerID)
}

// Get enforces visibility and records a view for non-owner reads.
func (s *ProjectService) Get(ctx context.Context, viewerID, projectID uint) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, viewerID, project); err != nil {
		return nil, err
	}
	// A lost view must not fail the read.
	if viewerID != project.OwnerID {
		if err := s.analyticsRepo.RecordView(ctx, projectID, time.Now()); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to record project view",
				"project_id", projectID, "error", err)
		}
	}
	return project, nil
}

func (s *ProjectService) authorizeView(ctx context.Context, viewerID uint, project *models.Project) error {
	if viewerID == project.OwnerID && viewerID != 0 {
		return nil
	}
	var collab *models.ProjectCollaborator
	if viewerID != 0 {
		var err error
		collab, err = s.projectRepo.GetCollaborator(ctx, project.ID, viewerID)
		if err != nil {
			return models.NewInternalError(err)
		}
	}
	owner, err := s.userRepo.GetByID(ctx, project.OwnerID)
	if err != nil {
		return err
	}
	ok, err := s.permissions.CanViewProject(ctx, viewerID, project, owner, collab)
	if err != nil {
		return err
	}
	if !ok {
		// Hidden content reads as absent, not forbidden.
		return models.NewNotFoundError("Project not found")
	}
	return nil
}

func (s *ProjectService) ListPublic(ctx context.Context, viewerID uint, limit, offset int) ([]models.Project, error) {
	return s.projectRepo.ListPublic(ctx, viewerID, limit, offset)
}

func (s *ProjectService) ListByOwner(ctx context.Context, viewerID uint, owner *models.User, limit, offset int) ([]models.Project, error) {
	caps, err := s.permissions.Resolve(ctx, viewerID, owner)
	if err != nil {
		return nil, err
	}
	if !caps.CanViewProjects {
		return []models.Project{}, nil
	}
	projects, err := s.projectRepo.GetByOwner(ctx, owner.ID, viewerID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if caps.IsSelf {
		return projects, nil
	}
	// Non-owners only see public projects unless they collaborate on one.
	visible := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if p.Visibility == models.ProjectVisibilityPublic {
			visible = append(visible, p)
			continue
		}
		if viewerID != 0 {
			collab, err := s.projectRepo.GetCollaborator(ctx, p.ID, viewerID)
			if err != nil {
				return nil, models.NewInternalError(err)
			}
			if collab != nil {
				visible = append(visible, p)
			}
		}
	}
	return visible, nil
}

func (s *ProjectService) ListSaved(ctx context.Context, userID uint, limit, offset int) ([]models.Project, error) {
	return s.projectRepo.ListSaved(ctx, userID, limit, offset)
}

func (s *ProjectService) ListByTag(ctx context.Context, viewerID uint, tag string, limit, offset int) ([]models.Project, error) {
	normalized, err := validation.NormalizeTags([]string{tag})
	if err != nil || len(normalized) == 0 {
		return nil, models.NewValidationError("Invalid tag")
	}
	return s.projectRepo.ListByTag(ctx, normalized[0], viewerID, limit, offset)
}

// Update lets the owner change everything and editor collaborators change
// content fields. Visibility is owner-only.
func (s *ProjectService) Update(ctx context.Context, userID, projectID uint, input ProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	isOwner := project.OwnerID == userID
	if !isOwner {
		collab, err := s.projectRepo.GetCollaborator(ctx, projectID, userID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if collab == nil || collab.Role != models.CollabRoleEditor {
			return nil, models.NewForbiddenError("Only the owner or an editor can modify this project")
		}
	}
	if input.Visibility != nil && !isOwner {
		return nil, models.NewForbiddenError("Only the owner can change visibility")
	}

	if input.Title != "" {
		if err := validation.ValidateProjectTitle(input.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		project.Title = input.Title
	}
	if input.Description != "" {
		if err := validation.ValidateProjectDescription(input.Description); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		project.Description = input.Description
	}
	if input.Visibility != nil {
		if *input.Visibility != models.ProjectVisibilityPublic && *input.Visibility != models.ProjectVisibilityPrivate {
			return nil, models.NewValidationError("Visibility must be public or private")
		}
		project.Visibility = *input.Visibility
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, models.NewInternalError(err)
	}
	if input.Tags != nil {
		tags, err := validation.NormalizeTags(input.Tags)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if err := s.projectRepo.ReplaceTags(ctx, projectID, tags); err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	if input.ImageURLs != nil {
		if err := validation.ValidateImageURLs(input.ImageURLs); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if err := s.projectRepo.ReplaceImages(ctx, projectID, input.ImageURLs); err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return s.projectRepo.GetByID(ctx, projectID, userID)
}

func (s *ProjectService) Delete(ctx context.Context, userID, projectID uint) error {
	project, err := s.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if project.OwnerID != userID {
		return models.NewForbiddenError("Only the owner can delete a project")
	}
	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// LikeResult reports the like state after a toggle together with the new
// total, so clients never have to guess.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

func (s *ProjectService) Like(ctx context.Context, userID, projectID uint) (*LikeResult, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, userID, project); err != nil {
		return nil, err
	}
	created, err := s.projectRepo.Like(ctx, userID, projectID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if created {
		actorID := userID
		s.notifications.Notify(ctx, &models.Notification{
			RecipientID: project.OwnerID,
			ActorID:     &actorID,
			Type:        models.NotificationTypeLike,
			Message:     fmt.Sprintf("liked your project %q", project.Title),
			ProjectID:   &project.ID,
		})
	}
	return s.likeResult(ctx, userID, projectID)
}

func (s *ProjectService) Unlike(ctx context.Context, userID, projectID uint) (*LikeResult, error) {
	if _, err := s.projectRepo.Unlike(ctx, userID, projectID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.likeResult(ctx, userID, projectID)
}

func (s *ProjectService) likeResult(ctx context.Context, userID, projectID uint) (*LikeResult, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: project.Liked, LikesCount: int64(project.LikesCount)}, nil
}

func (s *ProjectService) SaveBookmark(ctx context.Context, userID, projectID uint) (bool, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	if err := s.authorizeView(ctx, userID, project); err != nil {
		return false, err
	}
	if _, err := s.projectRepo.Save(ctx, userID, projectID); err != nil {
		return false, models.NewInternalError(err)
	}
	return true, nil
}

func (s *ProjectService) RemoveBookmark(ctx context.Context, userID, projectID uint) (bool, error) {
	if _, err := s.projectRepo.Unsave(ctx, userID, projectID); err != nil {
		return false, models.NewInternalError(err)
	}
	return false, nil
}
