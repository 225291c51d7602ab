package service

import (
	"context"
	"strings"

	"atelier/internal/models"
	"atelier/internal/repository"
)

const maxCommentLength = 2000

type CommentService struct {
	commentRepo   repository.CommentRepository
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	permissions   *PermissionService
	notifications *NotificationService
	isAdmin       func(ctx context.Context, userID uint) (bool, error)
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	permissions *PermissionService,
	notifications *NotificationService,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		permissions:   permissions,
		notifications: notifications,
		isAdmin:       isAdmin,
	}
}

func (s *CommentService) authorizeProject(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if userID == project.OwnerID {
		return project, nil
	}
	var collab *models.ProjectCollaborator
	if userID != 0 {
		collab, err = s.projectRepo.GetCollaborator(ctx, projectID, userID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	owner, err := s.userRepo.GetByID(ctx, project.OwnerID)
	if err != nil {
		return nil, err
	}
	ok, err := s.permissions.CanViewProject(ctx, userID, project, owner, collab)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Project not found")
	}
	return project, nil
}

func (s *CommentService) Create(ctx context.Context, userID, projectID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLength {
		return nil, models.NewValidationError("Comment must be at most 2000 characters")
	}
	project, err := s.authorizeProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:   content,
		UserID:    userID,
		ProjectID: projectID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	actorID := userID
	s.notifications.Notify(ctx, &models.Notification{
		RecipientID: project.OwnerID,
		ActorID:     &actorID,
		Type:        models.NotificationTypeComment,
		Message:     "commented on your project " + project.Title,
		ProjectID:   &project.ID,
		CommentID:   &comment.ID,
	})
	return s.commentRepo.GetByID(ctx, comment.ID, userID)
}

func (s *CommentService) ListByProject(ctx context.Context, userID, projectID uint, limit, offset int) ([]models.Comment, error) {
	if _, err := s.authorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByProject(ctx, projectID, userID, limit, offset)
}

func (s *CommentService) Update(ctx context.Context, userID, commentID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxCommentLength {
		return nil, models.NewValidationError("Comment must be at most 2000 characters")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError("Only the author can edit a comment")
	}
	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.commentRepo.GetByID(ctx, commentID, userID)
}

// Delete is allowed for the comment author, the project owner and admins.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID, userID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		project, err := s.projectRepo.GetByID(ctx, comment.ProjectID, userID)
		if err != nil {
			return err
		}
		if project.OwnerID != userID {
			admin, err := s.isAdmin(ctx, userID)
			if err != nil {
				return models.NewInternalError(err)
			}
			if !admin {
				return models.NewForbiddenError("Not allowed to delete this comment")
			}
		}
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *CommentService) Like(ctx context.Context, userID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeProject(ctx, userID, comment.ProjectID); err != nil {
		return nil, err
	}
	if _, err := s.commentRepo.Like(ctx, userID, commentID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.commentRepo.GetByID(ctx, commentID, userID)
}

func (s *CommentService) Unlike(ctx context.Context, userID, commentID uint) (*models.Comment, error) {
	if _, err := s.commentRepo.Unlike(ctx, userID, commentID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.commentRepo.GetByID(ctx, commentID, userID)
}
