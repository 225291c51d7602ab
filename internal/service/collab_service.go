package service

import (
	"context"
	"strings"

	"atelier/internal/models"
	"atelier/internal/repository"
)

type CollabService struct {
	invitationRepo repository.InvitationRepository
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	notifications  *NotificationService
}

func NewCollabService(
	invitationRepo repository.InvitationRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
) *CollabService {
	return &CollabService{
		invitationRepo: invitationRepo,
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		notifications:  notifications,
	}
}

func (s *CollabService) requireOwner(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != userID {
		return nil, models.NewForbiddenError("Only the project owner can manage collaborators")
	}
	return project, nil
}

// Invite resolves the invitee by username or email and creates a pending
// invitation. Inviting an existing collaborator or re-inviting a pending
// invitee is a conflict.
func (s *CollabService) Invite(ctx context.Context, ownerID, projectID uint, identifier string, role models.CollabRole) (*models.CollabInvitation, error) {
	if !models.ValidCollabRole(role) {
		return nil, models.NewValidationError("Role must be viewer or editor")
	}
	project, err := s.requireOwner(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, models.NewValidationError("Username or email is required")
	}
	var invitee *models.User
	if strings.Contains(identifier, "@") {
		invitee, err = s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		invitee, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if invitee == nil {
		return nil, models.NewNotFoundError("User not found")
	}
	if invitee.ID == ownerID {
		return nil, models.NewValidationError("Cannot invite yourself")
	}

	existing, err := s.projectRepo.GetCollaborator(ctx, projectID, invitee.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if existing != nil {
		return nil, models.NewConflictError("User is already a collaborator on this project")
	}
	pending, err := s.invitationRepo.GetPending(ctx, projectID, invitee.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if pending != nil {
		return nil, models.NewConflictError("An invitation for this user is already pending")
	}

	inv := &models.CollabInvitation{
		ProjectID: projectID,
		InviterID: ownerID,
		InviteeID: invitee.ID,
		Role:      role,
		Status:    models.InvitationStatusPending,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	actorID := ownerID
	s.notifications.Notify(ctx, &models.Notification{
		RecipientID: invitee.ID,
		ActorID:     &actorID,
		Type:        models.NotificationTypeInvitation,
		Message:     "invited you to collaborate on " + project.Title,
		ProjectID:   &project.ID,
	})
	return inv, nil
}

func (s *CollabService) ListInvitations(ctx context.Context, userID uint) ([]models.CollabInvitation, error) {
	return s.invitationRepo.ListForInvitee(ctx, userID)
}

func (s *CollabService) ListProjectInvitations(ctx context.Context, ownerID, projectID uint) ([]models.CollabInvitation, error) {
	if _, err := s.requireOwner(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	return s.invitationRepo.ListForProject(ctx, projectID)
}

// Accept adds the invitee as a collaborator with the stored role and
// consumes the invitation.
func (s *CollabService) Accept(ctx context.Context, userID, invitationID uint) (*models.ProjectCollaborator, error) {
	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.InviteeID != userID {
		return nil, models.NewForbiddenError("Not your invitation")
	}
	if inv.Status != models.InvitationStatusPending {
		return nil, models.NewConflictError("Invitation already handled")
	}
	if err := s.invitationRepo.Accept(ctx, inv); err != nil {
		return nil, err
	}

	actorID := userID
	s.notifications.Notify(ctx, &models.Notification{
		RecipientID: inv.InviterID,
		ActorID:     &actorID,
		Type:        models.NotificationTypeInvitationAccepted,
		Message:     "accepted your collaboration invitation",
		ProjectID:   &inv.ProjectID,
	})
	return s.projectRepo.GetCollaborator(ctx, inv.ProjectID, userID)
}

// Reject consumes the invitation with no collaborator side effect.
func (s *CollabService) Reject(ctx context.Context, userID, invitationID uint) error {
	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.InviteeID != userID {
		return models.NewForbiddenError("Not your invitation")
	}
	if inv.Status != models.InvitationStatusPending {
		return models.NewConflictError("Invitation already handled")
	}
	if err := s.invitationRepo.Delete(ctx, inv.ID); err != nil {
		return models.NewInternalError(err)
	}

	actorID := userID
	s.notifications.Notify(ctx, &models.Notification{
		RecipientID: inv.InviterID,
		ActorID:     &actorID,
		Type:        models.NotificationTypeInvitationRejected,
		Message:     "declined your collaboration invitation",
		ProjectID:   &inv.ProjectID,
	})
	return nil
}

func (s *CollabService) ListCollaborators(ctx context.Context, viewerID, projectID uint) ([]models.ProjectCollaborator, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID, viewerID); err != nil {
		return nil, err
	}
	return s.projectRepo.ListCollaborators(ctx, projectID)
}

func (s *CollabService) UpdateRole(ctx context.Context, ownerID, projectID, collaboratorID uint, role models.CollabRole) error {
	if !models.ValidCollabRole(role) {
		return models.NewValidationError("Role must be viewer or editor")
	}
	if _, err := s.requireOwner(ctx, ownerID, projectID); err != nil {
		return err
	}
	return s.projectRepo.UpdateCollaboratorRole(ctx, projectID, collaboratorID, role)
}

func (s *CollabService) Remove(ctx context.Context, ownerID, projectID, collaboratorID uint) error {
	if _, err := s.requireOwner(ctx, ownerID, projectID); err != nil {
		return err
	}
	return s.projectRepo.RemoveCollaborator(ctx, projectID, collaboratorID)
}

// Leave lets a collaborator remove themselves without the owner.
func (s *CollabService) Leave(ctx context.Context, userID, projectID uint) error {
	collab, err := s.projectRepo.GetCollaborator(ctx, projectID, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if collab == nil {
		return models.NewNotFoundError("Not a collaborator on this project")
	}
	return s.projectRepo.RemoveCollaborator(ctx, projectID, userID)
}
