package repository

import (
	"context"
	"errors"

	"atelier/internal/models"

	"gorm.io/gorm"
)

type InvitationRepository interface {
	Create(ctx context.Context, inv *models.CollabInvitation) error
	GetByID(ctx context.Context, id uint) (*models.CollabInvitation, error)
	// GetPending returns (nil, nil) when no pending invitation exists for the
	// project and invitee.
	GetPending(ctx context.Context, projectID, inviteeID uint) (*models.CollabInvitation, error)
	ListForInvitee(ctx context.Context, inviteeID uint) ([]models.CollabInvitation, error)
	ListForProject(ctx context.Context, projectID uint) ([]models.CollabInvitation, error)
	Delete(ctx context.Context, id uint) error
	// Accept converts the invitation into a collaborator row and removes the
	// invitation in one transaction.
	Accept(ctx context.Context, inv *models.CollabInvitation) error
}

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *models.CollabInvitation) error {
	err := r.db.WithContext(ctx).Omit("Project", "Inviter", "Invitee").Create(inv).Error
	if err != nil {
		return translateUniqueError(err, map[string]string{
			"idx_invitation_project_user": "An invitation for this user already exists",
		})
	}
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id uint) (*models.CollabInvitation, error) {
	var inv models.CollabInvitation
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Inviter").
		First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Invitation not found")
		}
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) GetPending(ctx context.Context, projectID, inviteeID uint) (*models.CollabInvitation, error) {
	var inv models.CollabInvitation
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND invitee_id = ? AND status = ?",
			projectID, inviteeID, models.InvitationStatusPending).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) ListForInvitee(ctx context.Context, inviteeID uint) ([]models.CollabInvitation, error) {
	var invs []models.CollabInvitation
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Inviter").
		Where("invitee_id = ? AND status = ?", inviteeID, models.InvitationStatusPending).
		Order("created_at ASC").
		Find(&invs).Error
	return invs, err
}

func (r *invitationRepository) ListForProject(ctx context.Context, projectID uint) ([]models.CollabInvitation, error) {
	var invs []models.CollabInvitation
	err := r.db.WithContext(ctx).
		Preload("Invitee").
		Where("project_id = ? AND status = ?", projectID, models.InvitationStatusPending).
		Order("created_at ASC").
		Find(&invs).Error
	return invs, err
}

func (r *invitationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CollabInvitation{}, id).Error
}

func (r *invitationRepository) Accept(ctx context.Context, inv *models.CollabInvitation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		collab := models.ProjectCollaborator{
			ProjectID: inv.ProjectID,
			UserID:    inv.InviteeID,
			Role:      inv.Role,
		}
		if err := tx.Create(&collab).Error; err != nil {
			return translateUniqueError(err, map[string]string{
				"idx_project_collaborator": "User is already a collaborator on this project",
			})
		}
		return tx.Delete(&models.CollabInvitation{}, inv.ID).Error
	})
}
