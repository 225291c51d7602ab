package repository

import (
	"context"
	"errors"

	"atelier/internal/cache"
	"atelier/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	GetByID(ctx context.Context, id uint) (*models.Follow, error)
	// GetBetween is directional: requester follows (or requested) target.
	GetBetween(ctx context.Context, requesterID, targetID uint) (*models.Follow, error)
	UpdateStatus(ctx context.Context, id uint, status models.FollowStatus) error
	Delete(ctx context.Context, id uint) error
	Remove(ctx context.Context, requesterID, targetID uint) (bool, error)

	GetFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	GetFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	GetPendingRequests(ctx context.Context, targetID uint) ([]models.Follow, error)

	Block(ctx context.Context, blockerID, blockedID uint) error
	Unblock(ctx context.Context, blockerID, blockedID uint) (bool, error)
	// IsBlocked is directional: blocker has blocked blocked.
	IsBlocked(ctx context.Context, blockerID, blockedID uint) (bool, error)
	// AreBlocked reports a block in either direction.
	AreBlocked(ctx context.Context, userA, userB uint) (bool, error)
	ListBlocked(ctx context.Context, blockerID uint) ([]models.User, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	err := r.db.WithContext(ctx).Omit("Requester", "Target").Create(follow).Error
	if err != nil {
		return translateUniqueError(err, map[string]string{
			"idx_follow_users": "Follow relationship already exists",
		})
	}
	cache.InvalidateUser(ctx, follow.RequesterID)
	cache.InvalidateUser(ctx, follow.TargetID)
	return nil
}

func (r *followRepository) GetByID(ctx context.Context, id uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).Preload("Requester").First(&follow, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Follow request not found")
		}
		return nil, err
	}
	return &follow, nil
}

func (r *followRepository) GetBetween(ctx context.Context, requesterID, targetID uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		First(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &follow, nil
}

func (r *followRepository) UpdateStatus(ctx context.Context, id uint, status models.FollowStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *followRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Follow{}, id).Error
}

func (r *followRepository) Remove(ctx context.Context, requesterID, targetID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		cache.InvalidateUser(ctx, requesterID)
		cache.InvalidateUser(ctx, targetID)
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) GetFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.requester_id = users.id").
		Where("follows.target_id = ? AND follows.status = ?", userID, models.FollowStatusAccepted).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

func (r *followRepository) GetFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.target_id = users.id").
		Where("follows.requester_id = ? AND follows.status = ?", userID, models.FollowStatusAccepted).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

func (r *followRepository) GetPendingRequests(ctx context.Context, targetID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("target_id = ? AND status = ?", targetID, models.FollowStatusPending).
		Order("created_at ASC").
		Find(&follows).Error
	return follows, err
}

// Block also severs any follow edges between the two users, in both
// directions, inside one transaction.
func (r *followRepository) Block(ctx context.Context, blockerID, blockedID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.UserBlock{BlockerID: blockerID, BlockedID: blockedID})
		if result.Error != nil {
			return result.Error
		}
		return tx.Where(
			"(requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?)",
			blockerID, blockedID, blockedID, blockerID,
		).Delete(&models.Follow{}).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateUser(ctx, blockerID)
	cache.InvalidateUser(ctx, blockedID)
	return nil
}

func (r *followRepository) Unblock(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.UserBlock{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) IsBlocked(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserBlock{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) AreBlocked(ctx context.Context, userA, userB uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserBlock{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) ListBlocked(ctx context.Context, blockerID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_blocks ON user_blocks.blocked_id = users.id").
		Where("user_blocks.blocker_id = ?", blockerID).
		Order("user_blocks.created_at DESC").
		Find(&users).Error
	return users, err
}
