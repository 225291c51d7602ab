package service

import (
	"context"

	"atelier/internal/models"
	"atelier/internal/repository"
)

type FollowService struct {
	followRepo    repository.FollowRepository
	userRepo      repository.UserRepository
	permissions   *PermissionService
	notifications *NotificationService
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	permissions *PermissionService,
	notifications *NotificationService,
) *FollowService {
	return &FollowService{
		followRepo:    followRepo,
		userRepo:      userRepo,
		permissions:   permissions,
		notifications: notifications,
	}
}

// Follow creates an accepted edge toward public accounts and a pending
// request toward private ones. The returned follow carries the resulting
// status.
func (s *FollowService) Follow(ctx context.Context, requesterID, targetID uint) (*models.Follow, error) {
	if requesterID == targetID {
		return nil, models.NewValidationError("Cannot follow yourself")
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	blocked, err := s.followRepo.AreBlocked(ctx, requesterID, targetID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if blocked {
		// Blocked relationships surface as a missing account.
		return nil, models.NewNotFoundError("User not found")
	}

	existing, err := s.followRepo.GetBetween(ctx, requesterID, targetID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if existing != nil {
		if existing.Status == models.FollowStatusAccepted {
			return nil, models.NewConflictError("Already following this user")
		}
		return nil, models.NewConflictError("Follow request already pending")
	}

	status := models.FollowStatusAccepted
	notifType := models.NotificationTypeFollow
	message := "started following you"
	if target.IsPrivate {
		if !target.AllowFollowRequests {
			return nil, models.NewForbiddenError("This user does not accept follow requests")
		}
		status = models.FollowStatusPending
		notifType = models.NotificationTypeFollowRequest
		message = "requested to follow you"
	}

	follow := &models.Follow{
		RequesterID: requesterID,
		TargetID:    targetID,
		Status:      status,
	}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		return nil, err
	}

	actorID := requesterID
	s.notifications.Notify(ctx, &models.Notification{
		RecipientID: targetID,
		ActorID:     &actorID,
		Type:        notifType,
		Message:     message,
	})
	return follow, nil
}

func (s *FollowService) Unfollow(ctx context.Context, requesterID, targetID uint) error {
	removed, err := s.followRepo.Remove(ctx, requesterID, targetID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !removed {
		return models.NewNotFoundError("Not following this user")
	}
	return nil
}

// AcceptRequest approves a pending request addressed to userID.
func (s *FollowService) AcceptRequest(ctx context.Context, userID, followID uint) (*models.Follow, error) {
	follow, err := s.followRepo.GetByID(ctx, followID)
	if err != nil {
		return nil, err
	}
	if follow.TargetID != userID {
		return nil, models.NewForbiddenError("Not your follow request")
	}
	if follow.Status != models.FollowStatusPending {
		return nil, models.NewConflictError("Follow request already handled")
	}
	if err := s.followRepo.UpdateStatus(ctx, followID, models.FollowStatusAccepted); err != nil {
		return nil, models.NewInternalError(err)
	}
	follow.Status = models.FollowStatusAccepted

	actorID := userID
	s.notifications.Notify(ctx, &models.Notification{
		RecipientID: follow.RequesterID,
		ActorID:     &actorID,
		Type:        models.NotificationTypeFollowAccepted,
		Message:     "accepted your follow request",
	})
	return follow, nil
}

// RejectRequest removes a pending request with no notification to the
// requester.
func (s *FollowService) RejectRequest(ctx context.Context, userID, followID uint) error {
	follow, err := s.followRepo.GetByID(ctx, followID)
	if err != nil {
		return err
	}
	if follow.TargetID != userID {
		return models.NewForbiddenError("Not your follow request")
	}
	if follow.Status != models.FollowStatusPending {
		return models.NewConflictError("Follow request already handled")
	}
	if err := s.followRepo.Delete(ctx, followID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// RemoveFollower deletes an accepted edge pointing at userID.
func (s *FollowService) RemoveFollower(ctx context.Context, userID, followerID uint) error {
	removed, err := s.followRepo.Remove(ctx, followerID, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !removed {
		return models.NewNotFoundError("User is not a follower")
	}
	return nil
}

func (s *FollowService) PendingRequests(ctx context.Context, userID uint) ([]models.Follow, error) {
	return s.followRepo.GetPendingRequests(ctx, userID)
}

// Followers honors the target's list-visibility setting for non-self
// viewers.
func (s *FollowService) Followers(ctx context.Context, viewerID uint, target *models.User, limit, offset int) ([]models.User, error) {
	caps, err := s.permissions.Resolve(ctx, viewerID, target)
	if err != nil {
		return nil, err
	}
	if !caps.IsSelf {
		if !caps.CanViewProjects || (!target.ShowFollowers && !caps.IsFollowing) {
			return nil, models.NewForbiddenError("Follower list is not visible")
		}
	}
	return s.followRepo.GetFollowers(ctx, target.ID, limit, offset)
}

func (s *FollowService) Following(ctx context.Context, viewerID uint, target *models.User, limit, offset int) ([]models.User, error) {
	caps, err := s.permissions.Resolve(ctx, viewerID, target)
	if err != nil {
		return nil, err
	}
	if !caps.IsSelf {
		if !caps.CanViewProjects || (!target.ShowFollowing && !caps.IsFollowing) {
			return nil, models.NewForbiddenError("Following list is not visible")
		}
	}
	return s.followRepo.GetFollowing(ctx, target.ID, limit, offset)
}

func (s *FollowService) Block(ctx context.Context, blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return models.NewValidationError("Cannot block yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, blockedID); err != nil {
		return err
	}
	if err := s.followRepo.Block(ctx, blockerID, blockedID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *FollowService) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	removed, err := s.followRepo.Unblock(ctx, blockerID, blockedID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !removed {
		return models.NewNotFoundError("User is not blocked")
	}
	return nil
}

func (s *FollowService) BlockedUsers(ctx context.Context, blockerID uint) ([]models.User, error) {
	return s.followRepo.ListBlocked(ctx, blockerID)
}
