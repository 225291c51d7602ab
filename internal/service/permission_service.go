// Package service implements business logic between handlers and repositories.
package service

import (
	"context"

	"atelier/internal/models"
	"atelier/internal/repository"
)

// Capabilities describes what a viewer may see of a target user. Handlers
// branch on this instead of re-deriving visibility rules inline.
type Capabilities struct {
	IsSelf            bool `json:"is_self"`
	IsBlocked         bool `json:"-"` // viewer blocked the target
	IsBlockedBy       bool `json:"-"` // target blocked the viewer
	IsFollowing       bool `json:"is_following"`
	HasPendingRequest bool `json:"has_pending_request"`

	CanViewProfile  bool `json:"can_view_profile"`
	CanViewProjects bool `json:"can_view_projects"`
	CanViewSocial   bool `json:"can_view_social"` // follower/following lists
	CanInteract     bool `json:"can_interact"`    // like, comment, follow
}

type PermissionService struct {
	followRepo repository.FollowRepository
}

func NewPermissionService(followRepo repository.FollowRepository) *PermissionService {
	return &PermissionService{followRepo: followRepo}
}

// Resolve evaluates visibility in strict precedence order: self, then
// blocks in either direction, then the target's privacy settings. viewerID
// zero means an anonymous request.
func (s *PermissionService) Resolve(ctx context.Context, viewerID uint, target *models.User) (*Capabilities, error) {
	caps := &Capabilities{}

	if viewerID != 0 && viewerID == target.ID {
		caps.IsSelf = true
		caps.CanViewProfile = true
		caps.CanViewProjects = true
		caps.CanViewSocial = true
		return caps, nil
	}

	if viewerID != 0 {
		blockedBy, err := s.followRepo.IsBlocked(ctx, target.ID, viewerID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if blockedBy {
			// The target blocked the viewer: the account is invisible.
			caps.IsBlockedBy = true
			return caps, nil
		}

		blocked, err := s.followRepo.IsBlocked(ctx, viewerID, target.ID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if blocked {
			// The viewer blocked the target: profile shell only.
			caps.IsBlocked = true
			caps.CanViewProfile = true
			return caps, nil
		}

		follow, err := s.followRepo.GetBetween(ctx, viewerID, target.ID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if follow != nil {
			caps.IsFollowing = follow.Status == models.FollowStatusAccepted
			caps.HasPendingRequest = follow.Status == models.FollowStatusPending
		}
	}

	caps.CanViewProfile = true
	if target.IsPrivate && !caps.IsFollowing {
		// Private accounts show a shell profile to non-followers.
		return caps, nil
	}

	caps.CanViewProjects = true
	caps.CanViewSocial = true
	caps.CanInteract = viewerID != 0
	if caps.CanViewSocial {
		caps.CanViewSocial = target.ShowFollowers || target.ShowFollowing || caps.IsFollowing
	}
	return caps, nil
}

// CanViewProject decides project-level access on top of profile-level
// capabilities. Private projects admit the owner and collaborators only.
func (s *PermissionService) CanViewProject(ctx context.Context, viewerID uint, project *models.Project, owner *models.User, collab *models.ProjectCollaborator) (bool, error) {
	if viewerID != 0 && viewerID == project.OwnerID {
		return true, nil
	}
	if project.Visibility == models.ProjectVisibilityPrivate {
		return collab != nil, nil
	}
	caps, err := s.Resolve(ctx, viewerID, owner)
	if err != nil {
		return false, err
	}
	if collab != nil {
		return true, nil
	}
	return caps.CanViewProjects, nil
}
