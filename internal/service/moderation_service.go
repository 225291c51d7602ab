package service

import (
	"context"
	"strings"
	"time"

	"atelier/internal/models"
	"atelier/internal/repository"
)

type ModerationService struct {
	reportRepo    repository.ReportRepository
	userRepo      repository.UserRepository
	projectRepo   repository.ProjectRepository
	commentRepo   repository.CommentRepository
	notifications *NotificationService
}

func NewModerationService(
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	commentRepo repository.CommentRepository,
	notifications *NotificationService,
) *ModerationService {
	return &ModerationService{
		reportRepo:    reportRepo,
		userRepo:      userRepo,
		projectRepo:   projectRepo,
		commentRepo:   commentRepo,
		notifications: notifications,
	}
}

// authorizeAdminAction is the single policy gate for admin account actions.
// Admins cannot act on themselves, and acting on another admin requires
// demoting them first.
func (s *ModerationService) authorizeAdminAction(ctx context.Context, actorID, targetID uint) (*models.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, models.NewForbiddenError("Admin access required")
	}
	if actorID == targetID {
		return nil, models.NewForbiddenError("Admins cannot perform this action on themselves")
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin {
		return nil, models.NewForbiddenError("Demote the admin before acting on their account")
	}
	return target, nil
}

func validReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return models.NewValidationError("A reason is required")
	}
	return nil
}

func (s *ModerationService) Suspend(ctx context.Context, actorID, targetID uint, reason string) error {
	if err := validReason(reason); err != nil {
		return err
	}
	if _, err := s.authorizeAdminAction(ctx, actorID, targetID); err != nil {
		return err
	}
	now := time.Now()
	return s.userRepo.UpdateFields(ctx, targetID, map[string]any{
		"is_suspended":     true,
		"suspended_reason": reason,
		"suspended_at":     &now,
	})
}

func (s *ModerationService) Unsuspend(ctx context.Context, actorID, targetID uint) error {
	if _, err := s.authorizeAdminAction(ctx, actorID, targetID); err != nil {
		return err
	}
	return s.userRepo.UpdateFields(ctx, targetID, map[string]any{
		"is_suspended":     false,
		"suspended_reason": "",
		"suspended_at":     nil,
	})
}

func (s *ModerationService) Ban(ctx context.Context, actorID, targetID uint, reason string) error {
	if err := validReason(reason); err != nil {
		return err
	}
	if _, err := s.authorizeAdminAction(ctx, actorID, targetID); err != nil {
		return err
	}
	now := time.Now()
	return s.userRepo.UpdateFields(ctx, targetID, map[string]any{
		"is_banned":     true,
		"banned_reason": reason,
		"banned_at":     &now,
	})
}

func (s *ModerationService) Unban(ctx context.Context, actorID, targetID uint) error {
	if _, err := s.authorizeAdminAction(ctx, actorID, targetID); err != nil {
		return err
	}
	return s.userRepo.UpdateFields(ctx, targetID, map[string]any{
		"is_banned":     false,
		"banned_reason": "",
		"banned_at":     nil,
	})
}

// FlagDeleted marks the account deleted without removing the row, so the
// record stays auditable.
func (s *ModerationService) FlagDeleted(ctx context.Context, actorID, targetID uint, reason string) error {
	if err := validReason(reason); err != nil {
		return err
	}
	if _, err := s.authorizeAdminAction(ctx, actorID, targetID); err != nil {
		return err
	}
	now := time.Now()
	return s.userRepo.UpdateFields(ctx, targetID, map[string]any{
		"is_deleted":      true,
		"deleted_reason":  reason,
		"deleted_flag_at": &now,
	})
}

func (s *ModerationService) Promote(ctx context.Context, actorID, targetID uint) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return models.NewForbiddenError("Admin access required")
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsAdmin {
		return models.NewConflictError("User is already an admin")
	}
	return s.userRepo.UpdateFields(ctx, targetID, map[string]any{"is_admin": true})
}

// Demote strips admin rights. Self-demotion is blocked by the same policy
// as other self-targeted actions.
func (s *ModerationService) Demote(ctx context.Context, actorID, targetID uint) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return models.NewForbiddenError("Admin access required")
	}
	if actorID == targetID {
		return models.NewForbiddenError("Admins cannot perform this action on themselves")
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.IsAdmin {
		return models.NewConflictError("User is not an admin")
	}
	return s.userRepo.UpdateFields(ctx, targetID, map[string]any{"is_admin": false})
}

// Report files a moderation report after verifying the target exists.
func (s *ModerationService) Report(ctx context.Context, reporterID uint, targetType models.ReportTargetType, targetID uint, reason, description string) (*models.Report, error) {
	if err := validReason(reason); err != nil {
		return nil, err
	}
	switch targetType {
	case models.ReportTargetUser:
		if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
			return nil, err
		}
	case models.ReportTargetProject:
		if _, err := s.projectRepo.GetByID(ctx, targetID, reporterID); err != nil {
			return nil, err
		}
	case models.ReportTargetComment:
		if _, err := s.commentRepo.GetByID(ctx, targetID, reporterID); err != nil {
			return nil, err
		}
	default:
		return nil, models.NewValidationError("Target type must be user, project or comment")
	}

	report := &models.Report{
		ReporterID:  reporterID,
		TargetType:  targetType,
		TargetID:    targetID,
		Reason:      reason,
		Description: description,
		Status:      models.ReportStatusPending,
		Action:      models.ReportActionNone,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, models.NewInternalError(err)
	}
	return report, nil
}

func (s *ModerationService) ListReports(ctx context.Context, actorID uint, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, models.NewForbiddenError("Admin access required")
	}
	return s.reportRepo.List(ctx, status, limit, offset)
}

// StartReview moves a pending report to reviewing. Optional step; reports
// may resolve directly.
func (s *ModerationService) StartReview(ctx context.Context, actorID, reportID uint) (*models.Report, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, models.NewForbiddenError("Admin access required")
	}
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportStatusPending {
		return nil, models.NewConflictError("Report is not pending")
	}
	report.Status = models.ReportStatusReviewing
	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, models.NewInternalError(err)
	}
	return report, nil
}

// Resolution is the admin's verdict on a report.
type Resolution struct {
	Status models.ReportStatus `json:"status"` // resolved or rejected
	Action models.ReportAction `json:"action"`
	Notes  string              `json:"notes"`
}

// Resolve closes a report and applies its action. Account actions go
// through the same policy gate as direct moderation.
func (s *ModerationService) Resolve(ctx context.Context, actorID, reportID uint, res Resolution) (*models.Report, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, models.NewForbiddenError("Admin access required")
	}
	if res.Status != models.ReportStatusResolved && res.Status != models.ReportStatusRejected {
		return nil, models.NewValidationError("Status must be resolved or rejected")
	}
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status == models.ReportStatusResolved || report.Status == models.ReportStatusRejected {
		return nil, models.NewConflictError("Report already closed")
	}

	if res.Status == models.ReportStatusResolved {
		if err := s.applyAction(ctx, actorID, report, res); err != nil {
			return nil, err
		}
	} else {
		res.Action = models.ReportActionNone
	}

	now := time.Now()
	report.Status = res.Status
	report.Action = res.Action
	report.AdminNotes = res.Notes
	report.ResolvedBy = &actorID
	report.ResolvedAt = &now
	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, models.NewInternalError(err)
	}
	return report, nil
}

func (s *ModerationService) applyAction(ctx context.Context, actorID uint, report *models.Report, res Resolution) error {
	switch res.Action {
	case models.ReportActionNone:
		return nil
	case models.ReportActionWarning:
		userID, err := s.targetUserID(ctx, report)
		if err != nil {
			return err
		}
		s.notifications.Notify(ctx, &models.Notification{
			RecipientID: userID,
			Type:        models.NotificationTypeWarning,
			Message:     "You have received a moderation warning: " + report.Reason,
		})
		return nil
	case models.ReportActionContentRemoved:
		switch report.TargetType {
		case models.ReportTargetProject:
			return s.projectRepo.Delete(ctx, report.TargetID)
		case models.ReportTargetComment:
			return s.commentRepo.Delete(ctx, report.TargetID)
		default:
			return models.NewValidationError("content_removed applies to projects and comments only")
		}
	case models.ReportActionAccountSuspended:
		userID, err := s.targetUserID(ctx, report)
		if err != nil {
			return err
		}
		return s.Suspend(ctx, actorID, userID, report.Reason)
	case models.ReportActionAccountBanned:
		userID, err := s.targetUserID(ctx, report)
		if err != nil {
			return err
		}
		return s.Ban(ctx, actorID, userID, report.Reason)
	default:
		return models.NewValidationError("Unknown moderation action")
	}
}

// targetUserID maps any report target to the accountable user.
func (s *ModerationService) targetUserID(ctx context.Context, report *models.Report) (uint, error) {
	switch report.TargetType {
	case models.ReportTargetUser:
		return report.TargetID, nil
	case models.ReportTargetProject:
		project, err := s.projectRepo.GetByID(ctx, report.TargetID, 0)
		if err != nil {
			return 0, err
		}
		return project.OwnerID, nil
	case models.ReportTargetComment:
		comment, err := s.commentRepo.GetByID(ctx, report.TargetID, 0)
		if err != nil {
			return 0, err
		}
		return comment.UserID, nil
	}
	return 0, models.NewValidationError("Unknown report target type")
}
