package service

import (
	"context"

	"atelier/internal/middleware"
	"atelier/internal/models"
	"atelier/internal/observability"
	"atelier/internal/repository"
)

// Publisher pushes a notification to any live delivery channel for a user.
// Delivery is best-effort; the database record is the source of truth and
// clients poll it regardless.
type Publisher interface {
	PublishUser(ctx context.Context, userID uint, payload any)
}

type NotificationService struct {
	repo      repository.NotificationRepository
	publisher Publisher
}

// NewNotificationService builds the service. publisher may be nil when no
// push channel is configured.
func NewNotificationService(repo repository.NotificationRepository, publisher Publisher) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher}
}

// Notify persists the notification and mirrors it to the push channel.
// Callers treat notification failures as non-fatal: the triggering action
// already succeeded.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) {
	if n.RecipientID == 0 {
		return
	}
	// Users never get notified about their own actions.
	if n.ActorID != nil && *n.ActorID == n.RecipientID {
		return
	}
	if err := s.repo.Create(ctx, n); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to create notification",
			"type", string(n.Type), "recipient_id", n.RecipientID, "error", err)
		return
	}
	observability.NotificationsPublished.WithLabelValues(string(n.Type)).Inc()
	if s.publisher != nil {
		s.publisher.PublishUser(ctx, n.RecipientID, n)
	}
}

func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListByRecipient(ctx, userID, unreadOnly, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uint) error {
	return s.repo.Delete(ctx, userID, id)
}
