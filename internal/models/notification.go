package models

import "time"

// NotificationType identifies the event that produced a notification.
type NotificationType string

const (
	// NotificationTypeLike is sent when someone likes a project.
	NotificationTypeLike NotificationType = "like"
	// NotificationTypeComment is sent when someone comments on a project.
	NotificationTypeComment NotificationType = "comment"
	// NotificationTypeFollow is sent when someone starts following a user.
	NotificationTypeFollow NotificationType = "follow"
	// NotificationTypeFollowRequest is sent when someone requests to follow
	// a private account.
	NotificationTypeFollowRequest NotificationType = "follow_request"
	// NotificationTypeFollowAccepted is sent when a follow request is approved.
	NotificationTypeFollowAccepted NotificationType = "follow_accepted"
	// NotificationTypeInvitation is sent when a project owner invites a
	// collaborator.
	NotificationTypeInvitation NotificationType = "invitation"
	// NotificationTypeInvitationAccepted is sent to the owner when an
	// invitation is accepted.
	NotificationTypeInvitationAccepted NotificationType = "invitation_accepted"
	// NotificationTypeInvitationRejected is sent to the owner when an
	// invitation is rejected.
	NotificationTypeInvitationRejected NotificationType = "invitation_rejected"
	// NotificationTypeWarning records a moderation warning on the recipient.
	NotificationTypeWarning NotificationType = "warning"
)

// Notification is a fire-and-forget event record addressed to a recipient.
// Clients poll for unread notifications; a WebSocket push channel mirrors
// new records when available.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	ActorID     *uint            `json:"actor_id,omitempty"`
	Actor       *User            `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Type        NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Message     string           `json:"message"`
	ProjectID   *uint            `json:"project_id,omitempty"`
	CommentID   *uint            `json:"comment_id,omitempty"`
	Read        bool             `gorm:"default:false;index" json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}
