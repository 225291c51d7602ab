package models

import "time"

// InvitationStatus defines lifecycle states for collaboration invitations.
type InvitationStatus string

const (
	// InvitationStatusPending indicates the invitation is awaiting a reply.
	InvitationStatusPending InvitationStatus = "pending"
	// InvitationStatusAccepted indicates the invitee joined the project.
	InvitationStatusAccepted InvitationStatus = "accepted"
	// InvitationStatusRejected indicates the invitee declined.
	InvitationStatusRejected InvitationStatus = "rejected"
)

// CollabInvitation is an owner's pending offer to add a user to a project
// with a given role. Accepting converts it into a ProjectCollaborator row
// and removes the invitation; rejecting removes it with no side effect.
type CollabInvitation struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ProjectID uint             `gorm:"not null;uniqueIndex:idx_invitation_project_user" json:"project_id"`
	Project   Project          `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	InviterID uint             `gorm:"not null" json:"inviter_id"`
	Inviter   User             `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
	InviteeID uint             `gorm:"not null;uniqueIndex:idx_invitation_project_user" json:"invitee_id"`
	Invitee   User             `gorm:"foreignKey:InviteeID" json:"invitee,omitempty"`
	Role      CollabRole       `gorm:"type:varchar(20);not null;default:'viewer'" json:"role"`
	Status    InvitationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (CollabInvitation) TableName() string {
	return "collab_invitations"
}
