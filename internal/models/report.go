package models

import "time"

// ReportTargetType identifies what kind of content a report points at.
type ReportTargetType string

const (
	// ReportTargetUser reports a user account.
	ReportTargetUser ReportTargetType = "user"
	// ReportTargetProject reports a project.
	ReportTargetProject ReportTargetType = "project"
	// ReportTargetComment reports a comment.
	ReportTargetComment ReportTargetType = "comment"
)

// ReportStatus is the moderation lifecycle state of a report.
type ReportStatus string

const (
	// ReportStatusPending indicates a report awaiting triage.
	ReportStatusPending ReportStatus = "pending"
	// ReportStatusReviewing indicates an admin has picked the report up.
	// This state is optional; reports may resolve directly from pending.
	ReportStatusReviewing ReportStatus = "reviewing"
	// ReportStatusResolved indicates the report was acted on.
	ReportStatusResolved ReportStatus = "resolved"
	// ReportStatusRejected indicates the report was dismissed.
	ReportStatusRejected ReportStatus = "rejected"
)

// ReportAction is the moderation outcome recorded on resolution.
type ReportAction string

const (
	// ReportActionNone records no action taken.
	ReportActionNone ReportAction = "none"
	// ReportActionWarning records a warning on the target user.
	ReportActionWarning ReportAction = "warning"
	// ReportActionContentRemoved deletes the referenced content.
	ReportActionContentRemoved ReportAction = "content_removed"
	// ReportActionAccountSuspended suspends the target account.
	ReportActionAccountSuspended ReportAction = "account_suspended"
	// ReportActionAccountBanned bans the target account.
	ReportActionAccountBanned ReportAction = "account_banned"
)

// Report is a user-submitted moderation record referencing a user, project
// or comment.
type Report struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	ReporterID  uint             `gorm:"not null;index" json:"reporter_id"`
	Reporter    User             `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	TargetType  ReportTargetType `gorm:"type:varchar(20);not null;index" json:"target_type"`
	TargetID    uint             `gorm:"not null" json:"target_id"`
	Reason      string           `gorm:"not null" json:"reason"`
	Description string           `gorm:"type:text" json:"description"`
	Status      ReportStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminNotes  string           `gorm:"type:text" json:"admin_notes,omitempty"`
	Action      ReportAction     `gorm:"type:varchar(30);default:'none'" json:"action"`
	ResolvedBy  *uint            `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time       `json:"resolved_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
