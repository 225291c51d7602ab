// Package models contains data structures for the application's domain models.
package models

import "time"

// FollowStatus represents the state of a follow edge.
type FollowStatus string

const (
	// FollowStatusPending indicates a follow request awaiting approval by a
	// private account.
	FollowStatusPending FollowStatus = "pending"
	// FollowStatusAccepted indicates an active follow edge.
	FollowStatusAccepted FollowStatus = "accepted"
)

// Follow represents a directed follow edge from Requester to Target.
// Direction is required to distinguish followers from following.
type Follow struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	RequesterID uint         `gorm:"not null;uniqueIndex:idx_follow_users" json:"requester_id"`
	TargetID    uint         `gorm:"not null;uniqueIndex:idx_follow_users" json:"target_id"`
	Status      FollowStatus `gorm:"type:varchar(20);default:'pending';index:idx_follows_status" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relationships
	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Target    User `gorm:"foreignKey:TargetID" json:"target,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// UserBlock represents one user blocking another. A block suppresses
// follow relationships in both directions for visibility purposes.
type UserBlock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;uniqueIndex:idx_user_block" json:"blocker_id"`
	BlockedID uint      `gorm:"not null;uniqueIndex:idx_user_block" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`

	Blocker User `gorm:"foreignKey:BlockerID" json:"blocker,omitempty"`
	Blocked User `gorm:"foreignKey:BlockedID" json:"blocked,omitempty"`
}
