package models

import "time"

// ProjectLike represents a user's like on a project.
// The combination of UserID and ProjectID must be unique so concurrent
// like requests cannot create duplicates.
type ProjectLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_project_like" json:"user_id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_user_project_like" json:"project_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID" json:"user"`
	Project Project `gorm:"foreignKey:ProjectID" json:"project"`
}

// SavedProject is a user's bookmark of a project.
type SavedProject struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_project_save" json:"user_id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_user_project_save" json:"project_id"`
	CreatedAt time.Time `json:"created_at"`

	Project Project `gorm:"foreignKey:ProjectID" json:"project"`
}
