// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a project.
type Comment struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Content   string  `gorm:"not null" json:"content"`
	UserID    uint    `gorm:"not null;index" json:"user_id"`
	ProjectID uint    `gorm:"not null;index" json:"project_id"`
	User      User    `gorm:"foreignKey:UserID" json:"user"`
	Project   Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	// LikesCount is not persisted; computed at query time
	LikesCount int  `gorm:"->" json:"likes_count"`
	Liked      bool `gorm:"->" json:"liked"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CommentLike represents a user's like on a comment.
// The combination of UserID and CommentID must be unique.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_user_comment" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
