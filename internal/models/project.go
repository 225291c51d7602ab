// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectVisibility controls who can see a project.
type ProjectVisibility string

const (
	// ProjectVisibilityPublic makes a project visible to everyone the
	// owner's privacy settings allow.
	ProjectVisibilityPublic ProjectVisibility = "public"
	// ProjectVisibilityPrivate restricts a project to its owner and
	// collaborators.
	ProjectVisibilityPrivate ProjectVisibility = "private"
)

// CollabRole defines a collaborator's access level on a project.
type CollabRole string

const (
	// CollabRoleViewer grants read access to a private project.
	CollabRoleViewer CollabRole = "viewer"
	// CollabRoleEditor grants read and write access to content fields.
	CollabRoleEditor CollabRole = "editor"
)

// ValidCollabRole reports whether role is a known collaborator role.
func ValidCollabRole(role CollabRole) bool {
	return role == CollabRoleViewer || role == CollabRoleEditor
}

// Project represents a portfolio project published by a user.
type Project struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	OwnerID     uint              `gorm:"not null;index" json:"owner_id"`
	Owner       User              `gorm:"foreignKey:OwnerID" json:"owner"`
	Title       string            `gorm:"not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Visibility  ProjectVisibility `gorm:"type:varchar(20);not null;default:'public';index" json:"visibility"`

	Images        []ProjectImage        `gorm:"foreignKey:ProjectID" json:"images,omitempty"`
	Collaborators []ProjectCollaborator `gorm:"foreignKey:ProjectID" json:"collaborators,omitempty"`

	// Tags is loaded from project_tags rows; not a column itself.
	Tags []string `gorm:"-" json:"tags"`

	// Engagement counters are not persisted; computed at query time
	LikesCount    int `gorm:"->" json:"likes_count"`
	CommentsCount int `gorm:"->" json:"comments_count"`
	ViewsCount    int `gorm:"->" json:"views_count"`
	// PopularityScore = views*1 + likes*10 + comments*15 (computed)
	PopularityScore int `gorm:"->" json:"popularity_score"`
	// Liked / Saved reflect the requesting user's relation to the project (computed)
	Liked bool `gorm:"->" json:"liked"`
	Saved bool `gorm:"->" json:"saved"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProjectImage is one entry of a project's ordered image gallery.
type ProjectImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	URL       string `gorm:"not null" json:"url"`
	Position  int    `gorm:"not null;default:0" json:"position"`
}

// ProjectTag maps a project to a single tag. Tag rankings aggregate over
// these rows.
type ProjectTag struct {
	ProjectID uint   `gorm:"primaryKey;autoIncrement:false" json:"project_id"`
	Tag       string `gorm:"primaryKey;size:64;index" json:"tag"`
}

// ProjectCollaborator maps a user to a project with a role.
// The combination of ProjectID and UserID must be unique.
type ProjectCollaborator struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ProjectID uint       `gorm:"not null;uniqueIndex:idx_project_collaborator" json:"project_id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_project_collaborator" json:"user_id"`
	User      User       `gorm:"foreignKey:UserID" json:"user"`
	Role      CollabRole `gorm:"type:varchar(20);not null;default:'viewer'" json:"role"`
	AddedAt   time.Time  `gorm:"autoCreateTime" json:"added_at"`
}

// TableName specifies the table name for GORM
func (ProjectCollaborator) TableName() string {
	return "project_collaborators"
}
