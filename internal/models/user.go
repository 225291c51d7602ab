// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account on the platform.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
	Website  string `json:"website"`

	// Privacy settings
	IsPrivate           bool `gorm:"default:false;index" json:"is_private"`
	ShowFollowers       bool `gorm:"default:true" json:"show_followers"`
	ShowFollowing       bool `gorm:"default:true" json:"show_following"`
	AllowFollowRequests bool `gorm:"default:true" json:"allow_follow_requests"`

	// Moderation state. A set flag carries a reason and the time it was set.
	IsSuspended     bool       `gorm:"default:false" json:"is_suspended"`
	SuspendedReason string     `json:"suspended_reason,omitempty"`
	SuspendedAt     *time.Time `json:"suspended_at,omitempty"`
	IsBanned        bool       `gorm:"default:false" json:"is_banned"`
	BannedReason    string     `json:"banned_reason,omitempty"`
	BannedAt        *time.Time `json:"banned_at,omitempty"`
	IsDeleted       bool       `gorm:"default:false" json:"is_deleted"`
	DeletedReason   string     `json:"deleted_reason,omitempty"`
	DeletedFlagAt   *time.Time `json:"deleted_flag_at,omitempty"`

	IsAdmin bool `gorm:"default:false" json:"is_admin"`

	// FollowersCount and FollowingCount are not persisted; computed at query time
	FollowersCount int `gorm:"->" json:"followers_count"`
	FollowingCount int `gorm:"->" json:"following_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Projects []Project `gorm:"foreignKey:OwnerID" json:"projects,omitempty"`
}

// Restricted reports whether the account is blocked from logging in.
func (u *User) Restricted() bool {
	return u.IsSuspended || u.IsBanned || u.IsDeleted
}

// PublicProfile strips fields that must not leak to other viewers.
func (u *User) PublicProfile() map[string]any {
	return map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"bio":        u.Bio,
		"avatar":     u.Avatar,
		"website":    u.Website,
		"is_private": u.IsPrivate,
		"created_at": u.CreatedAt,
	}
}
