package models

import "time"

// ProjectView is a per-project per-day view counter. Views are recorded
// with an atomic upsert increment, never read-modify-write in application
// code, so concurrent requests cannot lose updates.
type ProjectView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_project_view_day" json:"project_id"`
	Day       time.Time `gorm:"type:date;not null;uniqueIndex:idx_project_view_day" json:"day"`
	Views     int64     `gorm:"not null;default:0" json:"views"`
}

// PopularityWeight constants define the fixed scoring policy. Changing any
// of these is a regression against the system's own test expectations.
const (
	ViewWeight    = 1
	LikeWeight    = 10
	CommentWeight = 15
)

// PopularityScore computes the weighted engagement score.
func PopularityScore(views, likes, comments int64) int64 {
	return views*ViewWeight + likes*LikeWeight + comments*CommentWeight
}

// ProjectStats is an aggregate row for a single project.
type ProjectStats struct {
	ProjectID       uint   `json:"project_id"`
	Title           string `json:"title"`
	Views           int64  `json:"views"`
	Likes           int64  `json:"likes"`
	Comments        int64  `json:"comments"`
	PopularityScore int64  `json:"popularity_score"`
	Rank            int    `json:"rank,omitempty"`
}

// UserStats is an aggregate row summing a user's projects.
type UserStats struct {
	UserID          uint   `json:"user_id"`
	Username        string `json:"username"`
	Avatar          string `json:"avatar"`
	Projects        int64  `json:"projects"`
	Views           int64  `json:"views"`
	Likes           int64  `json:"likes"`
	Comments        int64  `json:"comments"`
	PopularityScore int64  `json:"popularity_score"`
	Rank            int    `json:"rank,omitempty"`
}

// TagStats is an aggregate row over all projects carrying a tag.
type TagStats struct {
	Tag             string `json:"tag"`
	Projects        int64  `json:"projects"`
	PopularityScore int64  `json:"popularity_score"`
	Rank            int    `json:"rank,omitempty"`
}
