package repository

import (
	"context"
	"fmt"
	"time"

	"atelier/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyticsRepository owns the engagement aggregates behind dashboards and
// rankings. All scoring happens in SQL so pagination never loads the full
// population into memory.
type AnalyticsRepository interface {
	// RecordView bumps the per-day counter with an atomic upsert.
	RecordView(ctx context.Context, projectID uint, day time.Time) error

	ProjectTotals(ctx context.Context, projectID uint) (*models.ProjectStats, error)
	OwnerTotals(ctx context.Context, ownerID uint) (*models.UserStats, error)
	TopProjectsByOwner(ctx context.Context, ownerID uint, limit int) ([]models.ProjectStats, error)

	// Ranking queries exclude private and moderated-away owners. A non-nil
	// since restricts engagement to events at or after that instant.
	UserRanking(ctx context.Context, since *time.Time, limit, offset int) ([]models.UserStats, error)
	ProjectRanking(ctx context.Context, since *time.Time, limit, offset int) ([]models.ProjectStats, error)
	TagRanking(ctx context.Context, limit, offset int) ([]models.TagStats, error)
	// UserPosition returns the 1-based global rank, or (0, nil) when the
	// user is not in the ranked population.
	UserPosition(ctx context.Context, userID uint) (int, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) RecordView(ctx context.Context, projectID uint, day time.Time) error {
	day = day.UTC().Truncate(24 * time.Hour)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "project_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{
				"views": gorm.Expr("project_views.views + 1"),
			}),
		}).
		Create(&models.ProjectView{ProjectID: projectID, Day: day, Views: 1}).Error
}

// perProjectStats is the shared aggregate subquery. The optional window
// predicates are injected per engagement table; args must be appended in
// views, likes, comments order. publicOnly restricts the population to
// public projects, which every ranking query requires; owner-scoped
// dashboards pass false so an owner's private work still counts.
func perProjectStats(since *time.Time, publicOnly bool) (string, []any) {
	viewsCond, likesCond, commentsCond := "", "", ""
	var args []any
	if since != nil {
		day := since.UTC().Truncate(24 * time.Hour)
		viewsCond = " AND v.day >= ?"
		likesCond = " AND l.created_at >= ?"
		commentsCond = " AND c.created_at >= ?"
		args = append(args, day, *since, *since)
	}
	visCond := ""
	if publicOnly {
		visCond = " AND pr.visibility = 'public'"
	}
	sql := fmt.Sprintf(`
		SELECT pr.id AS project_id, pr.owner_id, pr.title,
			(SELECT COALESCE(SUM(v.views), 0) FROM project_views v WHERE v.project_id = pr.id%s) AS views,
			(SELECT COUNT(*) FROM project_likes l WHERE l.project_id = pr.id%s) AS likes,
			(SELECT COUNT(*) FROM comments c WHERE c.project_id = pr.id AND c.deleted_at IS NULL%s) AS comments
		FROM projects pr
		WHERE pr.deleted_at IS NULL%s`,
		viewsCond, likesCond, commentsCond, visCond)
	return sql, args
}

const scoreExpr = "s.views * %d + s.likes * %d + s.comments * %d"

func score() string {
	return fmt.Sprintf(scoreExpr, models.ViewWeight, models.LikeWeight, models.CommentWeight)
}

// rankedOwner filters the ranked population: accounts that are private,
// banned or flagged deleted never appear in public rankings.
const rankedOwner = `u.deleted_at IS NULL
	AND u.is_private = ? AND u.is_banned = ? AND u.is_deleted = ?`

func (r *analyticsRepository) ProjectTotals(ctx context.Context, projectID uint) (*models.ProjectStats, error) {
	var stats models.ProjectStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id AS project_id, p.title,
			(SELECT COALESCE(SUM(v.views), 0) FROM project_views v WHERE v.project_id = p.id) AS views,
			(SELECT COUNT(*) FROM project_likes l WHERE l.project_id = p.id) AS likes,
			(SELECT COUNT(*) FROM comments c WHERE c.project_id = p.id AND c.deleted_at IS NULL) AS comments
		FROM projects p
		WHERE p.id = ? AND p.deleted_at IS NULL`, projectID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	if stats.ProjectID == 0 {
		return nil, models.NewNotFoundError("Project not found")
	}
	stats.PopularityScore = models.PopularityScore(stats.Views, stats.Likes, stats.Comments)
	return &stats, nil
}

func (r *analyticsRepository) OwnerTotals(ctx context.Context, ownerID uint) (*models.UserStats, error) {
	sub, args := perProjectStats(nil, false)
	var stats models.UserStats
	query := fmt.Sprintf(`
		SELECT u.id AS user_id, u.username, u.avatar,
			COUNT(s.project_id) AS projects,
			COALESCE(SUM(s.views), 0) AS views,
			COALESCE(SUM(s.likes), 0) AS likes,
			COALESCE(SUM(s.comments), 0) AS comments,
			COALESCE(SUM(%s), 0) AS popularity_score
		FROM users u
		LEFT JOIN (%s) s ON s.owner_id = u.id
		WHERE u.id = ? AND u.deleted_at IS NULL
		GROUP BY u.id, u.username, u.avatar`, score(), sub)
	args = append(args, ownerID)
	err := r.db.WithContext(ctx).Raw(query, args...).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	if stats.UserID == 0 {
		return nil, models.NewNotFoundError("User not found")
	}
	return &stats, nil
}

func (r *analyticsRepository) TopProjectsByOwner(ctx context.Context, ownerID uint, limit int) ([]models.ProjectStats, error) {
	sub, args := perProjectStats(nil, false)
	query := fmt.Sprintf(`
		SELECT s.project_id, s.title, s.views, s.likes, s.comments,
			%s AS popularity_score
		FROM (%s) s
		WHERE s.owner_id = ?
		ORDER BY popularity_score DESC, s.project_id ASC
		LIMIT ?`, score(), sub)
	args = append(args, ownerID, limit)
	var rows []models.ProjectStats
	err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) UserRanking(ctx context.Context, since *time.Time, limit, offset int) ([]models.UserStats, error) {
	sub, args := perProjectStats(since, true)
	query := fmt.Sprintf(`
		SELECT u.id AS user_id, u.username, u.avatar,
			COUNT(s.project_id) AS projects,
			COALESCE(SUM(s.views), 0) AS views,
			COALESCE(SUM(s.likes), 0) AS likes,
			COALESCE(SUM(s.comments), 0) AS comments,
			COALESCE(SUM(%s), 0) AS popularity_score
		FROM users u
		JOIN (%s) s ON s.owner_id = u.id
		WHERE %s
		GROUP BY u.id, u.username, u.avatar
		ORDER BY popularity_score DESC, u.id ASC
		LIMIT ? OFFSET ?`, score(), sub, rankedOwner)
	args = append(args, false, false, false, limit, offset)
	var rows []models.UserStats
	err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) ProjectRanking(ctx context.Context, since *time.Time, limit, offset int) ([]models.ProjectStats, error) {
	sub, args := perProjectStats(since, true)
	query := fmt.Sprintf(`
		SELECT s.project_id, s.title, s.views, s.likes, s.comments,
			%s AS popularity_score
		FROM (%s) s
		JOIN users u ON u.id = s.owner_id
		WHERE %s
		ORDER BY popularity_score DESC, s.project_id ASC
		LIMIT ? OFFSET ?`, score(), sub, rankedOwner)
	args = append(args, false, false, false, limit, offset)
	var rows []models.ProjectStats
	err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) TagRanking(ctx context.Context, limit, offset int) ([]models.TagStats, error) {
	sub, args := perProjectStats(nil, true)
	query := fmt.Sprintf(`
		SELECT t.tag,
			COUNT(DISTINCT s.project_id) AS projects,
			COALESCE(SUM(%s), 0) AS popularity_score
		FROM project_tags t
		JOIN (%s) s ON s.project_id = t.project_id
		JOIN users u ON u.id = s.owner_id
		WHERE %s
		GROUP BY t.tag
		ORDER BY popularity_score DESC, t.tag ASC
		LIMIT ? OFFSET ?`, score(), sub, rankedOwner)
	args = append(args, false, false, false, limit, offset)
	var rows []models.TagStats
	err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) UserPosition(ctx context.Context, userID uint) (int, error) {
	sub, args := perProjectStats(nil, true)
	aggregate := fmt.Sprintf(`
		SELECT u.id AS user_id, COALESCE(SUM(%s), 0) AS popularity_score
		FROM users u
		JOIN (%s) s ON s.owner_id = u.id
		WHERE %s
		GROUP BY u.id`, score(), sub, rankedOwner)

	// The user's own score is computed unconditionally so a private account
	// still learns where it would sit. Only the population counted as
	// "ahead" is restricted to publicly ranked accounts.
	var mine struct {
		UserID          uint
		PopularityScore int64
	}
	mineQuery := fmt.Sprintf(`
		SELECT u.id AS user_id, COALESCE(SUM(%s), 0) AS popularity_score
		FROM users u
		LEFT JOIN (%s) s ON s.owner_id = u.id
		WHERE u.id = ? AND u.deleted_at IS NULL
		GROUP BY u.id`, score(), sub)
	mineArgs := append(append([]any{}, args...), userID)
	if err := r.db.WithContext(ctx).Raw(mineQuery, mineArgs...).Scan(&mine).Error; err != nil {
		return 0, err
	}
	if mine.UserID == 0 {
		return 0, nil
	}

	// Ties break toward the smaller user ID.
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM (%s) a
		WHERE a.popularity_score > ? OR (a.popularity_score = ? AND a.user_id < ?)`, aggregate)
	countArgs := append(append([]any{}, args...), false, false, false,
		mine.PopularityScore, mine.PopularityScore, userID)
	var ahead int64
	if err := r.db.WithContext(ctx).Raw(countQuery, countArgs...).Scan(&ahead).Error; err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}
