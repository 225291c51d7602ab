package repository

import (
	"context"
	"errors"

	"atelier/internal/cache"
	"atelier/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error)
	GetByProject(ctx context.Context, projectID uint, currentUserID uint, limit, offset int) ([]models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, commentID uint) (bool, error)
	Unlike(ctx context.Context, userID, commentID uint) (bool, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) detailSelect(db *gorm.DB, currentUserID uint) *gorm.DB {
	return db.Select(
		"comments.*, "+
			"(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) AS likes_count, "+
			"EXISTS(SELECT 1 FROM comment_likes WHERE comment_likes.comment_id = comments.id AND comment_likes.user_id = ?) AS liked",
		currentUserID,
	).Preload("User")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("User", "Project").Create(comment).Error; err != nil {
		return err
	}
	cache.InvalidateProject(ctx, comment.ProjectID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.detailSelect(r.db.WithContext(ctx), currentUserID).First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment not found")
		}
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) GetByProject(ctx context.Context, projectID uint, currentUserID uint, limit, offset int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.detailSelect(r.db.WithContext(ctx), currentUserID).
		Where("comments.project_id = ?", projectID).
		Order("comments.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Update("content", comment.Content).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

// Like relies on the unique index so a double-tap cannot create two rows.
func (r *commentRepository) Like(ctx context.Context, userID, commentID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CommentLike{UserID: userID, CommentID: commentID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *commentRepository) Unlike(ctx context.Context, userID, commentID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&models.CommentLike{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
