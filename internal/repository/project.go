package repository

import (
	"context"
	"errors"
	"fmt"

	"atelier/internal/cache"
	"atelier/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Project, error)
	GetByOwner(ctx context.Context, ownerID uint, currentUserID uint, limit, offset int) ([]models.Project, error)
	ListPublic(ctx context.Context, currentUserID uint, limit, offset int) ([]models.Project, error)
	ListSaved(ctx context.Context, userID uint, limit, offset int) ([]models.Project, error)
	ListByTag(ctx context.Context, tag string, currentUserID uint, limit, offset int) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uint) error

	ReplaceTags(ctx context.Context, projectID uint, tags []string) error
	LoadTags(ctx context.Context, projectID uint) ([]string, error)
	ReplaceImages(ctx context.Context, projectID uint, urls []string) error

	Like(ctx context.Context, userID, projectID uint) (bool, error)
	Unlike(ctx context.Context, userID, projectID uint) (bool, error)
	Save(ctx context.Context, userID, projectID uint) (bool, error)
	Unsave(ctx context.Context, userID, projectID uint) (bool, error)

	GetCollaborator(ctx context.Context, projectID, userID uint) (*models.ProjectCollaborator, error)
	ListCollaborators(ctx context.Context, projectID uint) ([]models.ProjectCollaborator, error)
	AddCollaborator(ctx context.Context, collab *models.ProjectCollaborator) error
	UpdateCollaboratorRole(ctx context.Context, projectID, userID uint, role models.CollabRole) error
	RemoveCollaborator(ctx context.Context, projectID, userID uint) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// detailSelect attaches engagement counters and the viewer's own
// liked/saved flags as computed columns. The popularity expression must stay
// in sync with models.PopularityScore.
func (r *projectRepository) detailSelect(db *gorm.DB, currentUserID uint) *gorm.DB {
	const (
		likesExpr    = "(SELECT COUNT(*) FROM project_likes WHERE project_likes.project_id = projects.id)"
		commentsExpr = "(SELECT COUNT(*) FROM comments WHERE comments.project_id = projects.id AND comments.deleted_at IS NULL)"
		viewsExpr    = "(SELECT COALESCE(SUM(project_views.views), 0) FROM project_views WHERE project_views.project_id = projects.id)"
	)
	popularityExpr := fmt.Sprintf("(%s * %d + %s * %d + %s * %d)",
		viewsExpr, models.ViewWeight, likesExpr, models.LikeWeight, commentsExpr, models.CommentWeight)

	selectSQL := "projects.*, " +
		likesExpr + " AS likes_count, " +
		commentsExpr + " AS comments_count, " +
		viewsExpr + " AS views_count, " +
		popularityExpr + " AS popularity_score, " +
		"EXISTS(SELECT 1 FROM project_likes WHERE project_likes.project_id = projects.id AND project_likes.user_id = ?) AS liked, " +
		"EXISTS(SELECT 1 FROM saved_projects WHERE saved_projects.project_id = projects.id AND saved_projects.user_id = ?) AS saved"

	return db.Select(selectSQL, currentUserID, currentUserID).
		Preload("Owner").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Collaborators.User")
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit("Owner", "Collaborators").Create(project).Error
}

func (r *projectRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Project, error) {
	var project models.Project
	err := r.detailSelect(r.db.WithContext(ctx), currentUserID).First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project not found")
		}
		return nil, err
	}
	tags, err := r.LoadTags(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.Tags = tags
	return &project, nil
}

func (r *projectRepository) GetByOwner(ctx context.Context, ownerID uint, currentUserID uint, limit, offset int) ([]models.Project, error) {
	var projects []models.Project
	err := r.detailSelect(r.db.WithContext(ctx), currentUserID).
		Where("projects.owner_id = ?", ownerID).
		Order("projects.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return r.attachTags(ctx, projects)
}

func (r *projectRepository) ListPublic(ctx context.Context, currentUserID uint, limit, offset int) ([]models.Project, error) {
	var projects []models.Project
	err := r.detailSelect(r.db.WithContext(ctx), currentUserID).
		Joins("JOIN users ON users.id = projects.owner_id").
		Where("projects.visibility = ?", models.ProjectVisibilityPublic).
		Where("users.is_private = ?", false).
		Where("users.is_banned = ? AND users.is_deleted = ?", false, false).
		Order("projects.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return r.attachTags(ctx, projects)
}

func (r *projectRepository) ListSaved(ctx context.Context, userID uint, limit, offset int) ([]models.Project, error) {
	var projects []models.Project
	err := r.detailSelect(r.db.WithContext(ctx), userID).
		Joins("JOIN saved_projects sp ON sp.project_id = projects.id AND sp.user_id = ?", userID).
		Order("sp.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return r.attachTags(ctx, projects)
}

func (r *projectRepository) ListByTag(ctx context.Context, tag string, currentUserID uint, limit, offset int) ([]models.Project, error) {
	var projects []models.Project
	err := r.detailSelect(r.db.WithContext(ctx), currentUserID).
		Joins("JOIN project_tags ON project_tags.project_id = projects.id AND project_tags.tag = ?", tag).
		Joins("JOIN users ON users.id = projects.owner_id").
		Where("projects.visibility = ?", models.ProjectVisibilityPublic).
		Where("users.is_private = ?", false).
		Order("projects.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return r.attachTags(ctx, projects)
}

func (r *projectRepository) attachTags(ctx context.Context, projects []models.Project) ([]models.Project, error) {
	if len(projects) == 0 {
		return projects, nil
	}
	ids := make([]uint, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
	}
	var rows []models.ProjectTag
	if err := r.db.WithContext(ctx).Where("project_id IN ?", ids).Order("tag ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	byProject := make(map[uint][]string, len(projects))
	for _, row := range rows {
		byProject[row.ProjectID] = append(byProject[row.ProjectID], row.Tag)
	}
	for i := range projects {
		tags := byProject[projects[i].ID]
		if tags == nil {
			tags = []string{}
		}
		projects[i].Tags = tags
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	err := r.db.WithContext(ctx).
		Omit("Owner", "Images", "Collaborators").
		Save(project).Error
	if err != nil {
		return err
	}
	cache.InvalidateProject(ctx, project.ID)
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectCollaborator{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.CollabInvitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateProject(ctx, id)
	return nil
}

// ReplaceTags swaps the project's tag set atomically. Tags must already be
// normalized by the caller.
func (r *projectRepository) ReplaceTags(ctx context.Context, projectID uint, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectTag{}).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		rows := make([]models.ProjectTag, len(tags))
		for i, tag := range tags {
			rows[i] = models.ProjectTag{ProjectID: projectID, Tag: tag}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateProject(ctx, projectID)
	return nil
}

func (r *projectRepository) LoadTags(ctx context.Context, projectID uint) ([]string, error) {
	var tags []string
	err := r.db.WithContext(ctx).
		Model(&models.ProjectTag{}).
		Where("project_id = ?", projectID).
		Order("tag ASC").
		Pluck("tag", &tags).Error
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func (r *projectRepository) ReplaceImages(ctx context.Context, projectID uint, urls []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectImage{}).Error; err != nil {
			return err
		}
		if len(urls) == 0 {
			return nil
		}
		rows := make([]models.ProjectImage, len(urls))
		for i, url := range urls {
			rows[i] = models.ProjectImage{ProjectID: projectID, URL: url, Position: i}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateProject(ctx, projectID)
	return nil
}

// Like inserts atomically; the unique index makes duplicate likes a no-op
// instead of a race. Returns whether a new like was created.
func (r *projectRepository) Like(ctx context.Context, userID, projectID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProjectLike{UserID: userID, ProjectID: projectID})
	if result.Error != nil {
		return false, result.Error
	}
	cache.InvalidateProject(ctx, projectID)
	return result.RowsAffected > 0, nil
}

func (r *projectRepository) Unlike(ctx context.Context, userID, projectID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.ProjectLike{})
	if result.Error != nil {
		return false, result.Error
	}
	cache.InvalidateProject(ctx, projectID)
	return result.RowsAffected > 0, nil
}

func (r *projectRepository) Save(ctx context.Context, userID, projectID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SavedProject{UserID: userID, ProjectID: projectID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *projectRepository) Unsave(ctx context.Context, userID, projectID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.SavedProject{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetCollaborator returns (nil, nil) when the user is not a collaborator.
func (r *projectRepository) GetCollaborator(ctx context.Context, projectID, userID uint) (*models.ProjectCollaborator, error) {
	var collab models.ProjectCollaborator
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&collab).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &collab, nil
}

func (r *projectRepository) ListCollaborators(ctx context.Context, projectID uint) ([]models.ProjectCollaborator, error) {
	var collabs []models.ProjectCollaborator
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("added_at ASC").
		Find(&collabs).Error
	return collabs, err
}

func (r *projectRepository) AddCollaborator(ctx context.Context, collab *models.ProjectCollaborator) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(collab).Error; err != nil {
		return translateUniqueError(err, map[string]string{
			"idx_project_collaborator": "User is already a collaborator on this project",
		})
	}
	cache.InvalidateProject(ctx, collab.ProjectID)
	return nil
}

func (r *projectRepository) UpdateCollaboratorRole(ctx context.Context, projectID, userID uint, role models.CollabRole) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProjectCollaborator{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Collaborator not found")
	}
	cache.InvalidateProject(ctx, projectID)
	return nil
}

func (r *projectRepository) RemoveCollaborator(ctx context.Context, projectID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectCollaborator{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Collaborator not found")
	}
	cache.InvalidateProject(ctx, projectID)
	return nil
}
