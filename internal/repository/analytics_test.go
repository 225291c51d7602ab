package repository

import (
	"context"
	"testing"
	"time"

	"atelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsRepository_RecordViewUpserts(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewAnalyticsRepository(db)
	ctx := context.Background()
	_, project := seedOwnerAndProject(t, db)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RecordView(ctx, project.ID, now))
	}
	yesterday := now.AddDate(0, 0, -1)
	require.NoError(t, repo.RecordView(ctx, project.ID, yesterday))

	var rows []models.ProjectView
	require.NoError(t, db.Where("project_id = ?", project.ID).Order("day ASC").Find(&rows).Error)
	require.Len(t, rows, 2, "one counter row per day")
	assert.EqualValues(t, 1, rows[0].Views)
	assert.EqualValues(t, 3, rows[1].Views)
}

func TestAnalyticsRepository_ProjectTotals(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewAnalyticsRepository(db)
	ctx := context.Background()
	_, project := seedOwnerAndProject(t, db)

	require.NoError(t, repo.RecordView(ctx, project.ID, time.Now()))
	require.NoError(t, db.Create(&models.ProjectLike{UserID: 7, ProjectID: project.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{ProjectID: project.ID, UserID: 7, Content: "good bones"}).Error)

	stats, err := repo.ProjectTotals(ctx, project.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Views)
	assert.EqualValues(t, 1, stats.Likes)
	assert.EqualValues(t, 1, stats.Comments)
	assert.EqualValues(t, models.PopularityScore(1, 1, 1), stats.PopularityScore)

	_, err = repo.ProjectTotals(ctx, 9999)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

// Owner dashboards count the owner's private projects; only the public
// rankings filter by visibility.
func TestAnalyticsRepository_OwnerTotalsIncludePrivateProjects(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewAnalyticsRepository(db)
	ctx := context.Background()
	owner, public := seedOwnerAndProject(t, db)

	private := &models.Project{OwnerID: owner.ID, Title: "Sketchbook", Visibility: models.ProjectVisibilityPrivate}
	require.NoError(t, db.Create(private).Error)
	require.NoError(t, db.Create(&models.ProjectLike{UserID: 7, ProjectID: private.ID}).Error)
	require.NoError(t, repo.RecordView(ctx, private.ID, time.Now()))

	totals, err := repo.OwnerTotals(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, totals.Projects)
	assert.EqualValues(t, 1, totals.Likes)
	assert.EqualValues(t, 1, totals.Views)

	top, err := repo.TopProjectsByOwner(ctx, owner.ID, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, private.ID, top[0].ProjectID, "engaged private project outranks the idle public one")

	// The public rankings still exclude it.
	ranked, err := repo.ProjectRanking(ctx, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, public.ID, ranked[0].ProjectID)
}

func TestAnalyticsRepository_UserPositionOutsideRankedPopulation(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewAnalyticsRepository(db)
	ctx := context.Background()

	rank, err := repo.UserPosition(ctx, 12345)
	require.NoError(t, err)
	assert.Zero(t, rank)
}
