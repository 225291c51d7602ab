package service

import (
	"context"
	"testing"

	"atelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectWithTagsAndImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")

	project, err := env.projectService.Create(ctx, owner.ID, ProjectInput{
		Title:       "Harbor Sketches",
		Description: "Charcoal studies of the old harbor.",
		Tags:        []string{"Charcoal", "sketching", "charcoal"},
		ImageURLs:   []string{"https://img.example.com/1.webp", "https://img.example.com/2.webp"},
	})
	require.NoError(t, err)
	assert.NotZero(t, project.ID)
	assert.Equal(t, models.ProjectVisibilityPublic, project.Visibility)
	// tags are lowercased and de-duplicated
	assert.ElementsMatch(t, []string{"charcoal", "sketching"}, project.Tags)
	require.Len(t, project.Images, 2)
	assert.Equal(t, 0, project.Images[0].Position)
	assert.Equal(t, 1, project.Images[1].Position)

	_, err = env.projectService.Create(ctx, owner.ID, ProjectInput{Title: ""})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))
}

func TestGetProjectRecordsViewForNonOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	visitor := env.createUser(t, "visitor")
	project := env.createProject(t, owner, "Mural")

	// owner reads never count
	_, err := env.projectService.Get(ctx, owner.ID, project.ID)
	require.NoError(t, err)

	_, err = env.projectService.Get(ctx, visitor.ID, project.ID)
	require.NoError(t, err)
	_, err = env.projectService.Get(ctx, visitor.ID, project.ID)
	require.NoError(t, err)

	var view models.ProjectView
	require.NoError(t, env.db.Where("project_id = ?", project.ID).First(&view).Error)
	assert.Equal(t, int64(2), view.Views)
}

func TestPrivateProjectHiddenFromStrangers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	stranger := env.createUser(t, "stranger")
	project := env.createProject(t, owner, "Secret", func(p *models.Project) {
		p.Visibility = models.ProjectVisibilityPrivate
	})

	// hidden reads as absent, never forbidden
	_, err := env.projectService.Get(ctx, stranger.ID, project.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrorCode(t, err))

	_, err = env.projectService.Get(ctx, 0, project.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrorCode(t, err))

	// the owner and collaborators still see it
	_, err = env.projectService.Get(ctx, owner.ID, project.ID)
	require.NoError(t, err)

	collab := models.ProjectCollaborator{ProjectID: project.ID, UserID: stranger.ID, Role: models.CollabRoleViewer}
	require.NoError(t, env.db.Create(&collab).Error)
	_, err = env.projectService.Get(ctx, stranger.ID, project.ID)
	require.NoError(t, err)
}

func TestLikeProjectReportsCountAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	fan := env.createUser(t, "fan")
	project := env.createProject(t, owner, "Mural")

	result, err := env.projectService.Like(ctx, fan.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, int64(1), result.LikesCount)

	// a second like is a no-op, not an error
	result, err = env.projectService.Like(ctx, fan.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, int64(1), result.LikesCount)

	notifs, err := env.notifications.List(ctx, owner.ID, false, 10, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationTypeLike, notifs[0].Type)

	result, err = env.projectService.Unlike(ctx, fan.ID, project.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Zero(t, result.LikesCount)
}

func TestLikingOwnProjectDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	project := env.createProject(t, owner, "Mural")

	_, err := env.projectService.Like(ctx, owner.ID, project.ID)
	require.NoError(t, err)

	notifs, err := env.notifications.List(ctx, owner.ID, false, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

func TestUpdateProjectPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	editor := env.createUser(t, "editor")
	viewer := env.createUser(t, "viewer")
	project := env.createProject(t, owner, "Mural")

	for _, row := range []models.ProjectCollaborator{
		{ProjectID: project.ID, UserID: editor.ID, Role: models.CollabRoleEditor},
		{ProjectID: project.ID, UserID: viewer.ID, Role: models.CollabRoleViewer},
	} {
		require.NoError(t, env.db.Create(&row).Error)
	}

	// editors can change content
	updated, err := env.projectService.Update(ctx, editor.ID, project.ID, ProjectInput{Title: "Mural, Restored"})
	require.NoError(t, err)
	assert.Equal(t, "Mural, Restored", updated.Title)

	// but not visibility
	private := models.ProjectVisibilityPrivate
	_, err = env.projectService.Update(ctx, editor.ID, project.ID, ProjectInput{Visibility: &private})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrorCode(t, err))

	// viewers can change nothing
	_, err = env.projectService.Update(ctx, viewer.ID, project.ID, ProjectInput{Title: "Vandalized"})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrorCode(t, err))

	// the owner can flip visibility
	updated, err = env.projectService.Update(ctx, owner.ID, project.ID, ProjectInput{Visibility: &private})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectVisibilityPrivate, updated.Visibility)
}

func TestDeleteProjectOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	other := env.createUser(t, "other")
	project := env.createProject(t, owner, "Mural")
	require.NoError(t, env.db.Create(&models.ProjectTag{ProjectID: project.ID, Tag: "fresco"}).Error)

	err := env.projectService.Delete(ctx, other.ID, project.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrorCode(t, err))

	require.NoError(t, env.projectService.Delete(ctx, owner.ID, project.ID))

	_, err = env.projectService.Get(ctx, owner.ID, project.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrorCode(t, err))

	// associated tag rows go with the project
	var tags int64
	require.NoError(t, env.db.Model(&models.ProjectTag{}).Where("project_id = ?", project.ID).Count(&tags).Error)
	assert.Zero(t, tags)
}

func TestSavedProjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	collector := env.createUser(t, "collector")
	project := env.createProject(t, owner, "Mural")

	saved, err := env.projectService.SaveBookmark(ctx, collector.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	list, err := env.projectService.ListSaved(ctx, collector.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, project.ID, list[0].ID)
	assert.True(t, list[0].Saved)

	_, err = env.projectService.RemoveBookmark(ctx, collector.ID, project.ID)
	require.NoError(t, err)
	list, err = env.projectService.ListSaved(ctx, collector.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListByOwnerFiltersPrivateProjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	visitor := env.createUser(t, "visitor")
	env.createProject(t, owner, "Public Piece")
	env.createProject(t, owner, "Private Piece", func(p *models.Project) {
		p.Visibility = models.ProjectVisibilityPrivate
	})

	mine, err := env.projectService.ListByOwner(ctx, owner.ID, owner, 10, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := env.projectService.ListByOwner(ctx, visitor.ID, owner, 10, 0)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "Public Piece", theirs[0].Title)
}
