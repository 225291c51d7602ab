package service

import (
	"context"
	"strings"
	"testing"

	"atelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentCreateNotifiesProjectOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	visitor := env.createUser(t, "visitor")
	project := env.createProject(t, owner, "Mural")

	comment, err := env.commentService.Create(ctx, visitor.ID, project.ID, "Lovely brushwork.")
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)

	notifs, err := env.notifications.List(ctx, owner.ID, false, 10, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationTypeComment, notifs[0].Type)
	require.NotNil(t, notifs[0].ProjectID)
	assert.Equal(t, project.ID, *notifs[0].ProjectID)
	require.NotNil(t, notifs[0].CommentID)
	assert.Equal(t, comment.ID, *notifs[0].CommentID)
}

func TestCommentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	project := env.createProject(t, owner, "Mural")

	_, err := env.commentService.Create(ctx, owner.ID, project.ID, "   ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))

	_, err = env.commentService.Create(ctx, owner.ID, project.ID, strings.Repeat("x", maxCommentLength+1))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))
}

func TestCommentOnHiddenProjectNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	stranger := env.createUser(t, "stranger")
	project := env.createProject(t, owner, "Secret", func(p *models.Project) {
		p.Visibility = models.ProjectVisibilityPrivate
	})

	_, err := env.commentService.Create(ctx, stranger.ID, project.ID, "Hello?")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrorCode(t, err))
}

func TestCommentUpdateAuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	author := env.createUser(t, "author")
	project := env.createProject(t, owner, "Mural")

	comment, err := env.commentService.Create(ctx, author.ID, project.ID, "First draft.")
	require.NoError(t, err)

	updated, err := env.commentService.Update(ctx, author.ID, comment.ID, "Second draft.")
	require.NoError(t, err)
	assert.Equal(t, "Second draft.", updated.Content)

	// even the project owner cannot edit someone else's words
	_, err = env.commentService.Update(ctx, owner.ID, comment.ID, "Rewritten.")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrorCode(t, err))
}

func TestCommentDeletePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	author := env.createUser(t, "author")
	stranger := env.createUser(t, "stranger")
	admin := env.createUser(t, "admin", func(u *models.User) { u.IsAdmin = true })
	project := env.createProject(t, owner, "Mural")

	newComment := func() *models.Comment {
		c, err := env.commentService.Create(ctx, author.ID, project.ID, "Disposable.")
		require.NoError(t, err)
		return c
	}

	c := newComment()
	err := env.commentService.Delete(ctx, stranger.ID, c.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrorCode(t, err))

	require.NoError(t, env.commentService.Delete(ctx, author.ID, c.ID))
	require.NoError(t, env.commentService.Delete(ctx, owner.ID, newComment().ID))
	require.NoError(t, env.commentService.Delete(ctx, admin.ID, newComment().ID))
}

func TestCommentLikeToggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	fan := env.createUser(t, "fan")
	project := env.createProject(t, owner, "Mural")

	comment, err := env.commentService.Create(ctx, owner.ID, project.ID, "Thanks all.")
	require.NoError(t, err)

	liked, err := env.commentService.Like(ctx, fan.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikesCount)
	assert.True(t, liked.Liked)

	// duplicate likes collapse
	liked, err = env.commentService.Like(ctx, fan.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikesCount)

	unliked, err := env.commentService.Unlike(ctx, fan.ID, comment.ID)
	require.NoError(t, err)
	assert.Zero(t, unliked.LikesCount)
	assert.False(t, unliked.Liked)
}
