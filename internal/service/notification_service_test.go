package service

import (
	"context"
	"testing"

	"atelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifySkipsSelfNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "painter")
	actorID := user.ID

	env.notifications.Notify(ctx, &models.Notification{
		RecipientID: user.ID,
		ActorID:     &actorID,
		Type:        models.NotificationTypeLike,
		Message:     "liked your project",
	})

	list, err := env.notifications.List(ctx, user.ID, false, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotificationReadLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	recipient := env.createUser(t, "recipient")
	actor := env.createUser(t, "actor")
	actorID := actor.ID

	for i := 0; i < 3; i++ {
		env.notifications.Notify(ctx, &models.Notification{
			RecipientID: recipient.ID,
			ActorID:     &actorID,
			Type:        models.NotificationTypeFollow,
			Message:     "started following you",
		})
	}

	count, err := env.notifications.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	list, err := env.notifications.List(ctx, recipient.ID, true, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)

	require.NoError(t, env.notifications.MarkRead(ctx, recipient.ID, list[0].ID))
	count, err = env.notifications.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// other users cannot touch someone else's notifications
	err = env.notifications.MarkRead(ctx, actor.ID, list[1].ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrorCode(t, err))

	require.NoError(t, env.notifications.MarkAllRead(ctx, recipient.ID))
	count, err = env.notifications.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, env.notifications.Delete(ctx, recipient.ID, list[2].ID))
	all, err := env.notifications.List(ctx, recipient.ID, false, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
