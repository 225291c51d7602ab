package service

import (
	"context"
	"testing"

	"atelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitationRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	invitee := env.createUser(t, "invitee")
	project := env.createProject(t, owner, "Mural")

	inv, err := env.collabService.Invite(ctx, owner.ID, project.ID, "invitee", models.CollabRoleEditor)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusPending, inv.Status)
	assert.Equal(t, invitee.ID, inv.InviteeID)

	// invitee sees it in their inbox and got a notification
	inbox, err := env.collabService.ListInvitations(ctx, invitee.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	notifs, err := env.notifications.List(ctx, invitee.ID, false, 10, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationTypeInvitation, notifs[0].Type)

	// only the invitee can accept
	_, err = env.collabService.Accept(ctx, owner.ID, inv.ID)
	require.Error(t, err)

	collab, err := env.collabService.Accept(ctx, invitee.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CollabRoleEditor, collab.Role)
	assert.Equal(t, invitee.ID, collab.UserID)

	// accepting consumes the invitation
	inbox, err = env.collabService.ListInvitations(ctx, invitee.ID)
	require.NoError(t, err)
	assert.Empty(t, inbox)

	collabs, err := env.collabService.ListCollaborators(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	require.Len(t, collabs, 1)
	assert.Equal(t, invitee.ID, collabs[0].UserID)

	// the owner hears the invitation was accepted
	ownerNotifs, err := env.notifications.List(ctx, owner.ID, false, 10, 0)
	require.NoError(t, err)
	require.Len(t, ownerNotifs, 1)
	assert.Equal(t, models.NotificationTypeInvitationAccepted, ownerNotifs[0].Type)
}

func TestInviteByEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	invitee := env.createUser(t, "invitee")
	project := env.createProject(t, owner, "Mural")

	inv, err := env.collabService.Invite(ctx, owner.ID, project.ID, "invitee@example.com", models.CollabRoleViewer)
	require.NoError(t, err)
	assert.Equal(t, invitee.ID, inv.InviteeID)
}

func TestInviteConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	env.createUser(t, "invitee")
	outsider := env.createUser(t, "outsider")
	project := env.createProject(t, owner, "Mural")

	_, err := env.collabService.Invite(ctx, owner.ID, project.ID, "invitee", models.CollabRoleViewer)
	require.NoError(t, err)

	// a second invite while one is pending conflicts
	_, err = env.collabService.Invite(ctx, owner.ID, project.ID, "invitee", models.CollabRoleViewer)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", appErrorCode(t, err))

	// self-invites are rejected
	_, err = env.collabService.Invite(ctx, owner.ID, project.ID, "owner", models.CollabRoleViewer)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))

	// unknown users read as missing
	_, err = env.collabService.Invite(ctx, owner.ID, project.ID, "nobody", models.CollabRoleViewer)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrorCode(t, err))

	// only the owner can invite
	_, err = env.collabService.Invite(ctx, outsider.ID, project.ID, "invitee", models.CollabRoleViewer)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrorCode(t, err))
}

func TestInviteExistingCollaboratorConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	invitee := env.createUser(t, "invitee")
	project := env.createProject(t, owner, "Mural")

	inv, err := env.collabService.Invite(ctx, owner.ID, project.ID, "invitee", models.CollabRoleViewer)
	require.NoError(t, err)
	_, err = env.collabService.Accept(ctx, invitee.ID, inv.ID)
	require.NoError(t, err)

	_, err = env.collabService.Invite(ctx, owner.ID, project.ID, "invitee", models.CollabRoleViewer)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", appErrorCode(t, err))
}

func TestRejectInvitation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	invitee := env.createUser(t, "invitee")
	project := env.createProject(t, owner, "Mural")

	inv, err := env.collabService.Invite(ctx, owner.ID, project.ID, "invitee", models.CollabRoleViewer)
	require.NoError(t, err)

	require.NoError(t, env.collabService.Reject(ctx, invitee.ID, inv.ID))

	collabs, err := env.collabService.ListCollaborators(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	assert.Empty(t, collabs)

	// a rejection clears the way for a fresh invite
	_, err = env.collabService.Invite(ctx, owner.ID, project.ID, "invitee", models.CollabRoleViewer)
	require.NoError(t, err)
}

func TestCollaboratorRoleManagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	invitee := env.createUser(t, "invitee")
	project := env.createProject(t, owner, "Mural")

	inv, err := env.collabService.Invite(ctx, owner.ID, project.ID, "invitee", models.CollabRoleViewer)
	require.NoError(t, err)
	_, err = env.collabService.Accept(ctx, invitee.ID, inv.ID)
	require.NoError(t, err)

	// collaborators cannot manage roles
	err = env.collabService.UpdateRole(ctx, invitee.ID, project.ID, invitee.ID, models.CollabRoleEditor)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrorCode(t, err))

	require.NoError(t, env.collabService.UpdateRole(ctx, owner.ID, project.ID, invitee.ID, models.CollabRoleEditor))

	collabs, err := env.collabService.ListCollaborators(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	require.Len(t, collabs, 1)
	assert.Equal(t, models.CollabRoleEditor, collabs[0].Role)

	// a collaborator can walk away on their own
	require.NoError(t, env.collabService.Leave(ctx, invitee.ID, project.ID))
	collabs, err = env.collabService.ListCollaborators(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	assert.Empty(t, collabs)
}
