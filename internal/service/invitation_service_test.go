package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
	"taskboard/internal/service"
)

func TestCreateInvitation_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "alice")
	target := f.user(t, "bob")
	task := f.task(t, owner.ID, "shared")

	t.Run("invalid permission", func(t *testing.T) {
		_, err := f.invitations.CreateInvitation(ctx, owner.ID, task.ID, target.Username, models.Permission("admin"))
		assertBusinessCode(t, err, service.CodeValidation)
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := f.invitations.CreateInvitation(ctx, owner.ID, task.ID, "nobody", models.PermissionView)
		assertBusinessCode(t, err, service.CodeNotFound)
	})

	t.Run("self share", func(t *testing.T) {
		_, err := f.invitations.CreateInvitation(ctx, owner.ID, task.ID, owner.Username, models.PermissionView)
		assertBusinessCode(t, err, service.CodeValidation)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := f.invitations.CreateInvitation(ctx, owner.ID, 999, target.Username, models.PermissionView)
		assertBusinessCode(t, err, service.CodeNotFound)
	})
}

func TestCreateInvitation_OnlyOwnerCanShare(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "alice")
	editor := f.user(t, "bob")
	third := f.user(t, "carol")

	task := f.task(t, owner.ID, "shared")
	shareTask(t, f, owner.ID, task.ID, editor, models.PermissionEdit)

	// Even an editor may not re-share the task.
	_, err := f.invitations.CreateInvitation(ctx, editor.ID, task.ID, third.Username, models.PermissionView)
	assertBusinessCode(t, err, service.CodeForbidden)
}

func TestRespond_AcceptGrantsAccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "alice")
	target := f.user(t, "bob")
	task := f.task(t, owner.ID, "shared")

	inv, err := f.invitations.CreateInvitation(ctx, owner.ID, task.ID, target.Username, models.PermissionEdit)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, inv.Status)

	// Pending invitations grant nothing yet.
	_, err = f.tasks.ToggleComplete(ctx, target.ID, task.ID)
	assertBusinessCode(t, err, service.CodeNotFound)

	resolved, err := f.invitations.Respond(ctx, target.ID, inv.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, resolved.Status)

	_, err = f.tasks.ToggleComplete(ctx, target.ID, task.ID)
	require.NoError(t, err)
}

func TestRespond_RejectGrantsNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "alice")
	target := f.user(t, "bob")
	task := f.task(t, owner.ID, "shared")

	inv, err := f.invitations.CreateInvitation(ctx, owner.ID, task.ID, target.Username, models.PermissionView)
	require.NoError(t, err)

	resolved, err := f.invitations.Respond(ctx, target.ID, inv.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, resolved.Status)

	views, err := f.tasks.ListTasks(ctx, target.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Zero(t, f.store.ShareCount(task.ID))
}

func TestRespond_TerminalStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "alice")
	target := f.user(t, "bob")
	task := f.task(t, owner.ID, "shared")

	inv, err := f.invitations.CreateInvitation(ctx, owner.ID, task.ID, target.Username, models.PermissionEdit)
	require.NoError(t, err)

	_, err = f.invitations.Respond(ctx, target.ID, inv.ID, true)
	require.NoError(t, err)

	// A resolved invitation reads as gone, whatever the second answer is.
	_, err = f.invitations.Respond(ctx, target.ID, inv.ID, true)
	assertBusinessCode(t, err, service.CodeNotFound)
	_, err = f.invitations.Respond(ctx, target.ID, inv.ID, false)
	assertBusinessCode(t, err, service.CodeNotFound)

	assert.Equal(t, 1, f.store.ShareCount(task.ID))
}

func TestRespond_OnlyAddressee(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "alice")
	target := f.user(t, "bob")
	other := f.user(t, "carol")
	task := f.task(t, owner.ID, "shared")

	inv, err := f.invitations.CreateInvitation(ctx, owner.ID, task.ID, target.Username, models.PermissionEdit)
	require.NoError(t, err)

	_, err = f.invitations.Respond(ctx, other.ID, inv.ID, true)
	assertBusinessCode(t, err, service.CodeNotFound)
}

func TestListPending_OnlyOwnPendingWithDetails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "alice")
	target := f.user(t, "bob")
	other := f.user(t, "carol")

	task := f.task(t, owner.ID, "project plan")
	otherTask := f.task(t, owner.ID, "unrelated")

	inv, err := f.invitations.CreateInvitation(ctx, owner.ID, task.ID, target.Username, models.PermissionEdit)
	require.NoError(t, err)
	_, err = f.invitations.CreateInvitation(ctx, owner.ID, otherTask.ID, other.Username, models.PermissionView)
	require.NoError(t, err)

	rejected, err := f.invitations.CreateInvitation(ctx, owner.ID, otherTask.ID, target.Username, models.PermissionView)
	require.NoError(t, err)
	_, err = f.invitations.Respond(ctx, target.ID, rejected.ID, false)
	require.NoError(t, err)

	pending, err := f.invitations.ListPending(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, inv.ID, pending[0].ID)
	assert.Equal(t, "project plan", pending[0].TaskTitle)
	assert.Equal(t, "alice", pending[0].FromUsername)
	assert.Equal(t, models.PermissionEdit, pending[0].Permission)
}

func TestCreateInvitation_DuplicatePendingAllowed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "alice")
	target := f.user(t, "bob")
	task := f.task(t, owner.ID, "shared")

	_, err := f.invitations.CreateInvitation(ctx, owner.ID, task.ID, target.Username, models.PermissionView)
	require.NoError(t, err)
	_, err = f.invitations.CreateInvitation(ctx, owner.ID, task.ID, target.Username, models.PermissionEdit)
	require.NoError(t, err)

	pending, err := f.invitations.ListPending(ctx, target.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
