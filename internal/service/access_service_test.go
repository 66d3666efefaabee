package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bably/internal/logger"
	"bably/internal/models"
	"bably/internal/validation"
)

func TestAddAuthorizedUserFirstGrantWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAccessService(f.access, f.demo)

	admin := f.user(t, "admin@example.com", "Ada")
	sitter := f.user(t, "sitter@example.com", "Sid")
	infant := f.infant(t, admin, "Ivy")

	added, err := svc.AddAuthorizedUser(ctx, sitter.ID, infant.ID, models.RoleBabysitter)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.AddAuthorizedUser(ctx, sitter.ID, infant.ID, models.RoleGuardian)
	require.NoError(t, err)
	assert.False(t, added)

	auth, err := svc.CheckAuthorized(ctx, sitter.Email, infant.ID)
	require.NoError(t, err)
	require.NotNil(t, auth)
	assert.Equal(t, models.RoleBabysitter, auth.Role)
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAccessService(f.access, f.demo)

	admin := f.user(t, "admin@example.com", "Ada")
	guardian := f.user(t, "guardian@example.com", "Gus")
	sitter := f.user(t, "sitter@example.com", "Sid")
	stranger := f.user(t, "stranger@example.com", "Stu")
	demo := f.user(t, "demo@demo.com", "DemoUser")
	infant := f.infant(t, admin, "Ivy")

	_, err := svc.AddAuthorizedUser(ctx, guardian.ID, infant.ID, models.RoleGuardian)
	require.NoError(t, err)
	_, err = svc.AddAuthorizedUser(ctx, sitter.ID, infant.ID, models.RoleBabysitter)
	require.NoError(t, err)
	_, err = svc.AddAuthorizedUser(ctx, demo.ID, infant.ID, models.RoleGuardian)
	require.NoError(t, err)

	tests := []struct {
		name string
		user *models.User
		need models.Permission
		want error
	}{
		{"admin administers", admin, models.PermAdmin, nil},
		{"guardian modifies", guardian, models.PermModify, nil},
		{"guardian cannot administer", guardian, models.PermAdmin, ErrForbidden},
		{"babysitter logs", sitter, models.PermLog, nil},
		{"babysitter cannot modify", sitter, models.PermModify, ErrForbidden},
		{"stranger cannot read", stranger, models.PermRead, ErrForbidden},
		{"demo reads", demo, models.PermRead, nil},
		{"demo cannot log", demo, models.PermLog, ErrDemoReadOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authorize(ctx, identity(tt.user), infant.ID, tt.need)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestUpdateAndRemoveAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAccessService(f.access, f.demo)

	admin := f.user(t, "admin@example.com", "Ada")
	sitter := f.user(t, "sitter@example.com", "Sid")
	infant := f.infant(t, admin, "Ivy")
	_, err := svc.AddAuthorizedUser(ctx, sitter.ID, infant.ID, models.RoleBabysitter)
	require.NoError(t, err)

	adminAuth, err := svc.CheckAuthorized(ctx, admin.Email, infant.ID)
	require.NoError(t, err)
	sitterAuth, err := svc.CheckAuthorized(ctx, sitter.Email, infant.ID)
	require.NoError(t, err)

	t.Run("only admins change roles", func(t *testing.T) {
		_, err := svc.UpdateAccess(ctx, sitterAuth, sitter.ID, infant.ID, true)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin links cannot be changed", func(t *testing.T) {
		_, err := svc.UpdateAccess(ctx, adminAuth, admin.ID, infant.ID, false)
		assert.ErrorIs(t, err, ErrAdminTarget)
	})

	t.Run("promote to guardian", func(t *testing.T) {
		crud, err := svc.UpdateAccess(ctx, adminAuth, sitter.ID, infant.ID, true)
		require.NoError(t, err)
		assert.True(t, crud)

		auth, err := svc.CheckAuthorized(ctx, sitter.Email, infant.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleGuardian, auth.Role)
	})

	t.Run("admin cannot remove themselves", func(t *testing.T) {
		_, err := svc.RemoveAccess(ctx, adminAuth, admin.ID, infant.ID)
		assert.ErrorIs(t, err, ErrRemoveSelf)
	})

	t.Run("remove keeps events", func(t *testing.T) {
		fedAt := int64(1700000000)
		require.NoError(t, f.feeds.Create(ctx, &models.Feed{Method: models.MethodBottle, FedAt: fedAt, Amount: floatPtr(4), InfantID: infant.ID}))

		removed, err := svc.RemoveAccess(ctx, adminAuth, sitter.ID, infant.ID)
		require.NoError(t, err)
		assert.Equal(t, sitter.ID, removed)

		auth, err := svc.CheckAuthorized(ctx, sitter.Email, infant.ID)
		require.NoError(t, err)
		assert.Nil(t, auth)

		feeds, err := f.feeds.ListInWindow(ctx, infant.ID, fedAt-1, fedAt+1)
		require.NoError(t, err)
		assert.Len(t, feeds, 1)
	})

	t.Run("removing a missing link", func(t *testing.T) {
		_, err := svc.RemoveAccess(ctx, adminAuth, sitter.ID, infant.ID)
		assert.ErrorIs(t, err, ErrLinkNotFound)
	})
}

func TestNotifyTargets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAccessService(f.access, f.demo)

	admin := f.user(t, "admin@example.com", "Ada")
	sitter := f.user(t, "sitter@example.com", "Sid")
	infant := f.infant(t, admin, "Ivy")
	_, err := svc.AddAuthorizedUser(ctx, sitter.ID, infant.ID, models.RoleBabysitter)
	require.NoError(t, err)

	sitterAuth, err := svc.CheckAuthorized(ctx, sitter.Email, infant.ID)
	require.NoError(t, err)
	targets, err := svc.NotifyTargets(ctx, sitterAuth)
	require.NoError(t, err)
	assert.Empty(t, targets)

	_, err = svc.UpdateNotifyAdmin(ctx, sitterAuth, sitter.ID, infant.ID, true)
	require.NoError(t, err)

	sitterAuth, err = svc.CheckAuthorized(ctx, sitter.Email, infant.ID)
	require.NoError(t, err)
	targets, err = svc.NotifyTargets(ctx, sitterAuth)
	require.NoError(t, err)
	assert.Equal(t, []string{admin.Email}, targets)

	t.Run("others cannot set the bit", func(t *testing.T) {
		_, err := svc.UpdateNotifyAdmin(ctx, sitterAuth, admin.ID, infant.ID, true)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestInviteOrAttach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	access := NewAccessService(f.access, f.demo)
	mailer := &recordingMailer{}
	svc := NewInvitationService(f.users, f.invitations, access, mailer, f.validator, logger.Nop())

	admin := f.user(t, "admin@example.com", "Ada")
	guardian := f.user(t, "guardian@example.com", "Gus")
	infant := f.infant(t, admin, "Ivy")

	req := func(to string, crud bool) InviteRequest {
		return InviteRequest{SentTo: to, SentByName: "Ada", SentByID: admin.ID, Crud: crud, InfantName: "Ivy"}
	}

	t.Run("registered users are attached", func(t *testing.T) {
		details, err := svc.InviteOrAttach(ctx, identity(admin), infant.ID, req("Guardian@Example.com", true))
		require.NoError(t, err)
		assert.Equal(t, &models.InviteDetails{Recipient: "Gus", InviteSent: false, PreviouslyAdded: false}, details)

		details, err = svc.InviteOrAttach(ctx, identity(admin), infant.ID, req(guardian.Email, false))
		require.NoError(t, err)
		assert.True(t, details.PreviouslyAdded)

		auth, err := access.CheckAuthorized(ctx, guardian.Email, infant.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleGuardian, auth.Role)
	})

	t.Run("unregistered users are emailed and resolved later", func(t *testing.T) {
		details, err := svc.InviteOrAttach(ctx, identity(admin), infant.ID, req("new@example.com", false))
		require.NoError(t, err)
		assert.Equal(t, &models.InviteDetails{InviteSent: true}, details)
		assert.Equal(t, []string{"new@example.com"}, mailer.invites)

		newcomer := f.user(t, "new@example.com", "Nia")
		require.NoError(t, svc.ResolvePending(ctx, newcomer))

		auth, err := access.CheckAuthorized(ctx, newcomer.Email, infant.ID)
		require.NoError(t, err)
		require.NotNil(t, auth)
		assert.Equal(t, models.RoleBabysitter, auth.Role)

		pending, err := f.invitations.ListPendingByEmail(ctx, newcomer.Email)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("only admins invite", func(t *testing.T) {
		_, err := svc.InviteOrAttach(ctx, identity(guardian), infant.ID, req("other@example.com", false))
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("recipient must be an email", func(t *testing.T) {
		_, err := svc.InviteOrAttach(ctx, identity(admin), infant.ID, req("not-an-email", false))
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("SentTo") || verr.Has("sentTo"))
	})
}
