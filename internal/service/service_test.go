package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"bably/internal/database"
	"bably/internal/logger"
	"bably/internal/models"
	"bably/internal/repository"
	"bably/internal/security"
	"bably/internal/validation"
	"bably/migrations"
)

type recordingMailer struct {
	mu      sync.Mutex
	invites []string
	err     error
}

func (m *recordingMailer) SendInvitationEmail(_ context.Context, toEmail, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invites = append(m.invites, toEmail)
	return m.err
}

func (m *recordingMailer) SendPasswordResetEmail(context.Context, string, string, string) error {
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent [][]string
}

func (n *recordingNotifier) Notify(_ context.Context, emails []string, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, emails)
	return nil
}

// fixture is a migrated sqlite database with the repositories on top
type fixture struct {
	db          *database.DB
	users       *repository.UserRepository
	infants     *repository.InfantRepository
	access      *repository.AccessRepository
	invitations *repository.InvitationRepository
	feeds       *repository.FeedRepository
	diapers     *repository.DiaperRepository
	demo        security.DemoPolicy
	validator   *validation.Validator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "bably.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(context.Background(), migrations.FS, logger.Nop()))

	return &fixture{
		db:          db,
		users:       repository.NewUserRepository(db),
		infants:     repository.NewInfantRepository(db),
		access:      repository.NewAccessRepository(db),
		invitations: repository.NewInvitationRepository(db),
		feeds:       repository.NewFeedRepository(db),
		diapers:     repository.NewDiaperRepository(db),
		demo:        security.NewDemoPolicy("demo@demo.com"),
		validator:   validation.New(),
	}
}

func (f *fixture) user(t *testing.T, email, name string) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), email, "hash", name)
	require.NoError(t, err)
	return u
}

// infant creates an infant administered by admin
func (f *fixture) infant(t *testing.T, admin *models.User, name string) *models.Infant {
	t.Helper()
	ctx := context.Background()
	infant := &models.Infant{FirstName: name, DOB: "2025-03-01", Gender: "female"}
	require.NoError(t, f.infants.CreateInfant(ctx, infant))
	_, err := f.access.AddLink(ctx, admin.ID, infant.ID, models.RoleAdmin)
	require.NoError(t, err)
	return infant
}

func identity(u *models.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email}
}
