package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"bably/internal/database"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string             `json:"version"`
	ExportedAt   time.Time          `json:"exported_at"`
	DatabaseType string             `json:"database_type"`
	Users        []UserBackup       `json:"users"`
	Reminders    []ReminderBackup   `json:"reminders"`
	Infants      []InfantBackup     `json:"infants"`
	Links        []LinkBackup       `json:"users_infants"`
	Invitations  []InvitationBackup `json:"invitations"`
	Feeds        []FeedBackup       `json:"feeds"`
	Diapers      []DiaperBackup     `json:"diapers"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"password_hash"`
	FirstName    string    `db:"first_name" json:"first_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ReminderBackup represents a reminders row
type ReminderBackup struct {
	UserID        int64  `db:"user_id" json:"user_id"`
	Enabled       bool   `db:"enabled" json:"enabled"`
	Hours         int    `db:"hours" json:"hours"`
	Minutes       int    `db:"minutes" json:"minutes"`
	CutoffEnabled bool   `db:"cutoff_enabled" json:"cutoff_enabled"`
	StartTime     string `db:"start_time" json:"start_time"`
	CutoffTime    string `db:"cutoff_time" json:"cutoff_time"`
	Timezone      string `db:"timezone" json:"timezone"`
}

// InfantBackup represents an infant record
type InfantBackup struct {
	ID        int64     `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	DOB       string    `db:"dob" json:"dob"`
	Gender    string    `db:"gender" json:"gender"`
	PublicID  *string   `db:"public_id" json:"public_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LinkBackup represents a users_infants row
type LinkBackup struct {
	UserID      int64 `db:"user_id" json:"user_id"`
	InfantID    int64 `db:"infant_id" json:"infant_id"`
	UserIsAdmin bool  `db:"user_is_admin" json:"user_is_admin"`
	Crud        bool  `db:"crud" json:"crud"`
	NotifyAdmin bool  `db:"notify_admin" json:"notify_admin"`
}

// InvitationBackup represents an invitation record
type InvitationBackup struct {
	ID         int64      `db:"id" json:"id"`
	Code       string     `db:"code" json:"code"`
	SentBy     *int64     `db:"sent_by" json:"sent_by"`
	InfantID   int64      `db:"infant_id" json:"infant_id"`
	Crud       bool       `db:"crud" json:"crud"`
	SentTo     string     `db:"sent_to" json:"sent_to"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	AcceptedAt *time.Time `db:"accepted_at" json:"accepted_at"`
}

// FeedBackup represents a feed record
type FeedBackup struct {
	ID       int64    `db:"id" json:"id"`
	Method   string   `db:"method" json:"method"`
	FedAt    int64    `db:"fed_at" json:"fed_at"`
	Amount   *float64 `db:"amount" json:"amount"`
	Duration *int     `db:"duration" json:"duration"`
	InfantID int64    `db:"infant_id" json:"infant_id"`
}

// DiaperBackup represents a diaper record
type DiaperBackup struct {
	ID        int64  `db:"id" json:"id"`
	Type      string `db:"type" json:"type"`
	Size      string `db:"size" json:"size"`
	ChangedAt int64  `db:"changed_at" json:"changed_at"`
	InfantID  int64  `db:"infant_id" json:"infant_id"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	x       *sqlx.DB
	dialect database.Dialect
	log     *zap.SugaredLogger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log *zap.SugaredLogger) *BackupService {
	return &BackupService{
		x:       sqlx.NewDb(db.DB, db.Dialect.DriverName()),
		dialect: db.Dialect,
		log:     log,
	}
}

// ExportToWriter writes every table as one JSON document
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	s.log.Info("Starting database export...")

	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.dialect.Name(),
	}

	exports := []struct {
		name  string
		dest  any
		query string
	}{
		{"users", &backup.Users, "SELECT id, email, password_hash, first_name, created_at FROM users ORDER BY id"},
		{"reminders", &backup.Reminders, "SELECT user_id, enabled, hours, minutes, cutoff_enabled, start_time, cutoff_time, timezone FROM reminders ORDER BY user_id"},
		{"infants", &backup.Infants, "SELECT id, first_name, dob, gender, public_id, created_at FROM infants ORDER BY id"},
		{"users_infants", &backup.Links, "SELECT user_id, infant_id, user_is_admin, crud, notify_admin FROM users_infants ORDER BY infant_id, user_id"},
		{"invitations", &backup.Invitations, "SELECT id, code, sent_by, infant_id, crud, sent_to, created_at, accepted_at FROM invitations ORDER BY id"},
		{"feeds", &backup.Feeds, "SELECT id, method, fed_at, amount, duration, infant_id FROM feeds ORDER BY id"},
		{"diapers", &backup.Diapers, "SELECT id, type, size, changed_at, infant_id FROM diapers ORDER BY id"},
	}
	for _, e := range exports {
		if err := s.x.SelectContext(ctx, e.dest, e.query); err != nil {
			return fmt.Errorf("failed to export %s: %w", e.name, err)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.Infow("Database exported",
		"users", len(backup.Users),
		"infants", len(backup.Infants),
		"feeds", len(backup.Feeds),
		"diapers", len(backup.Diapers))
	return nil
}

// ImportFromReader restores a backup into an empty database. Rows are copied
// as exported, in one transaction.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	s.log.Infow("Starting database import", "version", backup.Version, "exported_at", backup.ExportedAt)

	tx, err := s.x.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	imports := []struct {
		name string
		run  func() error
	}{
		{"users", func() error {
			return insertAll(ctx, tx, "INSERT INTO users (id, email, password_hash, first_name, created_at) VALUES (:id, :email, :password_hash, :first_name, :created_at)", backup.Users)
		}},
		{"reminders", func() error {
			return insertAll(ctx, tx, "INSERT INTO reminders (user_id, enabled, hours, minutes, cutoff_enabled, start_time, cutoff_time, timezone) VALUES (:user_id, :enabled, :hours, :minutes, :cutoff_enabled, :start_time, :cutoff_time, :timezone)", backup.Reminders)
		}},
		{"infants", func() error {
			return insertAll(ctx, tx, "INSERT INTO infants (id, first_name, dob, gender, public_id, created_at) VALUES (:id, :first_name, :dob, :gender, :public_id, :created_at)", backup.Infants)
		}},
		{"users_infants", func() error {
			return insertAll(ctx, tx, "INSERT INTO users_infants (user_id, infant_id, user_is_admin, crud, notify_admin) VALUES (:user_id, :infant_id, :user_is_admin, :crud, :notify_admin)", backup.Links)
		}},
		{"invitations", func() error {
			return insertAll(ctx, tx, "INSERT INTO invitations (id, code, sent_by, infant_id, crud, sent_to, created_at, accepted_at) VALUES (:id, :code, :sent_by, :infant_id, :crud, :sent_to, :created_at, :accepted_at)", backup.Invitations)
		}},
		{"feeds", func() error {
			return insertAll(ctx, tx, "INSERT INTO feeds (id, method, fed_at, amount, duration, infant_id) VALUES (:id, :method, :fed_at, :amount, :duration, :infant_id)", backup.Feeds)
		}},
		{"diapers", func() error {
			return insertAll(ctx, tx, "INSERT INTO diapers (id, type, size, changed_at, infant_id) VALUES (:id, :type, :size, :changed_at, :infant_id)", backup.Diapers)
		}},
	}
	for _, imp := range imports {
		if err := imp.run(); err != nil {
			return fmt.Errorf("failed to import %s: %w", imp.name, err)
		}
	}

	if s.dialect.Name() == "postgres" {
		for _, table := range []string{"users", "infants", "invitations", "feeds", "diapers"} {
			q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1)) FROM %[1]s", table)
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return fmt.Errorf("failed to reset %s sequence: %w", table, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	s.log.Infow("Database import completed",
		"users", len(backup.Users),
		"infants", len(backup.Infants),
		"feeds", len(backup.Feeds),
		"diapers", len(backup.Diapers))
	return nil
}

// backupTables is every table in reverse dependency order
var backupTables = []string{"diapers", "feeds", "invitations", "users_infants", "infants", "reminders", "users"}

// ClearAll deletes every row of every table, children first
func (s *BackupService) ClearAll(ctx context.Context) error {
	tx, err := s.x.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin clear: %w", err)
	}
	defer tx.Rollback()

	for _, table := range backupTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
		s.log.Debugw("Cleared table", "table", table)
	}
	return tx.Commit()
}

// insertAll runs a named insert once per row
func insertAll[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) error {
	for i := range rows {
		if _, err := tx.NamedExecContext(ctx, query, rows[i]); err != nil {
			return err
		}
	}
	return nil
}
