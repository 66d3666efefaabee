package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bably/internal/database"
	"bably/internal/models"
)

// UserRepository handles database operations for users and their reminders
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

var reminderColumns = []string{
	"user_id", "enabled", "hours", "minutes", "cutoff_enabled", "start_time", "cutoff_time", "timezone",
}

// CreateUser inserts a user together with default reminder settings.
// Returns ErrDuplicate when the email is taken.
func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash, firstName string) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, email, passwordHash, firstName)
	if database.IsUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := r.insertDefaultReminders(ctx, id); err != nil {
		return nil, err
	}

	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		CreatedAt:    time.Now(),
	}, nil
}

func (r *UserRepository) insertDefaultReminders(ctx context.Context, userID int64) error {
	d := models.DefaultReminders()
	query := r.db.GetDialect().InsertIgnoreQuery("reminders", reminderColumns)
	_, err := r.db.ExecContext(ctx, query,
		userID, d.Enabled, d.Hours, d.Minutes, d.CutoffEnabled, d.Start, d.Cutoff, d.Timezone)
	if err != nil {
		return fmt.Errorf("failed to create reminders: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, first_name
		FROM users
		WHERE email = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, first_name
		FROM users
		WHERE id = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GetReminders returns the user's reminder settings, or defaults when no
// row exists yet.
func (r *UserRepository) GetReminders(ctx context.Context, userID int64) (models.Reminders, error) {
	query := `
		SELECT enabled, hours, minutes, cutoff_enabled, start_time, cutoff_time, timezone
		FROM reminders
		WHERE user_id = ?
	`
	var rem models.Reminders
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&rem.Enabled, &rem.Hours, &rem.Minutes, &rem.CutoffEnabled, &rem.Start, &rem.Cutoff, &rem.Timezone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultReminders(), nil
	}
	if err != nil {
		return models.Reminders{}, fmt.Errorf("failed to get reminders: %w", err)
	}
	return rem, nil
}

// UpdateReminders stores the user's reminder settings.
func (r *UserRepository) UpdateReminders(ctx context.Context, userID int64, rem models.Reminders) error {
	if err := r.insertDefaultReminders(ctx, userID); err != nil {
		return err
	}

	query := `
		UPDATE reminders
		SET enabled = ?, hours = ?, minutes = ?, cutoff_enabled = ?, start_time = ?, cutoff_time = ?, timezone = ?
		WHERE user_id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		rem.Enabled, rem.Hours, rem.Minutes, rem.CutoffEnabled, rem.Start, rem.Cutoff, rem.Timezone, userID)
	if err != nil {
		return fmt.Errorf("failed to update reminders: %w", err)
	}
	return nil
}
