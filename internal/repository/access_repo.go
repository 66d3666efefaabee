package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bably/internal/database"
	"bably/internal/models"
)

// AccessRepository persists user-infant links
type AccessRepository struct {
	db database.DBTX
}

// NewAccessRepository creates a new access repository
func NewAccessRepository(db database.DBTX) *AccessRepository {
	return &AccessRepository{db: db}
}

// WithTx returns a copy bound to tx
func (r *AccessRepository) WithTx(tx database.DBTX) *AccessRepository {
	return &AccessRepository{db: tx}
}

var linkColumns = []string{"user_id", "infant_id", "user_is_admin", "crud", "notify_admin"}

// GetAuthorization resolves the link between the user with email and the
// infant. Returns nil when the user, the infant or the link is missing.
func (r *AccessRepository) GetAuthorization(ctx context.Context, email string, infantID int64) (*models.Authorization, error) {
	query := `
		SELECT ui.user_id, ui.infant_id, ui.user_is_admin, ui.crud, ui.notify_admin
		FROM users_infants ui
		INNER JOIN users u ON u.id = ui.user_id
		WHERE u.email = ? AND ui.infant_id = ?
	`
	return r.scanAuthorization(r.db.QueryRowContext(ctx, query, email, infantID))
}

// GetLink returns the link for a user id, or nil.
func (r *AccessRepository) GetLink(ctx context.Context, userID, infantID int64) (*models.Authorization, error) {
	query := `
		SELECT user_id, infant_id, user_is_admin, crud, notify_admin
		FROM users_infants
		WHERE user_id = ? AND infant_id = ?
	`
	return r.scanAuthorization(r.db.QueryRowContext(ctx, query, userID, infantID))
}

func (r *AccessRepository) scanAuthorization(row *sql.Row) (*models.Authorization, error) {
	var auth models.Authorization
	var isAdmin, crud bool
	err := row.Scan(&auth.UserID, &auth.InfantID, &isAdmin, &crud, &auth.NotifyAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization: %w", err)
	}
	auth.Role = models.RoleFromFlags(isAdmin, crud)
	return &auth, nil
}

// AddLink grants role on the infant unless a link already exists. It never
// modifies an existing row and reports whether a row was inserted.
func (r *AccessRepository) AddLink(ctx context.Context, userID, infantID int64, role models.Role) (bool, error) {
	isAdmin, crud := role.Flags()
	query := r.db.GetDialect().InsertIgnoreQuery("users_infants", linkColumns)
	result, err := r.db.ExecContext(ctx, query, userID, infantID, isAdmin, crud, false)
	if err != nil {
		return false, fmt.Errorf("failed to add link: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to add link: %w", err)
	}
	return n > 0, nil
}

// UpdateRole rewrites the role flags on an existing link
func (r *AccessRepository) UpdateRole(ctx context.Context, userID, infantID int64, role models.Role) error {
	isAdmin, crud := role.Flags()
	_, err := r.db.ExecContext(ctx,
		"UPDATE users_infants SET user_is_admin = ?, crud = ? WHERE user_id = ? AND infant_id = ?",
		isAdmin, crud, userID, infantID)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

// UpdateNotifyAdmin sets the notify flag on an existing link
func (r *AccessRepository) UpdateNotifyAdmin(ctx context.Context, userID, infantID int64, notify bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users_infants SET notify_admin = ? WHERE user_id = ? AND infant_id = ?",
		notify, userID, infantID)
	if err != nil {
		return fmt.Errorf("failed to update notify flag: %w", err)
	}
	return nil
}

// RemoveLink deletes the link only; events stay with the infant.
func (r *AccessRepository) RemoveLink(ctx context.Context, userID, infantID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM users_infants WHERE user_id = ? AND infant_id = ?", userID, infantID)
	if err != nil {
		return false, fmt.Errorf("failed to remove link: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove link: %w", err)
	}
	return n > 0, nil
}

// ListUsers returns everyone linked to the infant except excludeUserID
func (r *AccessRepository) ListUsers(ctx context.Context, infantID, excludeUserID int64) ([]models.InfantUser, error) {
	query := `
		SELECT u.first_name, ui.user_id, ui.infant_id, ui.user_is_admin, ui.crud, ui.notify_admin
		FROM users_infants ui
		INNER JOIN users u ON u.id = ui.user_id
		WHERE ui.infant_id = ? AND ui.user_id <> ?
		ORDER BY ui.user_is_admin DESC, u.first_name
	`
	rows, err := r.db.QueryContext(ctx, query, infantID, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.InfantUser{}
	for rows.Next() {
		var u models.InfantUser
		if err := rows.Scan(&u.UserName, &u.UserID, &u.InfantID, &u.UserIsAdmin, &u.Crud, &u.NotifyAdmin); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListAdminEmails returns the emails of the infant's admins, minus excludeUserID
func (r *AccessRepository) ListAdminEmails(ctx context.Context, infantID, excludeUserID int64) ([]string, error) {
	query := `
		SELECT u.email
		FROM users_infants ui
		INNER JOIN users u ON u.id = ui.user_id
		WHERE ui.infant_id = ? AND ui.user_is_admin = ? AND ui.user_id <> ?
	`
	rows, err := r.db.QueryContext(ctx, query, infantID, true, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
