package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bably/internal/database"
	"bably/internal/models"
)

// InfantRepository handles database operations for infant profiles
type InfantRepository struct {
	db database.DBTX
}

// NewInfantRepository creates a new infant repository
func NewInfantRepository(db database.DBTX) *InfantRepository {
	return &InfantRepository{db: db}
}

// WithTx returns a copy bound to tx
func (r *InfantRepository) WithTx(tx database.DBTX) *InfantRepository {
	return &InfantRepository{db: tx}
}

// CreateInfant inserts a new infant profile
func (r *InfantRepository) CreateInfant(ctx context.Context, infant *models.Infant) error {
	query := `
		INSERT INTO infants (first_name, dob, gender, public_id)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, infant.FirstName, infant.DOB, infant.Gender, infant.PublicID)
	if err != nil {
		return fmt.Errorf("failed to create infant: %w", err)
	}
	infant.ID = id
	return nil
}

// GetInfant retrieves an infant by ID
func (r *InfantRepository) GetInfant(ctx context.Context, id int64) (*models.Infant, error) {
	query := `
		SELECT id, first_name, dob, gender, public_id
		FROM infants
		WHERE id = ?
	`
	infant := &models.Infant{}
	var publicID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&infant.ID, &infant.FirstName, &infant.DOB, &infant.Gender, &publicID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get infant: %w", err)
	}
	infant.PublicID = nullString(publicID)
	return infant, nil
}

// UpdateInfant overwrites the editable profile fields
func (r *InfantRepository) UpdateInfant(ctx context.Context, infant *models.Infant) error {
	query := `
		UPDATE infants
		SET first_name = ?, dob = ?, gender = ?, public_id = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query, infant.FirstName, infant.DOB, infant.Gender, infant.PublicID, infant.ID)
	if err != nil {
		return fmt.Errorf("failed to update infant: %w", err)
	}
	return nil
}

// ListInfantsForUser returns every infant linked to the user along with the
// user's flags on each.
func (r *InfantRepository) ListInfantsForUser(ctx context.Context, userID int64) ([]models.InfantProfile, error) {
	query := `
		SELECT i.id, i.first_name, i.dob, i.gender, i.public_id,
		       ui.user_is_admin, ui.crud, ui.notify_admin
		FROM infants i
		INNER JOIN users_infants ui ON i.id = ui.infant_id
		WHERE ui.user_id = ?
		ORDER BY i.id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list infants: %w", err)
	}
	defer rows.Close()

	infants := []models.InfantProfile{}
	for rows.Next() {
		var p models.InfantProfile
		var publicID sql.NullString
		if err := rows.Scan(&p.ID, &p.FirstName, &p.DOB, &p.Gender, &publicID,
			&p.UserIsAdmin, &p.Crud, &p.NotifyAdmin); err != nil {
			return nil, fmt.Errorf("failed to scan infant: %w", err)
		}
		p.PublicID = nullString(publicID)
		infants = append(infants, p)
	}
	return infants, rows.Err()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
