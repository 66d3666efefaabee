package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"bably/internal/database"
	"bably/internal/models"
)

var diaperColumns = []string{"id", "type", "size", "changed_at", "infant_id"}

// DiaperRepository stores diaper events
type DiaperRepository struct {
	db database.DBTX
}

// NewDiaperRepository creates a new diaper repository
func NewDiaperRepository(db database.DBTX) *DiaperRepository {
	return &DiaperRepository{db: db}
}

// Create inserts a diaper change and fills in its ID
func (r *DiaperRepository) Create(ctx context.Context, diaper *models.Diaper) error {
	query := `
		INSERT INTO diapers (type, size, changed_at, infant_id)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, diaper.Type, diaper.Size, diaper.ChangedAt, diaper.InfantID)
	if err != nil {
		return fmt.Errorf("failed to create diaper: %w", err)
	}
	diaper.ID = id
	return nil
}

// Get returns the diaper when it exists and belongs to infantID
func (r *DiaperRepository) Get(ctx context.Context, infantID, id int64) (*models.Diaper, error) {
	query, args, err := sq.Select(diaperColumns...).
		From("diapers").
		Where(sq.Eq{"id": id, "infant_id": infantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build diaper query: %w", err)
	}

	var d models.Diaper
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&d.ID, &d.Type, &d.Size, &d.ChangedAt, &d.InfantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diaper: %w", err)
	}
	return &d, nil
}

// Update applies the set patch fields and returns the stored row
func (r *DiaperRepository) Update(ctx context.Context, infantID, id int64, patch models.DiaperPatch) (*models.Diaper, error) {
	query, args, err := sq.Update("diapers").
		SetMap(patch.Columns()).
		Where(sq.Eq{"id": id, "infant_id": infantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build diaper update: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update diaper: %w", err)
	}
	return r.Get(ctx, infantID, id)
}

// Delete removes a diaper change and reports whether one matched
func (r *DiaperRepository) Delete(ctx context.Context, infantID, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM diapers WHERE id = ? AND infant_id = ?", id, infantID)
	if err != nil {
		return false, fmt.Errorf("failed to delete diaper: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete diaper: %w", err)
	}
	return n > 0, nil
}

// ListInWindow returns diapers with start < changed_at < end, newest first
func (r *DiaperRepository) ListInWindow(ctx context.Context, infantID, start, end int64) ([]models.Diaper, error) {
	query, args, err := sq.Select(diaperColumns...).
		From("diapers").
		Where(sq.Eq{"infant_id": infantID}).
		Where(sq.Gt{"changed_at": start}).
		Where(sq.Lt{"changed_at": end}).
		OrderBy("changed_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build diaper query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list diapers: %w", err)
	}
	defer rows.Close()

	diapers := []models.Diaper{}
	for rows.Next() {
		var d models.Diaper
		if err := rows.Scan(&d.ID, &d.Type, &d.Size, &d.ChangedAt, &d.InfantID); err != nil {
			return nil, fmt.Errorf("failed to scan diaper: %w", err)
		}
		diapers = append(diapers, d)
	}
	return diapers, rows.Err()
}
