package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bably/internal/database"
	"bably/internal/models"
)

// InvitationRepository handles pending invitations for unregistered emails
type InvitationRepository struct {
	db database.DBTX
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db database.DBTX) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// CreateInvitation stores a new invitation with a fresh code
func (r *InvitationRepository) CreateInvitation(ctx context.Context, sentBy, infantID int64, crud bool, sentTo string) (*models.Invitation, error) {
	inv := &models.Invitation{
		Code:      uuid.NewString(),
		SentBy:    sentBy,
		InfantID:  infantID,
		Crud:      crud,
		SentTo:    sentTo,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO invitations (code, sent_by, infant_id, crud, sent_to)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, inv.Code, inv.SentBy, inv.InfantID, inv.Crud, inv.SentTo)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	inv.ID = id
	return inv, nil
}

// ListPendingByEmail returns unaccepted invitations addressed to email, oldest first
func (r *InvitationRepository) ListPendingByEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	query := `
		SELECT id, code, sent_by, infant_id, crud, sent_to
		FROM invitations
		WHERE sent_to = ? AND accepted_at IS NULL
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		var sentBy sql.NullInt64
		if err := rows.Scan(&inv.ID, &inv.Code, &sentBy, &inv.InfantID, &inv.Crud, &inv.SentTo); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		inv.SentBy = sentBy.Int64
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// MarkAccepted stamps the invitation as resolved
func (r *InvitationRepository) MarkAccepted(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE invitations SET accepted_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	return nil
}
