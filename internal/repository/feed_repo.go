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

var feedColumns = []string{"id", "method", "fed_at", "amount", "duration", "infant_id"}

// FeedRepository stores feed events
type FeedRepository struct {
	db database.DBTX
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db database.DBTX) *FeedRepository {
	return &FeedRepository{db: db}
}

// Create inserts a feed and fills in its ID
func (r *FeedRepository) Create(ctx context.Context, feed *models.Feed) error {
	query := `
		INSERT INTO feeds (method, fed_at, amount, duration, infant_id)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, feed.Method, feed.FedAt, feed.Amount, feed.Duration, feed.InfantID)
	if err != nil {
		return fmt.Errorf("failed to create feed: %w", err)
	}
	feed.ID = id
	return nil
}

// Get returns the feed when it exists and belongs to infantID
func (r *FeedRepository) Get(ctx context.Context, infantID, id int64) (*models.Feed, error) {
	query, args, err := sq.Select(feedColumns...).
		From("feeds").
		Where(sq.Eq{"id": id, "infant_id": infantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build feed query: %w", err)
	}

	feed, err := scanFeed(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	return feed, nil
}

// Update applies the set patch fields and returns the stored row, or nil
// when no feed matched.
func (r *FeedRepository) Update(ctx context.Context, infantID, id int64, patch models.FeedPatch) (*models.Feed, error) {
	query, args, err := sq.Update("feeds").
		SetMap(patch.Columns()).
		Where(sq.Eq{"id": id, "infant_id": infantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build feed update: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update feed: %w", err)
	}
	return r.Get(ctx, infantID, id)
}

// Delete removes a feed and reports whether one matched
func (r *FeedRepository) Delete(ctx context.Context, infantID, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM feeds WHERE id = ? AND infant_id = ?", id, infantID)
	if err != nil {
		return false, fmt.Errorf("failed to delete feed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete feed: %w", err)
	}
	return n > 0, nil
}

// ListInWindow returns feeds with start < fed_at < end, newest first
func (r *FeedRepository) ListInWindow(ctx context.Context, infantID, start, end int64) ([]models.Feed, error) {
	query, args, err := sq.Select(feedColumns...).
		From("feeds").
		Where(sq.Eq{"infant_id": infantID}).
		Where(sq.Gt{"fed_at": start}).
		Where(sq.Lt{"fed_at": end}).
		OrderBy("fed_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build feed query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	feeds := []models.Feed{}
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}
	return feeds, rows.Err()
}

// LatestFedAt returns the most recent fed_at for the infant, or false when
// no feeds exist.
func (r *FeedRepository) LatestFedAt(ctx context.Context, infantID int64) (int64, bool, error) {
	var latest sql.NullInt64
	err := r.db.QueryRowContext(ctx, "SELECT MAX(fed_at) FROM feeds WHERE infant_id = ?", infantID).Scan(&latest)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get latest feed: %w", err)
	}
	return latest.Int64, latest.Valid, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeed(s scanner) (*models.Feed, error) {
	var f models.Feed
	var amount sql.NullFloat64
	var duration sql.NullInt64
	if err := s.Scan(&f.ID, &f.Method, &f.FedAt, &amount, &duration, &f.InfantID); err != nil {
		return nil, err
	}
	if amount.Valid {
		a := amount.Float64
		f.Amount = &a
	}
	if duration.Valid {
		d := int(duration.Int64)
		f.Duration = &d
	}
	return &f, nil
}
