package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bably/migrations"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "bably.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations(context.Background(), migrations.FS, zap.NewNop().Sugar()))
	return db
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RunMigrations(ctx, migrations.FS, zap.NewNop().Sugar()))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestExecReturningIDAndInsertIgnore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	userID, err := db.ExecReturningID(ctx,
		"INSERT INTO users (email, password_hash, first_name) VALUES (?, ?, ?)",
		"parent@example.com", "hash", "Parent")
	require.NoError(t, err)
	assert.Positive(t, userID)

	infantID, err := db.ExecReturningID(ctx,
		"INSERT INTO infants (first_name, dob, gender) VALUES (?, ?, ?)",
		"Baby", "2024-01-01", "female")
	require.NoError(t, err)

	query := db.Dialect.InsertIgnoreQuery("users_infants", []string{"user_id", "infant_id", "crud"})

	res, err := db.ExecContext(ctx, query, userID, infantID, true)
	require.NoError(t, err)
	n, _ := res.RowsAffected()
	assert.EqualValues(t, 1, n)

	res, err = db.ExecContext(ctx, query, userID, infantID, false)
	require.NoError(t, err)
	n, _ = res.RowsAffected()
	assert.EqualValues(t, 0, n)

	var crud bool
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT crud FROM users_infants WHERE user_id = ? AND infant_id = ?", userID, infantID).Scan(&crud))
	assert.True(t, crud)
}

func TestWithTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecReturningID(ctx,
			"INSERT INTO infants (first_name, dob, gender) VALUES (?, ?, ?)", "Baby", "2024-01-01", "male"); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM infants").Scan(&count))
	assert.Zero(t, count)
}
