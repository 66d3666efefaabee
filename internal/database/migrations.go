package database

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// RunMigrations executes every pending .sql file found under the dialect's
// subdirectory of fsys, in filename order.
func (db *DB) RunMigrations(ctx context.Context, fsys fs.FS, log *zap.SugaredLogger) error {
	if _, err := db.ExecContext(ctx, db.Dialect.CreateMigrationsTableQuery()); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	dir := db.Dialect.MigrationsSubdir()
	files, err := fs.Glob(fsys, path.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		filename := path.Base(file)

		hasRun, err := db.hasMigrationRun(ctx, filename)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if hasRun {
			continue
		}

		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		if err := db.executeMigration(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO migrations (filename) VALUES (?)", filename); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", filename, err)
		}

		log.Infof("Migration completed: %s", filename)
	}

	return nil
}

func (db *DB) hasMigrationRun(ctx context.Context, filename string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// executeMigration runs each statement separately. The MySQL driver rejects
// multi-statement strings unless the DSN opts in.
func (db *DB) executeMigration(ctx context.Context, content string) error {
	for _, stmt := range splitStatements(content) {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func splitStatements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				lines = append(lines, line)
			}
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
