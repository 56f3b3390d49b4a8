package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables and indexes if they do not exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id TEXT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				image_url TEXT NOT NULL DEFAULT '',
				image_kind TEXT NOT NULL DEFAULT '',
				parent_id TEXT REFERENCES %[1]s(id) ON DELETE RESTRICT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Members),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_parent_id_idx ON %[1]s (parent_id)`, tables.Members),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_created_at_idx ON %[1]s (created_at)`, tables.Members),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				key VARCHAR(100) PRIMARY KEY,
				value TEXT NOT NULL DEFAULT '',
				kind TEXT NOT NULL DEFAULT '',
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Settings),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL,
				username VARCHAR(100) NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Users),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %[1]s_email_lower_idx ON %[1]s (lower(email))`, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				token TEXT PRIMARY KEY,
				email TEXT NOT NULL,
				expires_at TIMESTAMPTZ NOT NULL
			)`, tables.ResetTokens),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// DropSchema drops every table
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range tables.All() {
		if _, err := pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearData removes members and settings, keeping accounts
func ClearData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	query := fmt.Sprintf(`TRUNCATE %s, %s`, tables.Members, tables.Settings)
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
