package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Members     string
	Settings    string
	Users       string
	ResetTokens string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Members:     fmt.Sprintf("%smembers", prefix),
		Settings:    fmt.Sprintf("%ssettings", prefix),
		Users:       fmt.Sprintf("%susers", prefix),
		ResetTokens: fmt.Sprintf("%sreset_tokens", prefix),
	}
}

// All returns every table, dependents first
func (t *TableNames) All() []string {
	return []string{t.ResetTokens, t.Users, t.Settings, t.Members}
}

// CreateConnectionPool creates a pgx pool.
//
// Port 6543 is the Supabase transaction pooler (PgBouncer), which does not support
// prepared statements. For that port the pool switches to QueryExecModeCacheDescribe
// unless default_query_exec_mode was set explicitly in the connection string.
// Table names are interpolated with fmt.Sprintf before statements are prepared, so
// each prefix gets its own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
