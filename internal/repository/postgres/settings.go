package postgres

import (
	"context"
	"fmt"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSettingsRepository implements the SettingsRepository interface
type PostgresSettingsRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(config *RepositoryConfig) repositories.SettingsRepository {
	return &PostgresSettingsRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// List returns all settings ordered by key
func (r *PostgresSettingsRepository) List(ctx context.Context) ([]models.Setting, error) {
	query := fmt.Sprintf(`SELECT key, value, kind, updated_at FROM %s ORDER BY key`, r.tables.Settings)

	executor := executorFor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, storageError("list settings", err)
	}
	defer rows.Close()

	settings := []models.Setting{}
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Kind, &s.UpdatedAt); err != nil {
			return nil, storageError("scan setting", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate settings", err)
	}

	return settings, nil
}

func (r *PostgresSettingsRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	query := fmt.Sprintf(`SELECT key, value, kind, updated_at FROM %s WHERE key = $1`, r.tables.Settings)

	var s models.Setting
	executor := executorFor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, key).Scan(&s.Key, &s.Value, &s.Kind, &s.UpdatedAt); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("setting %s: %w", key, domain.ErrNotFound)
		}
		return nil, storageError("get setting", err)
	}
	return &s, nil
}

// Upsert inserts or replaces a setting
func (r *PostgresSettingsRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, kind, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, kind = EXCLUDED.kind, updated_at = EXCLUDED.updated_at
	`, r.tables.Settings)

	executor := executorFor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, setting.Key, setting.Value, setting.Kind, setting.UpdatedAt); err != nil {
		return storageError("upsert setting", err)
	}
	return nil
}
