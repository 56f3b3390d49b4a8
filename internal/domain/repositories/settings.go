package repositories

import (
	"context"

	"familytree/internal/domain/models"
)

// SettingsRepository stores key/value application settings
type SettingsRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	// Upsert creates or replaces the setting with the same key
	Upsert(ctx context.Context, setting *models.Setting) error
}
