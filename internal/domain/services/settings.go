package services

import (
	"context"

	"familytree/internal/domain/models"
)

// SettingsService manages application settings
type SettingsService interface {
	GetSettings(ctx context.Context) (*models.SettingsView, error)
	// PutSetting upserts one key and returns the full settings afterwards
	PutSetting(ctx context.Context, req *models.PutSettingRequest) (*models.SettingsView, error)
}
