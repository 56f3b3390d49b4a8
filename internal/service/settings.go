package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"familytree/internal/config"
	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"
	"familytree/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// imageSettings hold image references and get a kind when written
var imageSettings = map[string]bool{
	models.SettingBackground: true,
	models.SettingLogo:       true,
}

// settingsService implements the SettingsService interface
type settingsService struct {
	settingsRepo repositories.SettingsRepository
	uploadPrefix string
	logger       *slog.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(
	settingsRepo repositories.SettingsRepository,
	uploadPrefix string,
	logger *slog.Logger,
) services.SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		uploadPrefix: uploadPrefix,
		logger:       logger,
	}
}

func (s *settingsService) GetSettings(ctx context.Context) (*models.SettingsView, error) {
	settings, err := s.settingsRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewSettingsView(settings), nil
}

// PutSetting upserts a single key
func (s *settingsService) PutSetting(ctx context.Context, req *models.PutSettingRequest) (*models.SettingsView, error) {
	key := strings.TrimSpace(req.Key)
	err := validation.Validate(key,
		validation.Required.Error("key is required"),
		validation.Length(1, config.MaxSettingKeyLength),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	setting := &models.Setting{
		Key:       key,
		Value:     req.Value,
		UpdatedAt: time.Now().UTC(),
	}

	if strings.TrimSpace(req.Value) != "" && (req.Kind != "" || imageSettings[key]) {
		ref, err := models.NewImageRef(req.Value, req.Kind, s.uploadPrefix)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		setting.Value = ref.Value
		setting.Kind = ref.Kind
	}

	if err := s.settingsRepo.Upsert(ctx, setting); err != nil {
		return nil, err
	}

	s.logger.Info("setting updated",
		"key", setting.Key,
		"kind", setting.Kind,
	)

	return s.GetSettings(ctx)
}
