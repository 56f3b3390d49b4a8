package jsonfile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"
)

// SettingsRepository implements repositories.SettingsRepository on the JSON document
type SettingsRepository struct {
	store *Store
}

// NewSettingsRepository creates a settings repository
func NewSettingsRepository(store *Store) repositories.SettingsRepository {
	return &SettingsRepository{store: store}
}

// List returns settings sorted by key
func (r *SettingsRepository) List(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	err := r.store.view(func(doc *document) error {
		settings = make([]models.Setting, 0, len(doc.Settings))
		for key := range doc.Settings {
			settings = append(settings, settingFromDoc(doc, key))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting *models.Setting
	err := r.store.view(func(doc *document) error {
		if _, ok := doc.Settings[key]; !ok {
			return fmt.Errorf("setting %s: %w", key, domain.ErrNotFound)
		}
		s := settingFromDoc(doc, key)
		setting = &s
		return nil
	})
	return setting, err
}

// Upsert writes the value, replacing any previous one
func (r *SettingsRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	return r.store.update(func(doc *document) error {
		doc.Settings[setting.Key] = setting.Value

		if setting.Kind != "" {
			if doc.SettingKinds == nil {
				doc.SettingKinds = map[string]models.ImageKind{}
			}
			doc.SettingKinds[setting.Key] = setting.Kind
		} else {
			delete(doc.SettingKinds, setting.Key)
		}

		if doc.SettingTimes == nil {
			doc.SettingTimes = map[string]string{}
		}
		doc.SettingTimes[setting.Key] = setting.UpdatedAt.UTC().Format(time.RFC3339Nano)
		return nil
	})
}

func settingFromDoc(doc *document, key string) models.Setting {
	s := models.Setting{Key: key, Value: doc.Settings[key], Kind: doc.SettingKinds[key]}
	if ts, ok := doc.SettingTimes[key]; ok {
		s.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	}
	return s
}
