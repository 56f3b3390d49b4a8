package mongo

import (
	"context"
	"errors"
	"fmt"

	"familytree/internal/domain"
	"familytree/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsStore implements repositories.SettingsRepository
type SettingsStore struct {
	c *mongo.Collection
}

// List returns settings sorted by key.
func (s *SettingsStore) List(ctx context.Context) ([]models.Setting, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storageError("list settings", err)
	}
	defer cur.Close(ctx)

	settings := []models.Setting{}
	if err := cur.All(ctx, &settings); err != nil {
		return nil, storageError("decode settings", err)
	}
	return settings, nil
}

func (s *SettingsStore) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := s.c.FindOne(ctx, bson.M{"_id": key}).Decode(&setting); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("setting %s: %w", key, domain.ErrNotFound)
		}
		return nil, storageError("get setting", err)
	}
	return &setting, nil
}

// Upsert sets the value of key, creating the document if needed.
func (s *SettingsStore) Upsert(ctx context.Context, setting *models.Setting) error {
	update := bson.M{
		"$set": bson.M{
			"value":      setting.Value,
			"kind":       setting.Kind,
			"updated_at": setting.UpdatedAt,
		},
	}
	_, err := s.c.UpdateByID(ctx, setting.Key, update, options.Update().SetUpsert(true))
	if err != nil {
		return storageError("upsert setting", err)
	}
	return nil
}
