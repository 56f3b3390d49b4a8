package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"familytree/internal/domain"
	"familytree/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userDoc adds the folded email used for case-insensitive lookups
type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	EmailCI      string    `bson:"email_ci"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDoc) user() *models.User {
	return &models.User{
		ID:           d.ID,
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

func fold(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserStore implements repositories.UserRepository
type UserStore struct {
	c *mongo.Collection
}

// EnsureIndexes creates the unique folded email index.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_ci", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_user_email_ci"),
	})
	return err
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	doc := userDoc{
		ID:           user.ID,
		Email:        user.Email,
		EmailCI:      fold(user.Email),
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", user.Email, domain.ErrEmailExists)
		}
		return storageError("create user", err)
	}
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email_ci": fold(email)}, email)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id}, id)
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M, label string) (*models.User, error) {
	var doc userDoc
	if err := s.c.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", label, domain.ErrUserNotFound)
		}
		return nil, storageError("get user", err)
	}
	return doc.user(), nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"email_ci": fold(email)}, bson.M{"$set": bson.M{"password_hash": passwordHash}})
	if err != nil {
		return storageError("update password", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", email, domain.ErrUserNotFound)
	}
	return nil
}

func (s *UserStore) UpdateUsername(ctx context.Context, email, username string) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	err := s.c.FindOneAndUpdate(ctx, bson.M{"email_ci": fold(email)}, bson.M{"$set": bson.M{"username": username}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", email, domain.ErrUserNotFound)
		}
		return nil, storageError("update username", err)
	}
	return doc.user(), nil
}

// ResetTokenStore implements repositories.ResetTokenRepository
type ResetTokenStore struct {
	c *mongo.Collection
}

// EnsureIndexes lets MongoDB purge tokens once they expire.
func (s *ResetTokenStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_reset_token_ttl"),
	})
	return err
}

func (s *ResetTokenStore) Create(ctx context.Context, token *models.ResetToken) error {
	if _, err := s.c.InsertOne(ctx, token); err != nil {
		return storageError("create reset token", err)
	}
	return nil
}

func (s *ResetTokenStore) Get(ctx context.Context, token string) (*models.ResetToken, error) {
	var t models.ResetToken
	if err := s.c.FindOne(ctx, bson.M{"_id": token}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("reset token: %w", domain.ErrTokenInvalid)
		}
		return nil, storageError("get reset token", err)
	}
	return &t, nil
}

func (s *ResetTokenStore) Consume(ctx context.Context, token string) (*models.ResetToken, error) {
	var t models.ResetToken
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": token}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("reset token: %w", domain.ErrTokenInvalid)
		}
		return nil, storageError("consume reset token", err)
	}
	return &t, nil
}

func (s *ResetTokenStore) Delete(ctx context.Context, token string) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return storageError("delete reset token", err)
	}
	return nil
}
