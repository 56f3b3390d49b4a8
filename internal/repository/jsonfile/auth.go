package jsonfile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"
)

// UserRepository implements repositories.UserRepository on the JSON document
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a user repository
func NewUserRepository(store *Store) repositories.UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.store.update(func(doc *document) error {
		if userIndex(doc.Auth.Users, user.Email) >= 0 {
			return fmt.Errorf("user %s: %w", user.Email, domain.ErrEmailExists)
		}
		doc.Auth.Users = append(doc.Auth.Users, *user)
		return nil
	})
}

// GetByEmail finds a user ignoring email case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := r.store.view(func(doc *document) error {
		i := userIndex(doc.Auth.Users, email)
		if i < 0 {
			return fmt.Errorf("user %s: %w", email, domain.ErrUserNotFound)
		}
		u := doc.Auth.Users[i]
		user = &u
		return nil
	})
	return user, err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	err := r.store.view(func(doc *document) error {
		for _, u := range doc.Auth.Users {
			if u.ID == id {
				found := u
				user = &found
				return nil
			}
		}
		return fmt.Errorf("user %s: %w", id, domain.ErrUserNotFound)
	})
	return user, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return r.store.update(func(doc *document) error {
		i := userIndex(doc.Auth.Users, email)
		if i < 0 {
			return fmt.Errorf("user %s: %w", email, domain.ErrUserNotFound)
		}
		doc.Auth.Users[i].PasswordHash = passwordHash
		return nil
	})
}

func (r *UserRepository) UpdateUsername(ctx context.Context, email, username string) (*models.User, error) {
	var user *models.User
	err := r.store.update(func(doc *document) error {
		i := userIndex(doc.Auth.Users, email)
		if i < 0 {
			return fmt.Errorf("user %s: %w", email, domain.ErrUserNotFound)
		}
		doc.Auth.Users[i].Username = username
		u := doc.Auth.Users[i]
		user = &u
		return nil
	})
	return user, err
}

func userIndex(users []models.User, email string) int {
	for i, u := range users {
		if strings.EqualFold(u.Email, email) {
			return i
		}
	}
	return -1
}

// ResetTokenRepository implements repositories.ResetTokenRepository on the JSON document
type ResetTokenRepository struct {
	store *Store
}

// NewResetTokenRepository creates a reset token repository
func NewResetTokenRepository(store *Store) repositories.ResetTokenRepository {
	return &ResetTokenRepository{store: store}
}

func (r *ResetTokenRepository) Create(ctx context.Context, token *models.ResetToken) error {
	return r.store.update(func(doc *document) error {
		doc.Auth.ResetTokens = append(doc.Auth.ResetTokens, resetTokenRecord{
			Token:     token.Token,
			Email:     token.Email,
			ExpiresAt: token.ExpiresAt.UnixMilli(),
		})
		return nil
	})
}

func (r *ResetTokenRepository) Get(ctx context.Context, token string) (*models.ResetToken, error) {
	var found *models.ResetToken
	err := r.store.view(func(doc *document) error {
		for _, t := range doc.Auth.ResetTokens {
			if t.Token == token {
				found = &models.ResetToken{
					Token:     t.Token,
					Email:     t.Email,
					ExpiresAt: time.UnixMilli(t.ExpiresAt),
				}
				return nil
			}
		}
		return fmt.Errorf("reset token: %w", domain.ErrTokenInvalid)
	})
	return found, err
}

func (r *ResetTokenRepository) Delete(ctx context.Context, token string) error {
	return r.store.update(func(doc *document) error {
		kept := doc.Auth.ResetTokens[:0]
		for _, t := range doc.Auth.ResetTokens {
			if t.Token != token {
				kept = append(kept, t)
			}
		}
		doc.Auth.ResetTokens = kept
		return nil
	})
}

func (r *ResetTokenRepository) Consume(ctx context.Context, token string) (*models.ResetToken, error) {
	var found *models.ResetToken
	err := r.store.update(func(doc *document) error {
		for i, t := range doc.Auth.ResetTokens {
			if t.Token == token {
				found = &models.ResetToken{
					Token:     t.Token,
					Email:     t.Email,
					ExpiresAt: time.UnixMilli(t.ExpiresAt),
				}
				doc.Auth.ResetTokens = append(doc.Auth.ResetTokens[:i], doc.Auth.ResetTokens[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("reset token: %w", domain.ErrTokenInvalid)
	})
	return found, err
}
