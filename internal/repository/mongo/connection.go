// Package mongo stores members, settings and accounts in MongoDB collections.
package mongo

import (
	"context"
	"fmt"
	"time"

	"familytree/internal/domain/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names; the table prefix is prepended
const (
	membersCollection     = "members"
	settingsCollection    = "settings"
	usersCollection       = "users"
	resetTokensCollection = "reset_tokens"
)

var (
	_ repositories.MemberRepository     = (*MemberStore)(nil)
	_ repositories.SettingsRepository   = (*SettingsStore)(nil)
	_ repositories.UserRepository       = (*UserStore)(nil)
	_ repositories.ResetTokenRepository = (*ResetTokenStore)(nil)
)

// Connect opens a client and verifies the server is reachable
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Stores bundles every collection-backed repository of one database
type Stores struct {
	Members     *MemberStore
	Settings    *SettingsStore
	Users       *UserStore
	ResetTokens *ResetTokenStore
}

// New creates the stores; prefix separates environments sharing a database
func New(db *mongo.Database, prefix string) *Stores {
	return &Stores{
		Members:     &MemberStore{c: db.Collection(prefix + membersCollection)},
		Settings:    &SettingsStore{c: db.Collection(prefix + settingsCollection)},
		Users:       &UserStore{c: db.Collection(prefix + usersCollection)},
		ResetTokens: &ResetTokenStore{c: db.Collection(prefix + resetTokensCollection)},
	}
}

// EnsureIndexes creates the indexes of every collection
func (s *Stores) EnsureIndexes(ctx context.Context) error {
	if err := s.Members.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("member indexes: %w", err)
	}
	if err := s.Users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	if err := s.ResetTokens.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("reset token indexes: %w", err)
	}
	return nil
}

// Clear removes members and settings, keeping accounts
func (s *Stores) Clear(ctx context.Context) error {
	if _, err := s.Members.c.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear members: %w", err)
	}
	if _, err := s.Settings.c.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	return nil
}

// Drop removes every collection
func (s *Stores) Drop(ctx context.Context) error {
	for _, c := range []*mongo.Collection{s.Members.c, s.Settings.c, s.Users.c, s.ResetTokens.c} {
		if err := c.Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", c.Name(), err)
		}
	}
	return nil
}
