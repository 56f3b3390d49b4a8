// Package jsonfile persists members, settings and accounts in a single JSON document.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
)

// document is the decoded file; read and write own the on-disk field names
type document struct {
	Members      []models.Member
	Settings     map[string]string
	SettingKinds map[string]models.ImageKind
	SettingTimes map[string]string
	Auth         authSection
}

type authSection struct {
	Users       []models.User
	ResetTokens []resetTokenRecord
}

// resetTokenRecord stores the expiry as unix milliseconds
type resetTokenRecord struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expiresAt"`
}

// userRecord adds the password hash that models.User hides from JSON
type userRecord struct {
	models.User
	PasswordHash string `json:"passwordHash"`
}

func emptyDocument() *document {
	return &document{
		Members:  []models.Member{},
		Settings: map[string]string{},
		Auth: authSection{
			Users:       []models.User{},
			ResetTokens: []resetTokenRecord{},
		},
	}
}

// Store guards every read-modify-write cycle of the file with a single mutex,
// so concurrent requests in one process never lose updates. Writes go to a
// temp file that replaces the document atomically.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// Open returns a store for path, creating an empty document when missing
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("%w: create data directory: %v", domain.ErrStorage, err)
		}
		if err := s.write(emptyDocument()); err != nil {
			return nil, err
		}
		logger.Info("data file created", "path", path)
	} else if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrStorage, path, err)
	}

	return s, nil
}

// Path returns the document location
func (s *Store) Path() string {
	return s.path
}

// view runs fn on a freshly read document
func (s *Store) view(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	return fn(doc)
}

// update runs fn on a freshly read document and writes it back when fn succeeds
func (s *Store) update(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}

// Clear removes all members and settings, keeping accounts
func (s *Store) Clear() error {
	return s.update(func(doc *document) error {
		doc.Members = []models.Member{}
		doc.Settings = map[string]string{}
		doc.SettingKinds = nil
		doc.SettingTimes = nil
		return nil
	})
}

func (s *Store) read() (*document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStorage, s.path, err)
	}

	var onDisk struct {
		Members      []models.Member             `json:"members"`
		Settings     map[string]string           `json:"settings"`
		SettingKinds map[string]models.ImageKind `json:"setting_kinds"`
		SettingTimes map[string]string           `json:"setting_updated_at"`
		Auth         struct {
			Users       []userRecord       `json:"users"`
			ResetTokens []resetTokenRecord `json:"resetTokens"`
		} `json:"auth"`
	}
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, s.path, err)
	}

	doc := emptyDocument()
	if onDisk.Members != nil {
		doc.Members = onDisk.Members
	}
	if onDisk.Settings != nil {
		doc.Settings = onDisk.Settings
	}
	doc.SettingKinds = onDisk.SettingKinds
	doc.SettingTimes = onDisk.SettingTimes
	for _, u := range onDisk.Auth.Users {
		user := u.User
		user.PasswordHash = u.PasswordHash
		doc.Auth.Users = append(doc.Auth.Users, user)
	}
	if onDisk.Auth.ResetTokens != nil {
		doc.Auth.ResetTokens = onDisk.Auth.ResetTokens
	}
	return doc, nil
}

func (s *Store) write(doc *document) error {
	users := make([]userRecord, 0, len(doc.Auth.Users))
	for _, u := range doc.Auth.Users {
		users = append(users, userRecord{User: u, PasswordHash: u.PasswordHash})
	}

	out := struct {
		Members      []models.Member             `json:"members"`
		Settings     map[string]string           `json:"settings"`
		SettingKinds map[string]models.ImageKind `json:"setting_kinds,omitempty"`
		SettingTimes map[string]string           `json:"setting_updated_at,omitempty"`
		Auth         struct {
			Users       []userRecord       `json:"users"`
			ResetTokens []resetTokenRecord `json:"resetTokens"`
		} `json:"auth"`
	}{
		Members:      doc.Members,
		Settings:     doc.Settings,
		SettingKinds: doc.SettingKinds,
		SettingTimes: doc.SettingTimes,
	}
	out.Auth.Users = users
	out.Auth.ResetTokens = doc.Auth.ResetTokens

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", domain.ErrStorage, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", domain.ErrStorage, s.path, err)
	}
	return nil
}
