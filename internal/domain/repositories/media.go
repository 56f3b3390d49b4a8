package repositories

import (
	"context"

	"familytree/internal/domain/models"
)

// MediaStore holds uploaded image bytes
type MediaStore interface {
	// Put writes data under name and returns the public URL
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)

	// List returns every stored object, newest first
	List(ctx context.Context) ([]models.StoredObject, error)

	// Delete removes name, returning an ErrNotFound wrapped error if absent
	Delete(ctx context.Context, name string) error

	// URL returns the public URL of name
	URL(name string) string
}
