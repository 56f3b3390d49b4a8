package services

import (
	"context"

	"familytree/internal/domain/models"
)

// MediaService handles image uploads
type MediaService interface {
	// Upload stores image files. Nothing is stored if any file is rejected.
	Upload(ctx context.Context, files []models.Upload) ([]models.MediaFile, error)
	ListFiles(ctx context.Context) ([]models.MediaFile, error)
	DeleteFile(ctx context.Context, name string) error
	// DeleteFiles removes every existing name and reports how many were deleted
	DeleteFiles(ctx context.Context, names []string) (int, error)
}
