package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path"
	"regexp"
	"strings"
	"time"

	"familytree/internal/config"
	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"
	"familytree/internal/domain/services"

	"github.com/gabriel-vasile/mimetype"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var whitespace = regexp.MustCompile(`\s+`)

// mediaService implements the MediaService interface
type mediaService struct {
	store    repositories.MediaStore
	maxBytes int64
	now      func() time.Time
	logger   *slog.Logger
}

// NewMediaService creates a media service. maxBytes <= 0 uses the default per-file limit.
func NewMediaService(store repositories.MediaStore, maxBytes int64, logger *slog.Logger) services.MediaService {
	if maxBytes <= 0 {
		maxBytes = config.DefaultUploadLimit
	}
	return &mediaService{
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   logger,
	}
}

// Upload checks every file before storing any of them
func (s *mediaService) Upload(ctx context.Context, files []models.Upload) ([]models.MediaFile, error) {
	if len(files) == 0 {
		return nil, &domain.ValidationError{Message: "no files uploaded"}
	}

	types := make([]string, len(files))
	for i, f := range files {
		if int64(len(f.Data)) > s.maxBytes {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("%s exceeds the %d byte limit", f.Filename, s.maxBytes),
			}
		}
		mtype := mimetype.Detect(f.Data)
		if !strings.HasPrefix(mtype.String(), "image/") {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("%s is not an image (%s)", f.Filename, mtype.String()),
			}
		}
		types[i] = baseType(mtype.String())
	}

	stored := make([]models.MediaFile, 0, len(files))
	for i, f := range files {
		name := s.storageName(f.Filename)
		url, err := s.store.Put(ctx, name, f.Data, types[i])
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", name, err)
		}
		stored = append(stored, models.MediaFile{
			Name: name,
			URL:  url,
			Size: int64(len(f.Data)),
			Type: types[i],
		})
	}

	s.logger.Info("files uploaded", "count", len(stored))
	return stored, nil
}

func (s *mediaService) ListFiles(ctx context.Context) ([]models.MediaFile, error) {
	objects, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]models.MediaFile, 0, len(objects))
	for _, o := range objects {
		if strings.HasPrefix(o.Name, ".") {
			continue
		}
		files = append(files, models.MediaFile{
			Name: o.Name,
			URL:  s.store.URL(o.Name),
			Size: o.Size,
		})
	}
	return files, nil
}

func (s *mediaService) DeleteFile(ctx context.Context, name string) error {
	clean, err := cleanFileName(name)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, clean); err != nil {
		return err
	}

	s.logger.Info("file deleted", "name", clean)
	return nil
}

// DeleteFiles skips names that are invalid or already gone
func (s *mediaService) DeleteFiles(ctx context.Context, names []string) (int, error) {
	deleted := 0
	for _, name := range names {
		clean, err := cleanFileName(name)
		if err != nil {
			continue
		}
		if err := s.store.Delete(ctx, clean); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			s.logger.Warn("bulk delete failed", "name", clean, "error", err)
			continue
		}
		deleted++
	}

	s.logger.Info("files deleted", "requested", len(names), "deleted", deleted)
	return deleted, nil
}

// storageName is <unix ms>-<6 base36 chars>-<original name with whitespace as _>
func (s *mediaService) storageName(original string) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))
	base = strings.TrimLeft(whitespace.ReplaceAllString(base, "_"), "./")
	if base == "" {
		base = "file"
	}

	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return fmt.Sprintf("%d-%s-%s", s.now().UnixMilli(), suffix, base)
}

// cleanFileName reduces name to its final path element
func cleanFileName(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	switch base {
	case "", ".", "..", "/":
		return "", &domain.ValidationError{Message: "bad path"}
	}
	return base, nil
}

// baseType drops mime parameters such as charset
func baseType(mtype string) string {
	if i := strings.IndexByte(mtype, ';'); i >= 0 {
		return strings.TrimSpace(mtype[:i])
	}
	return mtype
}
