// Package storage holds uploaded media on local disk or in an S3 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"
)

var _ repositories.MediaStore = (*Local)(nil)

// Local stores files flat in one directory and serves them under urlPrefix
type Local struct {
	dir       string
	urlPrefix string
	logger    *slog.Logger
}

// NewLocal creates dir if needed
func NewLocal(dir, urlPrefix string, logger *slog.Logger) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		logger:    logger,
	}, nil
}

// Put writes through a temp file so readers never see a partial image
func (l *Local) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	target := filepath.Join(l.dir, name)
	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", domain.ErrStorage, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: write %s: %v", domain.ErrStorage, name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %v", domain.ErrStorage, name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("%w: rename %s: %v", domain.ErrStorage, name, err)
	}

	l.logger.Debug("file stored", "name", name, "bytes", len(data), "content_type", contentType)
	return l.URL(name), nil
}

// List returns regular files, newest first
func (l *Local) List(ctx context.Context) ([]models.StoredObject, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload dir: %v", domain.ErrStorage, err)
	}

	objects := make([]models.StoredObject, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrStorage, e.Name(), err)
		}
		objects = append(objects, models.StoredObject{
			Name:       e.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].ModifiedAt.After(objects[j].ModifiedAt)
	})
	return objects, nil
}

func (l *Local) Delete(ctx context.Context, name string) error {
	if err := os.Remove(filepath.Join(l.dir, filepath.Base(name))); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.NotFoundError{Message: fmt.Sprintf("file %s not found", name)}
		}
		return fmt.Errorf("%w: delete %s: %v", domain.ErrStorage, name, err)
	}
	return nil
}

func (l *Local) URL(name string) string {
	return l.urlPrefix + "/" + url.PathEscape(name)
}

// Handler serves stored files; mount it at urlPrefix + "/"
func (l *Local) Handler() http.Handler {
	return http.StripPrefix(l.urlPrefix+"/", http.FileServer(http.Dir(l.dir)))
}
