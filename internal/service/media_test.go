package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type memoryMedia struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemoryMedia() *memoryMedia { return &memoryMedia{files: map[string][]byte{}} }

func (m *memoryMedia) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return m.URL(name), nil
}

func (m *memoryMedia) List(ctx context.Context) ([]models.StoredObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StoredObject
	for name, data := range m.files {
		out = append(out, models.StoredObject{Name: name, Size: int64(len(data))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryMedia) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; !ok {
		return fmt.Errorf("file %s: %w", name, domain.ErrNotFound)
	}
	delete(m.files, name)
	return nil
}

func (m *memoryMedia) URL(name string) string { return "/uploads/" + name }

func newMediaService(store *memoryMedia, max int64) *mediaService {
	svc := NewMediaService(store, max, testLogger()).(*mediaService)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func TestUpload(t *testing.T) {
	store := newMemoryMedia()
	svc := newMediaService(store, 0)

	files, err := svc.Upload(context.Background(), []models.Upload{
		{Filename: "my photo 1.png", Data: pngHeader},
		{Filename: `C:\dir\../evil name.png`, Data: pngHeader},
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Upload() = %d files, want 2", len(files))
	}

	pattern := regexp.MustCompile(`^1700000000000-[0-9a-z]{6}-(my_photo_1|evil_name)\.png$`)
	for _, f := range files {
		if !pattern.MatchString(f.Name) {
			t.Errorf("Name = %q, want unix-ms-random-name pattern", f.Name)
		}
		if f.URL != "/uploads/"+f.Name || f.Type != "image/png" || f.Size != int64(len(pngHeader)) {
			t.Errorf("file = %+v", f)
		}
	}
	if len(store.files) != 2 {
		t.Errorf("stored %d files, want 2", len(store.files))
	}
}

func TestUpload_Rejects(t *testing.T) {
	big := append(append([]byte{}, pngHeader...), make([]byte, 64)...)

	tests := []struct {
		name  string
		files []models.Upload
	}{
		{"no files", nil},
		{"not an image", []models.Upload{{Filename: "a.png", Data: []byte("plain text pretending")}}},
		{"too large", []models.Upload{{Filename: "big.png", Data: big}}},
		{"one bad file", []models.Upload{{Filename: "ok.png", Data: pngHeader}, {Filename: "x.txt", Data: []byte("hello")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryMedia()
			svc := newMediaService(store, int64(len(pngHeader)+10))

			_, err := svc.Upload(context.Background(), tt.files)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Upload() error = %v, want ErrValidation", err)
			}
			if len(store.files) != 0 {
				t.Errorf("rejected upload stored %d files", len(store.files))
			}
		})
	}
}

func TestListAndDeleteFiles(t *testing.T) {
	ctx := context.Background()
	store := newMemoryMedia()
	store.files["a.png"] = pngHeader
	store.files["b.png"] = pngHeader
	store.files["c.png"] = pngHeader
	store.files[".gitkeep"] = nil
	svc := newMediaService(store, 0)

	files, err := svc.ListFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 || files[0].URL != "/uploads/a.png" {
		t.Errorf("ListFiles() = %+v, want 3 files without dotfiles", files)
	}

	if err := svc.DeleteFile(ctx, "../../a.png"); err != nil {
		t.Errorf("DeleteFile(traversal) error = %v, want basename delete", err)
	}
	if err := svc.DeleteFile(ctx, "a.png"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteFile(missing) error = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteFile(ctx, ".."); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("DeleteFile(..) error = %v, want ErrValidation", err)
	}

	deleted, err := svc.DeleteFiles(ctx, []string{"b.png", "missing.png", "", "c.png"})
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Errorf("DeleteFiles() = %d, want 2", deleted)
	}
}
