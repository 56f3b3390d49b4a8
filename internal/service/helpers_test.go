package service

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"familytree/internal/repository/jsonfile"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(t *testing.T) *jsonfile.Store {
	t.Helper()
	store, err := jsonfile.Open(filepath.Join(t.TempDir(), "db.json"), testLogger())
	if err != nil {
		t.Fatalf("jsonfile.Open() error = %v", err)
	}
	return store
}
