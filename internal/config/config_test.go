package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "TABLE_PREFIX", "STORE_BACKEND", "MAX_UPLOAD_BYTES", "AUTH_REQUIRED", "TOKEN_TTL", "SUPABASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "5001" {
		t.Errorf("Port = %q, want %q", cfg.Port, "5001")
	}
	if cfg.StoreBackend != StoreJSON {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, StoreJSON)
	}
	if cfg.MaxUploadBytes != DefaultUploadLimit {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, DefaultUploadLimit)
	}
	if !cfg.AuthRequired {
		t.Error("AuthRequired = false, want true")
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
	if cfg.SupabaseJWKSURL != "" {
		t.Errorf("SupabaseJWKSURL = %q, want empty without SUPABASE_URL", cfg.SupabaseJWKSURL)
	}
	if cfg.SeedRootName != DefaultRootName {
		t.Errorf("SeedRootName = %q, want %q", cfg.SeedRootName, DefaultRootName)
	}
}

func TestLoadTablePrefix(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		override string
		want     string
	}{
		{name: "dev default", env: "dev", want: "dev_"},
		{name: "test", env: "test", want: "test_"},
		{name: "prod", env: "prod", want: "prod_"},
		{name: "unknown falls back to dev", env: "staging", want: "dev_"},
		{name: "override wins", env: "prod", override: "custom_", want: "custom_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", tt.env)
			t.Setenv("TABLE_PREFIX", tt.override)

			if got := Load().TablePrefix; got != tt.want {
				t.Errorf("TablePrefix = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadParsesTypedValues(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("AUTH_REQUIRED", "false")
	t.Setenv("UPLOAD_URL_PREFIX", "/media/")

	cfg := Load()

	if want := "https://abc.supabase.co/auth/v1/.well-known/jwks.json"; cfg.SupabaseJWKSURL != want {
		t.Errorf("SupabaseJWKSURL = %q, want %q", cfg.SupabaseJWKSURL, want)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Errorf("TokenTTL = %v, want 90m", cfg.TokenTTL)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("MaxUploadBytes = %d, want 1024", cfg.MaxUploadBytes)
	}
	if cfg.SMTPPort != 2525 {
		t.Errorf("SMTPPort = %d, want 2525", cfg.SMTPPort)
	}
	if cfg.AuthRequired {
		t.Error("AuthRequired = true, want false")
	}
	if cfg.UploadURLPrefix != "/media" {
		t.Errorf("UploadURLPrefix = %q, want /media", cfg.UploadURLPrefix)
	}
}

func TestSetupLogFileKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"server-2024-01-01T00-00-00.log", "server-2024-01-02T00-00-00.log", "server-2024-01-03T00-00-00.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	f, err := SetupLogFile(dir, "server", 2)
	if err != nil {
		t.Fatalf("SetupLogFile() error = %v", err)
	}
	f.Close()

	files, _ := filepath.Glob(filepath.Join(dir, "server-*.log"))
	if len(files) != 2 {
		t.Fatalf("log files = %d, want 2", len(files))
	}
	if _, err := os.Stat(filepath.Join(dir, "server-2024-01-01T00-00-00.log")); !os.IsNotExist(err) {
		t.Error("oldest log file should have been removed")
	}
}
