package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/peerwire/internal/errors"
	"github.com/vango-dev/peerwire/pkg/packer"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Packer.MaxSize != packer.DefaultMaxSize {
		t.Errorf("Packer.MaxSize = %d, want %d", cfg.Packer.MaxSize, packer.DefaultMaxSize)
	}
	if cfg.Packer.InitialCap != packer.DefaultInitialCap {
		t.Errorf("Packer.InitialCap = %d, want %d", cfg.Packer.InitialCap, packer.DefaultInitialCap)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Debug.Address != DefaultDebugAddress {
		t.Errorf("Debug.Address = %q, want %q", cfg.Debug.Address, DefaultDebugAddress)
	}
	if cfg.WriteTimeout() != 10*time.Second {
		t.Errorf("WriteTimeout() = %v, want 10s", cfg.WriteTimeout())
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	var pe *errors.PeerwireError
	if !stderrors.As(err, &pe) || pe.Code != "PW001" {
		t.Fatalf("missing config: got %v, want PW001", err)
	}

	configJSON := `{
  "packer": {"maxSize": 1048576},
  "log": {"level": "DEBUG", "development": true},
  "transport": {"url": "ws://127.0.0.1:9651/ext/peer", "writeTimeout": "2s"},
  "archive": {"bucket": "frames-bucket", "region": "eu-west-1"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Packer.MaxSize != 1048576 {
		t.Errorf("Packer.MaxSize = %d, want 1048576", cfg.Packer.MaxSize)
	}
	// missing fields keep their defaults
	if cfg.Packer.InitialCap != packer.DefaultInitialCap {
		t.Errorf("Packer.InitialCap = %d, want default", cfg.Packer.InitialCap)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Development {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.WriteTimeout() != 2*time.Second {
		t.Errorf("WriteTimeout() = %v, want 2s", cfg.WriteTimeout())
	}
	if !cfg.ArchiveEnabled() || cfg.Archive.Prefix != DefaultArchivePrefix {
		t.Errorf("Archive = %+v", cfg.Archive)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	var pe *errors.PeerwireError
	if !stderrors.As(err, &pe) || pe.Code != "PW002" {
		t.Fatalf("got %v, want PW002", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"smallest_max_size", func(c *Config) { c.Packer.MaxSize = 5; c.Packer.InitialCap = 5 }, ""},
		{"max_size_too_small", func(c *Config) { c.Packer.MaxSize = 4 }, "packer.maxSize"},
		{"negative_initial_cap", func(c *Config) { c.Packer.InitialCap = -1 }, "packer.initialCap"},
		{"initial_cap_above_max", func(c *Config) { c.Packer.MaxSize = 64; c.Packer.InitialCap = 65 }, "packer.initialCap"},
		{"initial_cap_above_ceiling", func(c *Config) { c.Packer.InitialCap = packer.MaxInitialCap + 1 }, "packer.initialCap"},
		{"initial_cap_at_ceiling", func(c *Config) { c.Packer.InitialCap = packer.MaxInitialCap }, ""},
		{"unknown_log_level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad_timeout", func(c *Config) { c.Transport.WriteTimeout = "soon" }, "transport.writeTimeout"},
		{"zero_timeout", func(c *Config) { c.Transport.WriteTimeout = "0s" }, "transport.writeTimeout"},
		{"http_url", func(c *Config) { c.Transport.URL = "http://127.0.0.1:9651" }, "transport.url"},
		{"wss_url", func(c *Config) { c.Transport.URL = "wss://peer.example.com/ext" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var pe *errors.PeerwireError
			if !stderrors.As(err, &pe) || pe.Code != "PW003" {
				t.Fatalf("Validate() = %v, want PW003", err)
			}
			if !strings.Contains(pe.Detail, tt.wantErr) {
				t.Errorf("Detail = %q, want mention of %q", pe.Detail, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(`{"packer": {"maxSize": 3}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Archive.Bucket = "saved"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "}\n") {
		t.Error("saved file should end with a newline")
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Archive.Bucket != "saved" {
		t.Errorf("Archive.Bucket = %q, want saved", loaded.Archive.Bucket)
	}

	loaded.Log.Level = "warn"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	again, err := Load(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if again.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", again.Log.Level)
	}

	if err := New().Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(nested)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" && strings.HasPrefix(got, root) {
		t.Errorf("Find() = %q before any file exists", got)
	}

	if err := New().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	got, err = Find(nested)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(root, ConfigFileName) {
		t.Errorf("Find() = %q, want %q", got, filepath.Join(root, ConfigFileName))
	}
	if !Exists(root) || Exists(nested) {
		t.Error("Exists() mismatch")
	}
}

func TestResolveExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	if err := os.WriteFile(path, []byte(`{"log": {"level": "error"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Resolve(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}

	if _, err := Resolve(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Resolve() of a missing explicit path should fail")
	}
}
