package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-lyrics-catalog/internal/auth"
)

var allVars = []string{EnvAddr, EnvDatabaseURL, EnvAdminUsername, EnvAdminPassword, EnvSessionTTL, EnvAPIURL, EnvLogLevel}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg *Config)
		wantErr error
	}{
		{
			name: "defaults",
			env:  nil,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Addr != "127.0.0.1:8080" {
					t.Errorf("Addr = %q", cfg.Addr)
				}
				if cfg.APIURL != "http://127.0.0.1:8080" {
					t.Errorf("APIURL = %q", cfg.APIURL)
				}
				if cfg.DatabaseURL != "" {
					t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
				}
				if cfg.SessionTTL != auth.DefaultSessionTTL {
					t.Errorf("SessionTTL = %v", cfg.SessionTTL)
				}
				if cfg.LogLevel != log.InfoLevel {
					t.Errorf("LogLevel = %v", cfg.LogLevel)
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				EnvAddr:          ":9000",
				EnvDatabaseURL:   "postgres://localhost/lyrics",
				EnvAdminUsername: "admin",
				EnvAdminPassword: "secret",
				EnvSessionTTL:    "30m",
				EnvLogLevel:      "debug",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Addr != ":9000" {
					t.Errorf("Addr = %q", cfg.Addr)
				}
				if cfg.DatabaseURL != "postgres://localhost/lyrics" {
					t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
				}
				if cfg.Admin != (auth.Credentials{Username: "admin", Password: "secret"}) {
					t.Errorf("Admin = %+v", cfg.Admin)
				}
				if cfg.SessionTTL != 30*time.Minute {
					t.Errorf("SessionTTL = %v", cfg.SessionTTL)
				}
				if cfg.LogLevel != log.DebugLevel {
					t.Errorf("LogLevel = %v", cfg.LogLevel)
				}
			},
		},
		{
			name:    "bad ttl",
			env:     map[string]string{EnvSessionTTL: "forever"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "negative ttl",
			env:     map[string]string{EnvSessionTTL: "-1h"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "bad log level",
			env:     map[string]string{EnvLogLevel: "loud"},
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := FromEnv()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FromEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if cfg != nil {
					t.Error("FromEnv() returned non-nil config with error")
				}
				return
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAdminUsername, "from-env")
	os.Unsetenv(EnvAdminPassword)

	path := filepath.Join(t.TempDir(), ".env")
	content := "ADMIN_USERNAME=from-file\nADMIN_PASSWORD=file-secret\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvAdminPassword) })

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Admin.Username != "from-env" {
		t.Errorf("Username = %q, want environment to win", cfg.Admin.Username)
	}
	if cfg.Admin.Password != "file-secret" {
		t.Errorf("Password = %q, want value from file", cfg.Admin.Password)
	}
}

func TestLoadFileMissing(t *testing.T) {
	clearEnv(t)

	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("LoadFile() with missing file error = %v, want nil", err)
	}
}
