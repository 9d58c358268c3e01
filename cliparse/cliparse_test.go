// cliparse/cliparse_test.go
package cliparse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFlags_DefaultsToDevelopment(t *testing.T) {
	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Profile != ProfileDevelopment {
		t.Errorf("expected development profile, got %q", cfg.Profile)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite, got %q", cfg.DatabaseType)
	}
	if !cfg.SeedOnStartup {
		t.Error("expected seeding to be enabled by default")
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "file:env.db")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SEED_ON_STARTUP", "false")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "file:env.db" {
		t.Errorf("expected env database URL, got %q", cfg.DatabaseURL)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.SeedOnStartup {
		t.Error("SEED_ON_STARTUP=false should disable seeding")
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "--seed=false"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.SeedOnStartup {
		t.Error("--seed=false should disable seeding")
	}
}

func TestParseFlags_ProfileFromEnv(t *testing.T) {
	t.Setenv(ProfileEnvVar, ProfileTesting)

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Profile != ProfileTesting {
		t.Errorf("expected testing profile, got %q", cfg.Profile)
	}
}

func TestParseFlags_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "port: 7000\ndata_dir: /srv/data\nlog_format: json\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "7100")

	cfg, err := ParseFlags([]string{"--config", path})
	if err != nil {
		t.Fatal(err)
	}

	// Env beats the file, the file beats profile defaults
	if cfg.Port != 7100 {
		t.Errorf("expected env port 7100, got %d", cfg.Port)
	}
	if cfg.DataDir != "/srv/data" {
		t.Errorf("expected data dir from file, got %q", cfg.DataDir)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected json log format from file, got %q", cfg.LogFormat)
	}
}

func TestLoad_InvalidProfiles(t *testing.T) {
	tests := []struct {
		name      string
		profile   string
		overrides map[string]string
		wantErr   error
	}{
		{"unknown profile", "staging", nil, ErrUnknownProfile},
		{"production without database or secret", ProfileProduction, nil, nil},
		{"production with short secret", ProfileProduction, map[string]string{
			"database_url": "postgres://localhost/paralympics",
			"secret_key":   "short",
		}, nil},
		{"bad database type", ProfileDevelopment, map[string]string{"database_type": "mysql"}, nil},
		{"bad log level", ProfileDevelopment, map[string]string{"log_level": "loud"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.profile, "", tt.overrides)
			if err == nil {
				t.Fatal("expected an error")
			}

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
			}
			if cfgErr.Profile != tt.profile {
				t.Errorf("expected profile %q in error, got %q", tt.profile, cfgErr.Profile)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_ProductionComplete(t *testing.T) {
	cfg, err := Load(ProfileProduction, "", map[string]string{
		"database_url": "postgres://localhost/paralympics",
		"secret_key":   "a-long-enough-production-secret",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.CookieSecure {
		t.Error("production should set secure cookies")
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %q", cfg.DatabaseType)
	}
}

func TestProfiles(t *testing.T) {
	got := Profiles()
	want := []string{ProfileDevelopment, ProfileProduction, ProfileTesting}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"DatabaseURL":    "database_url",
		"MaxUploadBytes": "max_upload_bytes",
		"SessionTTL":     "session_ttl",
		"Port":           "port",
	}
	for in, want := range tests {
		if got := snakeCase(in); got != want {
			t.Errorf("snakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
