// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
)

// Profile names
const (
	ProfileDevelopment = "development"
	ProfileTesting     = "testing"
	ProfileProduction  = "production"
)

// Environment variables that are read outside the koanf env layer
const (
	ProfileEnvVar    = "APP_PROFILE"
	ConfigPathEnvVar = "CONFIG_PATH"
)

const minProductionSecretLen = 16

var ErrUnknownProfile = errors.New("unknown configuration profile")

type Config struct {
	Profile        string        `koanf:"profile" validate:"required,oneof=development testing production"`
	Port           int           `koanf:"port" validate:"min=1,max=65535"`
	DatabaseURL    string        `koanf:"database_url" validate:"required"`
	DatabaseType   string        `koanf:"database_type" validate:"required,oneof=sqlite postgres"`
	SecretKey      string        `koanf:"secret_key" validate:"required"`
	DataDir        string        `koanf:"data_dir" validate:"required"`
	UploadDir      string        `koanf:"upload_dir" validate:"required"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes" validate:"gt=0"`
	SeedOnStartup  bool          `koanf:"seed_on_startup"`
	SessionTTL     time.Duration `koanf:"session_ttl" validate:"gt=0"`
	CookieSecure   bool          `koanf:"cookie_secure"`
	LoginRateLimit int           `koanf:"login_rate_limit" validate:"gte=0"`
	LogLevel       string        `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      string        `koanf:"log_format" validate:"oneof=text json"`
}

// ConfigurationError reports a profile that is unknown or fails validation.
type ConfigurationError struct {
	Profile string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration profile %q: %v", e.Profile, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// profiles holds the defaults each named profile starts from.
// Production has no database URL or secret default; both must be supplied.
var profiles = map[string]Config{
	ProfileDevelopment: {
		Port:           5000,
		DatabaseURL:    "file:paralympics.db",
		DatabaseType:   "sqlite",
		SecretKey:      "dev-secret-key-change-me",
		DataDir:        "data",
		UploadDir:      "uploads",
		MaxUploadBytes: 16 << 20,
		SeedOnStartup:  true,
		SessionTTL:     24 * time.Hour,
		CookieSecure:   false,
		LoginRateLimit: 10,
		LogLevel:       "debug",
		LogFormat:      "text",
	},
	ProfileTesting: {
		Port:           5001,
		DatabaseURL:    "file:paralympics_test?mode=memory&cache=shared",
		DatabaseType:   "sqlite",
		SecretKey:      "test-secret-key",
		DataDir:        "data",
		UploadDir:      os.TempDir(),
		MaxUploadBytes: 1 << 20,
		SeedOnStartup:  true,
		SessionTTL:     time.Hour,
		CookieSecure:   false,
		LoginRateLimit: 0,
		LogLevel:       "warn",
		LogFormat:      "text",
	},
	ProfileProduction: {
		Port:           8080,
		DatabaseType:   "postgres",
		DataDir:        "data",
		UploadDir:      "/var/lib/paralympics/uploads",
		MaxUploadBytes: 16 << 20,
		SeedOnStartup:  true,
		SessionTTL:     12 * time.Hour,
		CookieSecure:   true,
		LoginRateLimit: 5,
		LogLevel:       "info",
		LogFormat:      "json",
	},
}

// Profiles returns the known profile names, sorted.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProfileDefaults returns the built-in defaults for a named profile.
func ProfileDefaults(name string) (Config, error) {
	cfg, ok := profiles[name]
	if !ok {
		return Config{}, &ConfigurationError{Profile: name, Err: ErrUnknownProfile}
	}
	cfg.Profile = name
	return cfg, nil
}

// flagKeys maps CLI flag names to config keys
var flagKeys = map[string]string{
	"port":             "port",
	"database-url":     "database_url",
	"database-type":    "database_type",
	"secret-key":       "secret_key",
	"data-dir":         "data_dir",
	"upload-dir":       "upload_dir",
	"max-upload-bytes": "max_upload_bytes",
	"seed":             "seed_on_startup",
	"session-ttl":      "session_ttl",
	"cookie-secure":    "cookie_secure",
	"login-rate-limit": "login_rate_limit",
	"log-level":        "log_level",
	"log-format":       "log_format",
}

// ParseFlags resolves the configuration profile and applies, in order of
// increasing priority, the profile defaults, an optional YAML file,
// environment variables and CLI flags.
func ParseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("paralympics", flag.ContinueOnError)

	profile := fs.String("profile", "", "Configuration profile (development, testing, production)")
	configPath := fs.String("config", "", "YAML config file")

	// Values below are only read through fs.Visit, so the defaults never apply.
	fs.IntP("port", "p", 0, "Server port")
	fs.StringP("database-url", "d", "", "Database URL")
	fs.StringP("database-type", "t", "", "Database type (sqlite or postgres)")
	fs.String("secret-key", "", "Session and CSRF secret (prefer env)")
	fs.String("data-dir", "", "Directory holding the seed CSV files")
	fs.String("upload-dir", "", "Upload destination directory")
	fs.Int64("max-upload-bytes", 0, "Maximum upload size in bytes")
	fs.Bool("seed", true, "Replace the region and medals tables from CSV on startup")
	fs.Duration("session-ttl", 0, "Session lifetime")
	fs.Bool("cookie-secure", false, "Set the Secure flag on cookies")
	fs.Int("login-rate-limit", 0, "Login attempts per IP per minute (0 disables)")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *profile == "" {
		*profile = os.Getenv(ProfileEnvVar)
	}
	if *profile == "" {
		*profile = ProfileDevelopment
	}
	if *configPath == "" {
		*configPath = os.Getenv(ConfigPathEnvVar)
	}

	overrides := map[string]string{}
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = f.Value.String()
		}
	})

	return Load(*profile, *configPath, overrides)
}

// Load builds and validates the configuration for a profile. configPath may
// be empty. overrides are applied last and keyed by config key.
func Load(profile, configPath string, overrides map[string]string) (Config, error) {
	defaults, err := ProfileDefaults(profile)
	if err != nil {
		return Config{}, err
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return Config{}, &ConfigurationError{Profile: profile, Err: fmt.Errorf("failed to load defaults: %w", err)}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return Config{}, &ConfigurationError{Profile: profile, Err: fmt.Errorf("failed to load config file %s: %w", configPath, err)}
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, &ConfigurationError{Profile: profile, Err: fmt.Errorf("failed to load environment: %w", err)}
	}

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return Config{}, &ConfigurationError{Profile: profile, Err: fmt.Errorf("failed to apply flag %s: %w", key, err)}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, &ConfigurationError{Profile: profile, Err: fmt.Errorf("failed to unmarshal configuration: %w", err)}
	}
	// The profile is chosen before loading and cannot be changed by a layer.
	cfg.Profile = profile

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps PORT -> port, DATABASE_URL -> database_url and drops
// variables that are not config keys.
func envKey(name string) string {
	key := strings.ToLower(name)
	if _, ok := envKeys[key]; ok {
		return key
	}
	return ""
}

var envKeys = func() map[string]struct{} {
	keys := make(map[string]struct{}, len(flagKeys))
	for _, key := range flagKeys {
		keys[key] = struct{}{}
	}
	return keys
}()

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration and returns a *ConfigurationError
// describing the first problem found.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigurationError{
				Profile: c.Profile,
				Err:     fmt.Errorf("%s failed %q validation", snakeCase(fe.Field()), fe.Tag()),
			}
		}
		return &ConfigurationError{Profile: c.Profile, Err: err}
	}

	if c.Profile == ProfileProduction && len(c.SecretKey) < minProductionSecretLen {
		return &ConfigurationError{
			Profile: c.Profile,
			Err:     fmt.Errorf("secret_key must be at least %d characters", minProductionSecretLen),
		}
	}
	return nil
}

// snakeCase turns a Go field name like DatabaseURL into database_url.
func snakeCase(field string) string {
	var b strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
