package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DirName           = ".nodewars"
	ConfigFileName    = "config.yaml"
	EnvFileName       = ".env"
	DataFileName      = "nwdata"
	DefaultProjectDir = "katas"
	DefaultLanguage   = "javascript"
	DefaultEditor     = "vi"
	DefaultInterval   = 700 * time.Millisecond

	// MinInterval keeps polling slow enough to stay clear of the service's
	// request throttling.
	MinInterval = 250 * time.Millisecond
)

// DefaultConfig returns a Config with default values and no credentials.
func DefaultConfig() Config {
	return Config{
		ProjectDir: DefaultProjectDir,
		Language:   DefaultLanguage,
		Poll: Poll{
			Interval: DefaultInterval,
		},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ErrNotConfigured is returned by RequireCredentials when no API key is set.
var ErrNotConfigured = errors.New("nodewars is not configured; run 'nodewars configure'")

// Dir returns the .nodewars directory.
func (p Paths) Dir() string {
	return filepath.Join(p.Base, DirName)
}

// ConfigFile returns the config.yaml path.
func (p Paths) ConfigFile() string {
	return filepath.Join(p.Dir(), ConfigFileName)
}

// EnvFile returns the .env path.
func (p Paths) EnvFile() string {
	return filepath.Join(p.Dir(), EnvFileName)
}

// DataFile returns the reference store path.
func (p Paths) DataFile() string {
	return filepath.Join(p.Dir(), DataFileName)
}

// Exists reports whether config.yaml is present under basePath.
func Exists(fs afero.Fs, basePath string) bool {
	_, err := fs.Stat(Paths{Base: basePath}.ConfigFile())
	return err == nil
}

// LoadConfig reads .nodewars/config.yaml from basePath, applies .nodewars/.env
// and then the process environment on top. If the file doesn't exist the
// defaults are used. A relative project_dir is resolved against basePath.
func LoadConfig(fs afero.Fs, basePath string) (*Config, error) {
	paths := Paths{Base: basePath}
	cfg := DefaultConfig()

	data, err := afero.ReadFile(fs, paths.ConfigFile())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dotenv, err := LoadEnvFile(fs, basePath)
	if err != nil {
		return nil, err
	}
	ApplyEnv(&cfg, dotenv)
	ApplyEnv(&cfg, processEnv())

	if cfg.Editor == "" {
		cfg.Editor = os.Getenv(EnvFallbackEditor)
	}
	if cfg.Editor == "" {
		cfg.Editor = DefaultEditor
	}

	if cfg.ProjectDir != "" && !filepath.IsAbs(cfg.ProjectDir) {
		cfg.ProjectDir = filepath.Join(basePath, cfg.ProjectDir)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadEnvFile parses .nodewars/.env into a map. A missing file yields an
// empty map.
func LoadEnvFile(fs afero.Fs, basePath string) (map[string]string, error) {
	f, err := fs.Open(Paths{Base: basePath}.EnvFile())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	defer f.Close()

	env, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse env file: %w", err)
	}
	return env, nil
}

// ApplyEnv overrides config values with non-empty entries from env.
func ApplyEnv(cfg *Config, env map[string]string) {
	set := func(dst *string, key string) {
		if v := env[key]; v != "" {
			*dst = v
		}
	}
	set(&cfg.APIKey, EnvAPIKey)
	set(&cfg.Username, EnvUsername)
	set(&cfg.ProjectDir, EnvProjectDir)
	set(&cfg.BaseURL, EnvBaseURL)
	set(&cfg.Editor, EnvEditor)
}

func processEnv() map[string]string {
	env := make(map[string]string)
	for _, key := range []string{EnvAPIKey, EnvUsername, EnvProjectDir, EnvBaseURL, EnvEditor} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env
}

// ValidateConfig checks that all config values are valid. Credentials are
// checked separately by RequireCredentials so that offline commands work
// without them.
func ValidateConfig(cfg *Config) error {
	if cfg.ProjectDir == "" {
		return ValidationError{Field: "project_dir", Message: "required field is empty"}
	}
	if cfg.Language == "" {
		return ValidationError{Field: "language", Message: "required field is empty"}
	}
	if cfg.Poll.Interval < MinInterval {
		return ValidationError{Field: "poll.interval", Message: fmt.Sprintf("must be at least %s", MinInterval)}
	}
	if cfg.Poll.MaxWait < 0 {
		return ValidationError{Field: "poll.max_wait", Message: "must not be negative"}
	}
	return nil
}

// RequireCredentials returns ErrNotConfigured when no API key is set.
func (cfg *Config) RequireCredentials() error {
	if cfg.APIKey == "" {
		return ErrNotConfigured
	}
	return nil
}

// SaveConfig writes cfg to .nodewars/config.yaml under basePath. The file
// holds the API key, so it is only readable by the owner.
func SaveConfig(fs afero.Fs, basePath string, cfg *Config) error {
	paths := Paths{Base: basePath}
	if err := fs.MkdirAll(paths.Dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(fs, paths.ConfigFile(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
