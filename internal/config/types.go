package config

import "time"

// Poll controls how deferred evaluation results are awaited.
type Poll struct {
	Interval time.Duration `yaml:"interval"`
	MaxWait  time.Duration `yaml:"max_wait,omitempty"`
}

// Config represents the .nodewars/config.yaml file.
type Config struct {
	Username   string `yaml:"username"`
	APIKey     string `yaml:"api_key"`
	ProjectDir string `yaml:"project_dir"`
	Language   string `yaml:"language"`
	Editor     string `yaml:"editor,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	Poll       Poll   `yaml:"poll"`
}

// Paths locates the files nodewars keeps under a base directory.
type Paths struct {
	Base string
}

// Environment variables that override config file values.
const (
	EnvAPIKey         = "NODEWARS_API_KEY"
	EnvUsername       = "NODEWARS_USERNAME"
	EnvProjectDir     = "NODEWARS_PROJECT_DIR"
	EnvBaseURL        = "NODEWARS_BASE_URL"
	EnvEditor         = "NODEWARS_EDITOR"
	EnvLogLevel       = "NODEWARS_LOG_LEVEL"
	EnvFallbackEditor = "EDITOR"
)
