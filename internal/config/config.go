// Package config resolves taskpage settings from defaults, .env, a TOML file,
// the environment and flags.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// AppName is the application directory name.
	AppName = "taskpage"

	// ConfigFile is the TOML file looked up in the config directory.
	ConfigFile = "config.toml"

	// LogFileName is the default log file inside the config directory.
	LogFileName = "taskpage.log"

	DefaultBaseURL            = "http://127.0.0.1:8000"
	DefaultTimeout            = 10 * time.Second
	DefaultTheme              = "classic"
	DefaultLogLevel           = "info"
	DefaultBreakerMaxFailures = 5
	DefaultBreakerOpenTimeout = 30 * time.Second
)

// Environment variables read by Load.
const (
	EnvBaseURL  = "TASKS_API_BASE_URL"
	EnvTimeout  = "TASKPAGE_TIMEOUT"
	EnvTheme    = "TASKPAGE_THEME"
	EnvLogFile  = "TASKPAGE_LOG_FILE"
	EnvLogLevel = "TASKPAGE_LOG_LEVEL"
	EnvConfig   = "TASKPAGE_CONFIG"
)

var themes = []string{"classic", "neon", "mono"}

// Duration is a time.Duration that decodes from TOML strings like "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds resolved settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `toml:"-"`

	// File is the TOML file that was read, empty if none.
	File string `toml:"-"`

	BaseURL  string   `toml:"base_url"`
	Timeout  Duration `toml:"timeout"`
	Theme    string   `toml:"theme"`
	LogFile  string   `toml:"log_file"`
	LogLevel string   `toml:"log_level"`

	BreakerMaxFailures uint32   `toml:"breaker_max_failures"`
	BreakerOpenTimeout Duration `toml:"breaker_open_timeout"`
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func setDefaults(cfg *Config) {
	cfg.Dir = DefaultConfigDir()
	cfg.BaseURL = DefaultBaseURL
	cfg.Timeout = Duration{DefaultTimeout}
	cfg.Theme = DefaultTheme
	cfg.LogLevel = DefaultLogLevel
	cfg.BreakerMaxFailures = DefaultBreakerMaxFailures
	cfg.BreakerOpenTimeout = Duration{DefaultBreakerOpenTimeout}
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base url %q: want http(s)://host[:port]", c.BaseURL)
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}
	if !slices.Contains(themes, c.Theme) {
		return fmt.Errorf("unknown theme %q (want one of %s)", c.Theme, strings.Join(themes, ", "))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.BreakerMaxFailures == 0 {
		return fmt.Errorf("breaker_max_failures must be at least 1")
	}
	if c.BreakerOpenTimeout.Duration <= 0 {
		return fmt.Errorf("invalid breaker_open_timeout %s: must be positive", c.BreakerOpenTimeout)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
