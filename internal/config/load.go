package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. .env in the working directory (never overrides the real environment)
// 3. Config file (-config, TASKPAGE_CONFIG or <config dir>/config.toml)
// 4. Environment variables
// 5. CLI flags
//
// Flags are registered on flags, so callers may add their own before calling
// Load and read flags.Args() afterwards.
func Load(flags *flag.FlagSet, args []string) (*Config, error) {
	if flags == nil {
		flags = flag.NewFlagSet(AppName, flag.ContinueOnError)
	}
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	// flags are parsed up front so -config can pick the file
	fl := defineFlags(flags)
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}
	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// 2. .env
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, fmt.Errorf("loading %s: %w", DotEnvFile, err)
	}

	// 3. Config file
	path, explicit := configPath(cfg, fl.config, set["config"])
	if path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		} else {
			cfg.File = path
		}
	}

	// 4. Environment
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	// 5. Flags
	fl.apply(cfg, set)

	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.Dir, LogFileName)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type flagValues struct {
	config, baseURL, theme, logFile, logLevel string
	timeout                                   time.Duration
}

func defineFlags(flags *flag.FlagSet) *flagValues {
	fl := &flagValues{}
	flags.StringVar(&fl.config, "config", "", "path to a TOML config file")
	flags.StringVar(&fl.baseURL, "base-url", "", "task API base URL (env "+EnvBaseURL+")")
	flags.DurationVar(&fl.timeout, "timeout", 0, "timeout for a single API call")
	flags.StringVar(&fl.theme, "theme", "", "color theme: classic, neon or mono")
	flags.StringVar(&fl.logFile, "log-file", "", "log file path")
	flags.StringVar(&fl.logLevel, "log-level", "", "log level: debug, info, warn, error")
	return fl
}

func (fl *flagValues) apply(cfg *Config, set map[string]bool) {
	if set["base-url"] {
		cfg.BaseURL = fl.baseURL
	}
	if set["timeout"] {
		cfg.Timeout = Duration{fl.timeout}
	}
	if set["theme"] {
		cfg.Theme = fl.theme
	}
	if set["log-file"] {
		cfg.LogFile = fl.logFile
	}
	if set["log-level"] {
		cfg.LogLevel = fl.logLevel
	}
}

// configPath picks the config file. explicit is true when the user named it,
// in which case a missing file is an error.
func configPath(cfg *Config, flagPath string, flagSet bool) (path string, explicit bool) {
	if flagSet && flagPath != "" {
		return expandPath(flagPath), true
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfig)); env != "" {
		return expandPath(env), true
	}
	return filepath.Join(cfg.Dir, ConfigFile), false
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func loadFromEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// bare numbers are seconds
			secs, nerr := strconv.Atoi(v)
			if nerr != nil {
				return fmt.Errorf("%s: %w", EnvTimeout, err)
			}
			d = time.Duration(secs) * time.Second
		}
		cfg.Timeout = Duration{d}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		cfg.Theme = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.LogFile = expandPath(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	return nil
}

// expandPath expands a leading ~ to the home directory.
func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
