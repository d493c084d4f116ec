// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultDataFile  = "tasks.json"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for todoman.
type Config struct {
	// DataFile is the JSON file holding the task collection.
	DataFile string `toml:"data_file"`

	// BackupDir receives timestamped backup copies. Empty means next
	// to the data file.
	BackupDir string `toml:"backup_dir"`

	// DefaultCategory is applied to new tasks without a category.
	DefaultCategory string `toml:"default_category"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.todoman/todoman.toml or OS config dir)
// 3. Project config file (todoman.toml or .todoman.toml in cwd)
// 4. Environment variables (TODOMAN_*)
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if userFile := findUserConfigFile(); userFile != "" {
		if err := loadConfigFile(cfg, userFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userFile, err)
		}
	}
	if projFile := findProjectConfigFile(); projFile != "" {
		if err := loadConfigFile(cfg, projFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projFile, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	finalizeConfig(cfg)
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.DataFile = DefaultDataFile
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODOMAN_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("TODOMAN_BACKUP_DIR"); v != "" {
		cfg.BackupDir = v
	}
	if v := os.Getenv("TODOMAN_DEFAULT_CATEGORY"); v != "" {
		cfg.DefaultCategory = v
	}
	if v := os.Getenv("TODOMAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TODOMAN_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

// parseFlags registers and parses the global CLI flags; they override
// every other source.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path to the tasks JSON file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in log output")
	return fs.Parse(args)
}

// finalizeConfig expands and absolutizes paths.
func finalizeConfig(cfg *Config) {
	cfg.DataFile = expandPath(cfg.DataFile)
	cfg.BackupDir = expandPath(cfg.BackupDir)

	if !filepath.IsAbs(cfg.DataFile) {
		if wd, err := os.Getwd(); err == nil {
			cfg.DataFile = filepath.Join(wd, cfg.DataFile)
		}
	}
}
