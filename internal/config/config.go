package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/credcascade/internal/cascade"
	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
	"github.com/Aman-CERP/credcascade/internal/logging"
	"github.com/Aman-CERP/credcascade/internal/store"
)

// ProjectFileName is the project configuration file looked up by Load.
const ProjectFileName = ".credcascade.yaml"

// Config represents the complete credcascade configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Cascade CascadeConfig `yaml:"cascade" json:"cascade"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// IndexConfig configures the search index the cascade writes to.
type IndexConfig struct {
	// Backend is the index implementation: "sqlite" (default), "bleve" or "memory".
	Backend string `yaml:"backend" json:"backend"`

	// DataDir holds the index files and the writer lock. A relative path is
	// resolved against the directory of the file that set it; the default
	// and CREDCASCADE_DATA_DIR resolve against the project directory.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// DedupeCacheSize is the number of document fingerprints remembered to
	// skip unchanged rewrites. 0 disables the cache.
	DedupeCacheSize int `yaml:"dedupe_cache_size" json:"dedupe_cache_size"`

	// RetryAttempts is how many times a locked index write is retried.
	RetryAttempts int `yaml:"retry_attempts" json:"retry_attempts"`
}

// CascadeConfig configures traversal of related entities.
type CascadeConfig struct {
	// CycleGuard handles each entity at most once per event. Disabling it
	// leaves only MaxDepth to stop a cyclic graph.
	CycleGuard bool `yaml:"cycle_guard" json:"cycle_guard"`

	// MaxDepth bounds the relation depth of a cascade. 0 means unlimited.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	FilePath  string `yaml:"file_path" json:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	logDefaults := logging.DefaultConfig()
	return &Config{
		Version: 1,
		Index: IndexConfig{
			Backend:         string(store.BackendSQLite),
			DataDir:         ".credcascade",
			DedupeCacheSize: 1024,
			RetryAttempts:   cerrors.DefaultRetryConfig().MaxRetries,
		},
		Cascade: CascadeConfig{
			CycleGuard: true,
			MaxDepth:   cascade.DefaultMaxDepth,
		},
		Logging: LoggingConfig{
			Level:     logDefaults.Level,
			MaxSizeMB: logDefaults.MaxSizeMB,
			MaxFiles:  logDefaults.MaxFiles,
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/credcascade/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/credcascade/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "credcascade", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "credcascade", "config.yaml")
	}
	return filepath.Join(home, ".config", "credcascade", "config.yaml")
}

// Load loads configuration for dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/credcascade/config.yaml)
//  3. Project config (.credcascade.yaml in dir)
//  4. Environment variables (CREDCASCADE_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userPath := GetUserConfigPath(); fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, err
		}
	}

	if projectPath := filepath.Join(dir, ProjectFileName); fileExists(projectPath) {
		if err := cfg.loadYAML(projectPath); err != nil {
			return nil, err
		}
	}

	return cfg.finish(dir)
}

// LoadFile loads configuration from an explicit file instead of the
// project file. A missing file is an ERR_101_CONFIG_NOT_FOUND error.
func LoadFile(path string) (*Config, error) {
	if !fileExists(path) {
		return nil, cerrors.New(cerrors.ErrCodeConfigNotFound,
			fmt.Sprintf("config file not found: %s", path), nil).
			WithSuggestion("run 'credcascade init' to create " + ProjectFileName)
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	return cfg.finish(filepath.Dir(path))
}

func (c *Config) finish(dir string) (*Config, error) {
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	// Only the default or an environment override can still be relative.
	if c.Index.DataDir != "" && !filepath.IsAbs(c.Index.DataDir) {
		c.Index.DataDir = filepath.Join(dir, c.Index.DataDir)
	}
	return c, nil
}

// loadYAML decodes path on top of the current values, so keys absent from
// the file keep their previous value and explicit zero values win. A
// relative data_dir set by the file is resolved against the file's own
// directory.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return cerrors.ConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return cerrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}

	var keys struct {
		Index struct {
			DataDir *string `yaml:"data_dir"`
		} `yaml:"index"`
	}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return cerrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}
	if keys.Index.DataDir != nil && c.Index.DataDir != "" && !filepath.IsAbs(c.Index.DataDir) {
		base, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			base = filepath.Dir(path)
		}
		c.Index.DataDir = filepath.Join(base, c.Index.DataDir)
	}
	return nil
}

// applyEnvOverrides applies CREDCASCADE_* environment variable overrides.
// Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CREDCASCADE_INDEX_BACKEND"); v != "" {
		c.Index.Backend = v
	}
	if v := os.Getenv("CREDCASCADE_DATA_DIR"); v != "" {
		c.Index.DataDir = v
	}
	if v := os.Getenv("CREDCASCADE_MAX_DEPTH"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d >= 0 {
			c.Cascade.MaxDepth = d
		}
	}
	if v := os.Getenv("CREDCASCADE_CYCLE_GUARD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cascade.CycleGuard = b
		}
	}
	if v := os.Getenv("CREDCASCADE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration and returns an
// ERR_102_CONFIG_INVALID error if invalid.
func (c *Config) Validate() error {
	switch store.Backend(c.Index.Backend) {
	case store.BackendSQLite, store.BackendBleve, store.BackendMemory:
	default:
		return invalid("index.backend must be 'sqlite', 'bleve' or 'memory', got %q", c.Index.Backend)
	}
	if c.Index.DataDir == "" && store.Backend(c.Index.Backend) != store.BackendMemory {
		return invalid("index.data_dir is required for the %s backend", c.Index.Backend)
	}
	if c.Index.DedupeCacheSize < 0 {
		return invalid("index.dedupe_cache_size must be non-negative, got %d", c.Index.DedupeCacheSize)
	}
	if c.Index.RetryAttempts < 0 {
		return invalid("index.retry_attempts must be non-negative, got %d", c.Index.RetryAttempts)
	}
	if c.Cascade.MaxDepth < 0 {
		return invalid("cascade.max_depth must be non-negative, got %d", c.Cascade.MaxDepth)
	}
	if !c.Cascade.CycleGuard && c.Cascade.MaxDepth == 0 {
		return invalid("cascade.max_depth must be set when cascade.cycle_guard is off")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return invalid("logging.level must be 'debug', 'info', 'warn', or 'error', got %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return invalid("logging.max_size_mb and logging.max_files must be non-negative")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return cerrors.ConfigError(fmt.Sprintf(format, args...), nil).
		WithSuggestion("fix the value in " + ProjectFileName + " or the CREDCASCADE_* environment")
}

// RetryConfig returns the retry policy for index writes.
func (c *Config) RetryConfig() cerrors.RetryConfig {
	cfg := cerrors.DefaultRetryConfig()
	cfg.MaxRetries = c.Index.RetryAttempts
	return cfg
}

// LogSetup returns the logging setup for this configuration.
func (c *Config) LogSetup() logging.Config {
	return logging.Config{
		Level:         c.Logging.Level,
		FilePath:      c.Logging.FilePath,
		MaxSizeMB:     c.Logging.MaxSizeMB,
		MaxFiles:      c.Logging.MaxFiles,
		WriteToStderr: true,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
