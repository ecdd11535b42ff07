package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"deepwork/internal/logging"
	"deepwork/internal/repository/flatfile"
	"deepwork/internal/validation"
)

// Notes prompt modes.
const (
	PromptTUI  = "tui"
	PromptLine = "line"
	PromptNone = "none"
)

// Config holds all configuration options for deepwork
type Config struct {
	Storage     StorageConfig     `yaml:"storage"`
	Tracker     TrackerConfig     `yaml:"tracker"`
	Validation  ValidationConfig  `yaml:"validation"`
	Display     DisplayConfig     `yaml:"display"`
	Watch       WatchConfig       `yaml:"watch"`
	Logging     logging.Config    `yaml:"logging"`
	Application ApplicationConfig `yaml:"application"`
}

// StorageConfig holds the location of the data files
type StorageConfig struct {
	DataDir      string `yaml:"data_dir" env:"DW_DATA_DIR"`
	SessionsFile string `yaml:"sessions_file" env:"DW_SESSIONS_FILE"`
	ProjectsFile string `yaml:"projects_file" env:"DW_PROJECTS_FILE"`
}

// TrackerConfig holds live tracking configuration
type TrackerConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"DW_REFRESH_INTERVAL"`
	NotesPrompt     string        `yaml:"notes_prompt" env:"DW_NOTES_PROMPT"`
	// AutoCreateProjects adds unknown project names on start.
	AutoCreateProjects bool `yaml:"auto_create_projects" env:"DW_AUTO_CREATE_PROJECTS"`
}

// ValidationConfig holds validation limits
type ValidationConfig struct {
	ProjectNameMaxLength int `yaml:"project_name_max_length" env:"DW_VALIDATION_PROJECT_NAME_MAX"`
	NotesMaxLength       int `yaml:"notes_max_length" env:"DW_VALIDATION_NOTES_MAX"`
	// MaxSessionMinutes caps durations; 0 disables the cap.
	MaxSessionMinutes int `yaml:"max_session_minutes" env:"DW_VALIDATION_MAX_SESSION_MINUTES"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	TableWidth    int    `yaml:"table_width" env:"DW_DISPLAY_TABLE_WIDTH"`
	DashboardDays int    `yaml:"dashboard_days" env:"DW_DISPLAY_DASHBOARD_DAYS"`
	NoColor       bool   `yaml:"no_color" env:"DW_DISPLAY_NO_COLOR"`
	Granularity   string `yaml:"granularity" env:"DW_DISPLAY_GRANULARITY"`
}

// WatchConfig holds file watch configuration
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" env:"DW_WATCH_DEBOUNCE"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"DW_APP_TIMEOUT"`
	Verbose bool          `yaml:"verbose" env:"DW_APP_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	limits := validation.DefaultLimits()

	return &Config{
		Storage: StorageConfig{
			DataDir:      DefaultDataDir(),
			SessionsFile: flatfile.SessionsFileName,
			ProjectsFile: flatfile.ProjectsFileName,
		},
		Tracker: TrackerConfig{
			RefreshInterval:    time.Second,
			NotesPrompt:        PromptTUI,
			AutoCreateProjects: true,
		},
		Validation: ValidationConfig{
			ProjectNameMaxLength: limits.ProjectNameMaxLength,
			NotesMaxLength:       limits.NotesMaxLength,
			MaxSessionMinutes:    limits.MaxSessionMinutes,
		},
		Display: DisplayConfig{
			TableWidth:    80,
			DashboardDays: 7,
			Granularity:   "all",
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
			Stderr: "auto",
		},
		Application: ApplicationConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// DefaultDataDir returns $XDG_DATA_HOME/deepwork, falling back to
// ~/.local/share/deepwork.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "deepwork")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".deepwork")
	}
	return filepath.Join(homeDir, ".local", "share", "deepwork")
}

// DefaultConfigPath returns $DW_CONFIG, or config.yaml under
// $XDG_CONFIG_HOME/deepwork or ~/.config/deepwork.
func DefaultConfigPath() string {
	if path := os.Getenv("DW_CONFIG"); path != "" {
		return path
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "deepwork", "config.yaml")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "deepwork", "config.yaml")
	}
	return ""
}

// GetSessionsPath returns the full path to the session file
func (c *Config) GetSessionsPath() string {
	return resolve(c.Storage.DataDir, c.Storage.SessionsFile)
}

// GetProjectsPath returns the full path to the project file
func (c *Config) GetProjectsPath() string {
	return resolve(c.Storage.DataDir, c.Storage.ProjectsFile)
}

// GetTimeout returns the per-command timeout
func (c *Config) GetTimeout() time.Duration {
	return c.Application.Timeout
}

// Limits converts the validation section into validator limits.
func (c *Config) Limits() validation.Limits {
	return validation.Limits{
		ProjectNameMaxLength: c.Validation.ProjectNameMaxLength,
		NotesMaxLength:       c.Validation.NotesMaxLength,
		MaxSessionMinutes:    c.Validation.MaxSessionMinutes,
	}
}

func resolve(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(expandHome(dir), file)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Storage configuration
	if dir := os.Getenv("DW_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
	if name := os.Getenv("DW_SESSIONS_FILE"); name != "" {
		c.Storage.SessionsFile = name
	}
	if name := os.Getenv("DW_PROJECTS_FILE"); name != "" {
		c.Storage.ProjectsFile = name
	}

	// Tracker configuration
	if interval := os.Getenv("DW_REFRESH_INTERVAL"); interval != "" {
		c.Tracker.RefreshInterval = ParseDurationWithFallback(interval, c.Tracker.RefreshInterval)
	}
	if mode := os.Getenv("DW_NOTES_PROMPT"); mode != "" {
		c.Tracker.NotesPrompt = strings.ToLower(mode)
	}
	if auto := os.Getenv("DW_AUTO_CREATE_PROJECTS"); auto != "" {
		c.Tracker.AutoCreateProjects = ParseBoolWithFallback(auto, c.Tracker.AutoCreateProjects)
	}

	// Validation configuration
	if n := os.Getenv("DW_VALIDATION_PROJECT_NAME_MAX"); n != "" {
		c.Validation.ProjectNameMaxLength = ParseIntWithFallback(n, c.Validation.ProjectNameMaxLength)
	}
	if n := os.Getenv("DW_VALIDATION_NOTES_MAX"); n != "" {
		c.Validation.NotesMaxLength = ParseIntWithFallback(n, c.Validation.NotesMaxLength)
	}
	if n := os.Getenv("DW_VALIDATION_MAX_SESSION_MINUTES"); n != "" {
		c.Validation.MaxSessionMinutes = ParseIntWithFallback(n, c.Validation.MaxSessionMinutes)
	}

	// Display configuration
	if width := os.Getenv("DW_DISPLAY_TABLE_WIDTH"); width != "" {
		c.Display.TableWidth = ParseIntWithFallback(width, c.Display.TableWidth)
	}
	if days := os.Getenv("DW_DISPLAY_DASHBOARD_DAYS"); days != "" {
		c.Display.DashboardDays = ParseIntWithFallback(days, c.Display.DashboardDays)
	}
	if noColor := os.Getenv("DW_DISPLAY_NO_COLOR"); noColor != "" {
		c.Display.NoColor = ParseBoolWithFallback(noColor, c.Display.NoColor)
	}
	if os.Getenv("NO_COLOR") != "" {
		c.Display.NoColor = true
	}
	if g := os.Getenv("DW_DISPLAY_GRANULARITY"); g != "" {
		c.Display.Granularity = strings.ToLower(g)
	}

	// Watch configuration
	if debounce := os.Getenv("DW_WATCH_DEBOUNCE"); debounce != "" {
		c.Watch.Debounce = ParseDurationWithFallback(debounce, c.Watch.Debounce)
	}

	// Logging configuration
	if level := os.Getenv("DW_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("DW_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if file := os.Getenv("DW_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	if stderr := os.Getenv("DW_LOG_STDERR"); stderr != "" {
		c.Logging.Stderr = stderr
	}

	// Application configuration
	if timeout := os.Getenv("DW_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("DW_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate storage configuration
	if c.Storage.DataDir == "" {
		return &ConfigError{Field: "storage.data_dir", Message: "data directory cannot be empty"}
	}
	if c.Storage.SessionsFile == "" {
		return &ConfigError{Field: "storage.sessions_file", Message: "sessions file cannot be empty"}
	}
	if c.Storage.ProjectsFile == "" {
		return &ConfigError{Field: "storage.projects_file", Message: "projects file cannot be empty"}
	}
	if c.GetSessionsPath() == c.GetProjectsPath() {
		return &ConfigError{Field: "storage.projects_file", Message: "sessions and projects must be different files"}
	}

	// Validate tracker configuration
	if c.Tracker.RefreshInterval < 100*time.Millisecond {
		return &ConfigError{Field: "tracker.refresh_interval", Message: "refresh interval must be at least 100ms"}
	}
	switch c.Tracker.NotesPrompt {
	case PromptTUI, PromptLine, PromptNone:
	default:
		return &ConfigError{Field: "tracker.notes_prompt", Message: "notes prompt must be one of tui, line, none"}
	}

	// Validate validation configuration
	if c.Validation.ProjectNameMaxLength < 1 {
		return &ConfigError{Field: "validation.project_name_max_length", Message: "project name maximum length must be at least 1"}
	}
	if c.Validation.NotesMaxLength < 1 {
		return &ConfigError{Field: "validation.notes_max_length", Message: "notes maximum length must be at least 1"}
	}
	if c.Validation.MaxSessionMinutes < 0 {
		return &ConfigError{Field: "validation.max_session_minutes", Message: "max session minutes cannot be negative"}
	}

	// Validate display configuration
	if c.Display.TableWidth < 40 {
		return &ConfigError{Field: "display.table_width", Message: "table width must be at least 40"}
	}
	if c.Display.DashboardDays < 1 || c.Display.DashboardDays > 366 {
		return &ConfigError{Field: "display.dashboard_days", Message: "dashboard days must be between 1 and 366"}
	}
	switch c.Display.Granularity {
	case "all", "day", "week", "month":
	default:
		return &ConfigError{Field: "display.granularity", Message: "granularity must be one of all, day, week, month"}
	}

	// Validate watch configuration
	if c.Watch.Debounce < 0 {
		return &ConfigError{Field: "watch.debounce", Message: "debounce cannot be negative"}
	}

	// Validate logging configuration
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "log format must be text or json"}
	}
	switch strings.ToLower(c.Logging.Stderr) {
	case "", "auto", "always", "never":
	default:
		return &ConfigError{Field: "logging.stderr", Message: "log stderr mode must be auto, always or never"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
