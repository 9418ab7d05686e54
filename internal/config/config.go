// Package config loads sitebook settings from defaults, a YAML file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/thenoetrevino/sitebook/internal/session"
	"github.com/thenoetrevino/sitebook/internal/workdays"
	yamlv3 "gopkg.in/yaml.v3"
)

const (
	envPrefix = "SITEBOOK_"
	// ThemeFileEnv points at an extra YAML file whose theme section overrides the config file
	ThemeFileEnv = "SITEBOOK_THEME_FILE"

	maxConfigFileSize = 1 << 20
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `koanf:"database" yaml:"database"`
	Server   ServerConfig   `koanf:"server" yaml:"server"`
	Schedule ScheduleConfig `koanf:"schedule" yaml:"schedule"`
	Session  SessionConfig  `koanf:"session" yaml:"session"`
	Storage  StorageConfig  `koanf:"storage" yaml:"storage"`
	Daemon   DaemonConfig   `koanf:"daemon" yaml:"daemon"`
	Log      LogConfig      `koanf:"log" yaml:"log"`
	CLI      CLIConfig      `koanf:"cli" yaml:"cli"`
	Theme    Theme          `koanf:"theme" yaml:"theme"`
}

// DatabaseConfig locates the SQLite file
type DatabaseConfig struct {
	Path string `koanf:"path" yaml:"path"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string        `koanf:"addr" yaml:"addr"`
	LoginRate       float64       `koanf:"login_rate" yaml:"login_rate"`
	LoginBurst      int           `koanf:"login_burst" yaml:"login_burst"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"-"`
	SweepInterval   time.Duration `koanf:"sweep_interval" yaml:"-"`
}

// ScheduleConfig defines the working-day calendar
type ScheduleConfig struct {
	Weekend  []string `koanf:"weekend" yaml:"weekend"`
	Timezone string   `koanf:"timezone" yaml:"timezone"`
}

// SessionConfig bounds sign-in and session lifetime
type SessionConfig struct {
	ProfileTimeout time.Duration `koanf:"profile_timeout" yaml:"-"`
	TimeoutPolicy  string        `koanf:"timeout_policy" yaml:"timeout_policy"`
	TTL            time.Duration `koanf:"ttl" yaml:"-"`
}

// StorageConfig locates project file blobs
type StorageConfig struct {
	Dir           string `koanf:"dir" yaml:"dir"`
	PublicBaseURL string `koanf:"public_base_url" yaml:"public_base_url"`
	MaxUploadMB   int    `koanf:"max_upload_mb" yaml:"max_upload_mb"`
}

// DaemonConfig locates the event daemon socket
type DaemonConfig struct {
	Socket      string `koanf:"socket" yaml:"socket"`
	MetricsAddr string `koanf:"metrics_addr" yaml:"metrics_addr"`
}

// LogConfig selects log level, format and file
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
	Path   string `koanf:"path" yaml:"path"`
}

// CLIConfig holds defaults for command line use
type CLIConfig struct {
	Organization int    `koanf:"organization" yaml:"organization"`
	Actor        string `koanf:"actor" yaml:"actor"`
}

// Load reads the config file at path (the default location when empty) and
// then applies SITEBOOK_* environment overrides. A missing file means defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	k := koanf.New(".")
	if err := loadYAML(k, path); err != nil {
		return nil, err
	}
	if theme := os.Getenv(ThemeFileEnv); theme != "" {
		if err := loadTheme(k, theme); err != nil {
			return nil, err
		}
	}

	// SITEBOOK_SESSION_PROFILE_TIMEOUT -> session.profile_timeout
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		if s == ThemeFileEnv {
			return ""
		}
		section, field, _ := strings.Cut(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_")
		if field == "" {
			return section
		}
		return section + "." + field
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file or environment is set
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(k *koanf.Koanf, path string) error {
	data, err := readLimited(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadTheme merges only the theme section of an extra file; a missing file is ignored
func loadTheme(k *koanf.Koanf, path string) error {
	data, err := readLimited(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	tk := koanf.New(".")
	if err := tk.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to parse theme file %s: %w", path, err)
	}
	return k.MergeAt(tk.Cut("theme"), "theme")
}

func readLimited(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s is larger than %d bytes", path, maxConfigFileSize)
	}
	return os.ReadFile(path)
}

// Save writes the config to path (the default location when empty)
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yamlv3.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// MarshalYAML writes durations in their string form
func (s ServerConfig) MarshalYAML() (any, error) {
	type plain ServerConfig
	return struct {
		plain           `yaml:",inline"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
		SweepInterval   string `yaml:"sweep_interval"`
	}{plain(s), s.ShutdownTimeout.String(), s.SweepInterval.String()}, nil
}

// MarshalYAML writes durations in their string form
func (s SessionConfig) MarshalYAML() (any, error) {
	type plain SessionConfig
	return struct {
		plain          `yaml:",inline"`
		ProfileTimeout string `yaml:"profile_timeout"`
		TTL            string `yaml:"ttl"`
	}{plain(s), s.ProfileTimeout.String(), s.TTL.String()}, nil
}

// Path returns the default config file location
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "sitebook", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "sitebook", "config.yaml"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".sitebook")

	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(dataDir, "sitebook.db")
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	if c.Server.LoginRate == 0 {
		c.Server.LoginRate = 1
	}
	if c.Server.LoginBurst == 0 {
		c.Server.LoginBurst = 5
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.SweepInterval == 0 {
		c.Server.SweepInterval = time.Hour
	}

	// env values arrive as one comma separated string
	if len(c.Schedule.Weekend) == 1 && strings.Contains(c.Schedule.Weekend[0], ",") {
		c.Schedule.Weekend = strings.Split(c.Schedule.Weekend[0], ",")
	}
	if len(c.Schedule.Weekend) == 0 {
		c.Schedule.Weekend = []string{"friday", "saturday"}
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "Local"
	}

	defaults := session.DefaultConfig()
	if c.Session.ProfileTimeout == 0 {
		c.Session.ProfileTimeout = defaults.ProfileTimeout
	}
	if c.Session.TimeoutPolicy == "" {
		c.Session.TimeoutPolicy = string(defaults.Policy)
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = defaults.TTL
	}

	if c.Storage.Dir == "" {
		c.Storage.Dir = filepath.Join(dataDir, "files")
	}
	if c.Storage.PublicBaseURL == "" {
		c.Storage.PublicBaseURL = "http://" + c.Server.Addr + "/files"
	}
	if c.Storage.MaxUploadMB == 0 {
		c.Storage.MaxUploadMB = 25
	}

	if c.Daemon.Socket == "" {
		c.Daemon.Socket = filepath.Join(os.TempDir(), "sitebook.sock")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(dataDir, "logs", "sitebook.log")
	}
	c.Theme.ApplyDefaults()
	return nil
}

// Validate reports settings that cannot be used
func (c *Config) Validate() error {
	if _, err := c.Calendar(); err != nil {
		return err
	}
	if _, err := session.ParsePolicy(c.Session.TimeoutPolicy); err != nil {
		return err
	}
	if c.Session.ProfileTimeout < 0 || c.Session.TTL < 0 {
		return errors.New("session durations cannot be negative")
	}
	if c.Server.LoginRate < 0 || c.Server.LoginBurst < 0 {
		return errors.New("login rate and burst cannot be negative")
	}
	if c.Storage.MaxUploadMB < 0 {
		return errors.New("storage.max_upload_mb cannot be negative")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Calendar builds the working-day calendar from the schedule settings
func (c *Config) Calendar() (*workdays.Calendar, error) {
	weekend, err := workdays.ParseWeekend(c.Schedule.Weekend)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule.timezone: %w", err)
	}
	return workdays.New(weekend...).In(loc), nil
}

// SessionSettings converts the session settings for the session manager
func (c *Config) SessionSettings() session.Config {
	policy, _ := session.ParsePolicy(c.Session.TimeoutPolicy)
	return session.Config{
		ProfileTimeout: c.Session.ProfileTimeout,
		Policy:         policy,
		TTL:            c.Session.TTL,
	}
}
