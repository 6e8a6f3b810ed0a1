package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/topics/internal/domain"
)

const (
	appName        = "topics"
	envPrefix      = "TOPICS"
	configFileName = "config.yaml"

	// DefaultPageSize is the number of topics requested per page
	DefaultPageSize = 40
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	List    ListConfig    `mapstructure:"list"`
	Browser BrowserConfig `mapstructure:"browser"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds forum API configuration
type ServerConfig struct {
	URL       string        `mapstructure:"url"`        // API base URL
	SiteURL   string        `mapstructure:"site_url"`   // Web URL navigation paths are joined with
	Timeout   time.Duration `mapstructure:"timeout"`    // Per-request timeout
	Retries   int           `mapstructure:"retries"`    // Connection-level retries
	UserAgent string        `mapstructure:"user_agent"` // Sent with every request
}

// ListConfig holds the initial list selection
type ListConfig struct {
	Type     string `mapstructure:"type"`      // last_actived, recent, no_reply, popular, excellent
	NodeID   int64  `mapstructure:"node_id"`   // 0 = all nodes
	PageSize int    `mapstructure:"page_size"` // Topics per request

	// Deadline for one page including transport retries; 0 leaves it to
	// the server timeout
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// BrowserConfig holds the external command used to open navigation paths
type BrowserConfig struct {
	Command string   `mapstructure:"command"` // Empty = system default
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"` // Console format instead of JSON
}

// MetricsConfig holds the optional Prometheus endpoint
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // e.g. "127.0.0.1:9090"; empty disables
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:       "https://ruby-china.org",
			SiteURL:   "https://ruby-china.org",
			Timeout:   30 * time.Second,
			Retries:   2,
			UserAgent: "topics/1.0",
		},
		List: ListConfig{
			Type:     string(domain.DefaultListType),
			PageSize:     DefaultPageSize,
			FetchTimeout: 90 * time.Second,
		},
		Browser: BrowserConfig{
			Args: []string{},
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// newViper builds a viper instance with defaults and env overrides bound.
// A private instance keeps tests independent of the global one.
func newViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()

	v.SetDefault("server.url", def.Server.URL)
	v.SetDefault("server.site_url", def.Server.SiteURL)
	v.SetDefault("server.timeout", def.Server.Timeout)
	v.SetDefault("server.retries", def.Server.Retries)
	v.SetDefault("server.user_agent", def.Server.UserAgent)
	v.SetDefault("list.type", def.List.Type)
	v.SetDefault("list.node_id", def.List.NodeID)
	v.SetDefault("list.page_size", def.List.PageSize)
	v.SetDefault("list.fetch_timeout", def.List.FetchTimeout)
	v.SetDefault("browser.command", def.Browser.Command)
	v.SetDefault("browser.args", def.Browser.Args)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.pretty", def.Logging.Pretty)
	v.SetDefault("metrics.addr", def.Metrics.Addr)

	// Environment variable overrides, e.g. TOPICS_SERVER_URL
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from file and environment. An empty path
// searches the default config directory and the working directory.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.List.PageSize <= 0 {
		return fmt.Errorf("list.page_size must be positive, got %d", c.List.PageSize)
	}
	if c.List.NodeID < 0 {
		return fmt.Errorf("list.node_id must not be negative, got %d", c.List.NodeID)
	}
	if c.List.FetchTimeout < 0 {
		return fmt.Errorf("list.fetch_timeout must not be negative, got %v", c.List.FetchTimeout)
	}
	if c.Server.Retries < 0 {
		return fmt.Errorf("server.retries must not be negative, got %d", c.Server.Retries)
	}
	if _, err := domain.ParseListType(c.List.Type); err != nil {
		return fmt.Errorf("list.type: %w", err)
	}
	return nil
}

// Filter returns the initial list filter described by the configuration
func (c *Config) Filter() domain.Filter {
	lt, err := domain.ParseListType(c.List.Type)
	if err != nil {
		lt = domain.DefaultListType
	}
	return domain.Filter{Type: lt, NodeID: c.List.NodeID}
}

// SiteURL returns the web URL, falling back to the API URL
func (c *Config) SiteURL() string {
	if c.Server.SiteURL != "" {
		return c.Server.SiteURL
	}
	return c.Server.URL
}

// DefaultConfigPath returns the config file used when none is given
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), configFileName)
}

// SaveConfig writes cfg to path, or to the default location when path is empty
func SaveConfig(cfg *Config, path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.site_url", cfg.Server.SiteURL)
	v.Set("server.timeout", cfg.Server.Timeout.String())
	v.Set("server.retries", cfg.Server.Retries)
	v.Set("server.user_agent", cfg.Server.UserAgent)

	v.Set("list.type", cfg.List.Type)
	v.Set("list.node_id", cfg.List.NodeID)
	v.Set("list.page_size", cfg.List.PageSize)
	v.Set("list.fetch_timeout", cfg.List.FetchTimeout.String())

	v.Set("browser.command", cfg.Browser.Command)
	v.Set("browser.args", cfg.Browser.Args)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.pretty", cfg.Logging.Pretty)

	v.Set("metrics.addr", cfg.Metrics.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
