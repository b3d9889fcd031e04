// Package config handles loading and managing tempbox configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/wesm/tempbox/internal/fileutil"
)

// DefaultBaseURL is the public Barid API endpoint.
const DefaultBaseURL = "https://api.barid.site"

// DefaultDomain is used when no domain has been saved yet.
const DefaultDomain = "vwh.sh"

// APIConfig holds email API client configuration.
type APIConfig struct {
	BaseURL       string  `toml:"base_url"`       // Email API endpoint
	AttachmentURL string  `toml:"attachment_url"` // Attachment download host (default: base_url)
	RateLimitQPS  float64 `toml:"rate_limit_qps"` // Requests per second sent to the API
	PageSize      int     `toml:"page_size"`      // Messages requested per page
}

// MailboxConfig holds defaults for generated mailbox identities.
type MailboxConfig struct {
	DefaultDomain string `toml:"default_domain"`
	NameLength    int    `toml:"name_length"` // Length of generated local-parts
}

// UIConfig holds terminal UI configuration.
type UIConfig struct {
	FrameRate       int `toml:"frame_rate"`       // Redraw ticks per second
	AutosaveSeconds int `toml:"autosave_seconds"` // Preference autosave interval
}

// RefreshConfig holds the optional auto-refresh schedule.
type RefreshConfig struct {
	Schedule string `toml:"schedule"` // Cron expression (e.g., "*/5 * * * *")
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// Config represents the tempbox configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Mailbox MailboxConfig `toml:"mailbox"`
	UI      UIConfig      `toml:"ui"`
	Refresh RefreshConfig `toml:"refresh"`
	Data    DataConfig    `toml:"data"`

	// Computed paths (not from config file)
	HomeDir    string `toml:"-"`
	configPath string
}

// DefaultHome returns the default tempbox home directory.
// Respects TEMPBOX_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("TEMPBOX_HOME"); h != "" {
		return expandPath(h)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tempbox"
	}
	return filepath.Join(home, ".tempbox")
}

// Load reads the configuration from the specified file.
// If path is empty, uses <home>/config.toml. If homeDir is empty,
// DefaultHome is used.
func Load(path, homeDir string) (*Config, error) {
	if homeDir == "" {
		homeDir = DefaultHome()
	}
	homeDir = expandPath(homeDir)

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}
	path = expandPath(path)

	cfg := &Config{
		HomeDir:    homeDir,
		configPath: path,
		API: APIConfig{
			BaseURL:      DefaultBaseURL,
			RateLimitQPS: 5,
			PageSize:     50,
		},
		Mailbox: MailboxConfig{
			DefaultDomain: DefaultDomain,
			NameLength:    10,
		},
		UI: UIConfig{
			FrameRate:       20,
			AutosaveSeconds: 30,
		},
		Data: DataConfig{
			DataDir: homeDir,
		},
	}

	// Config file is optional - use defaults if not present
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Data.DataDir = expandPath(cfg.Data.DataDir)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("api.page_size must be positive, got %d", c.API.PageSize)
	}
	if c.API.RateLimitQPS <= 0 {
		return fmt.Errorf("api.rate_limit_qps must be positive, got %g", c.API.RateLimitQPS)
	}
	if c.Mailbox.NameLength <= 0 {
		return fmt.Errorf("mailbox.name_length must be positive, got %d", c.Mailbox.NameLength)
	}
	if c.UI.FrameRate <= 0 {
		return fmt.Errorf("ui.frame_rate must be positive, got %d", c.UI.FrameRate)
	}
	return nil
}

// ConfigFilePath returns the config file location, whether or not it exists.
func (c *Config) ConfigFilePath() string {
	if c.configPath != "" {
		return c.configPath
	}
	return filepath.Join(c.HomeDir, "config.toml")
}

// EnsureHomeDir creates the home and data directories if missing.
func (c *Config) EnsureHomeDir() error {
	if err := fileutil.MkdirPrivate(c.HomeDir); err != nil {
		return err
	}
	if c.Data.DataDir != "" && c.Data.DataDir != c.HomeDir {
		return fileutil.MkdirPrivate(c.Data.DataDir)
	}
	return nil
}

// DatabasePath returns the path to the SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.DataDir, "tempbox.db")
}

// LogFilePath returns where the TUI writes its log.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.HomeDir, "tempbox.log")
}

// AttachmentBaseURL returns the host attachments are downloaded from.
func (c *Config) AttachmentBaseURL() string {
	if c.API.AttachmentURL != "" {
		return strings.TrimRight(c.API.AttachmentURL, "/")
	}
	return strings.TrimRight(c.API.BaseURL, "/")
}

// FrameInterval returns the delay between UI redraw ticks.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.UI.FrameRate)
}

// AutosaveInterval returns how often preferences are flushed while the TUI runs.
// Zero disables autosave.
func (c *Config) AutosaveInterval() time.Duration {
	if c.UI.AutosaveSeconds <= 0 {
		return 0
	}
	return time.Duration(c.UI.AutosaveSeconds) * time.Second
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
