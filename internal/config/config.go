package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lu-zhengda/mailsweep/internal/provider/gmail"
)

// Config holds all mailsweep configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Scan   ScanConfig   `toml:"scan"`
	HTTP   HTTPConfig   `toml:"http"`
	Gmail  GmailConfig  `toml:"gmail"`
}

// ServerConfig holds local web server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ScanConfig holds mailbox scan settings.
type ScanConfig struct {
	Limit   int           `toml:"limit"`
	Filters gmail.Filters `toml:"filters"`
}

// HTTPConfig holds settings for outgoing unsubscribe requests. Timeout is
// a Go duration string like "10s".
type HTTPConfig struct {
	UserAgent string `toml:"user_agent"`
	Timeout   string `toml:"timeout"`
}

// RequestTimeout parses the configured timeout, zero when unset or invalid
// so callers fall back to their default.
func (h HTTPConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(h.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// GmailConfig holds Gmail OAuth credentials.
// Users can set them here or via GMAIL_CLIENT_ID / GMAIL_CLIENT_SECRET.
type GmailConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:8766",
		},
		Scan: ScanConfig{
			Limit: 500,
		},
	}
}

// Load reads config from path. If path is empty or the file does not
// exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// ConfigDir returns the mailsweep config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mailsweep")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mailsweep")
}

// DataDir returns the mailsweep data directory path.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "mailsweep")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "mailsweep")
}
