package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the tool.
type Config struct {
	// BaseURL is where the site is published; the shared documents are
	// fetched relative to it.
	BaseURL  string       `mapstructure:"base_url"`
	Archive  DomainConfig `mapstructure:"archive"`
	Calendar DomainConfig `mapstructure:"calendar"`
	// DBPath is the device-local draft database.
	DBPath string       `mapstructure:"db_path"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// DomainConfig holds per-domain settings.
type DomainConfig struct {
	Path string `mapstructure:"path"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from path, or from $HOME/.sitedata/config.yaml
// when path is empty. A missing default config file is fine; defaults apply.
func Load(path string) (*Config, error) {
	home, _ := os.UserHomeDir()

	v := viper.New()
	v.SetDefault("base_url", "https://haey5331.github.io")
	v.SetDefault("archive.path", "/data/archive-records.json")
	v.SetDefault("calendar.path", "/data/work-calendar-events.json")
	v.SetDefault("db_path", filepath.Join(home, ".sitedata", "drafts.db"))
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(home, ".sitedata"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ArchiveURL is the full URL of the shared archive document.
func (c *Config) ArchiveURL() string {
	return joinURL(c.BaseURL, c.Archive.Path)
}

// CalendarURL is the full URL of the shared calendar document.
func (c *Config) CalendarURL() string {
	return joinURL(c.BaseURL, c.Calendar.Path)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
