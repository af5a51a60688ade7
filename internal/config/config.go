package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	UI       UIConfig
	Season   SeasonConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat string `mapstructure:"date_format"`
	Timezone   string `mapstructure:"timezone"`
}

// SeasonConfig controls how academic seasons are derived from dates.
type SeasonConfig struct {
	StartMonth int `mapstructure:"start_month"` // 9 = September, when the collegiate season rolls over
}

// Load reads configuration from file and env. Env var overrides use prefix ROWINGDB_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "rowingdb", "rowingdb.db"))
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.timezone", "America/New_York")
	v.SetDefault("season.start_month", 9)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("ROWINGDB_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "rowingdb"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ROWINGDB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	firstRun := false
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		firstRun = true
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Season.StartMonth < 1 || c.Season.StartMonth > 12 {
		return Config{}, fmt.Errorf("season.start_month out of range: %d", c.Season.StartMonth)
	}
	// write the defaults on first run so there is a file to edit
	if firstRun {
		if err := Save(c); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("ROWINGDB_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "rowingdb", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("season.start_month", cfg.Season.StartMonth)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
