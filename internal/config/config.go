// Package config loads server configuration from an optional config file and
// FLEAPIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the runtime settings for the server.
type Config struct {
	ListenAddr  string `mapstructure:"listen_addr" validate:"required"`
	DBPath      string `mapstructure:"db_path" validate:"required"`
	LibraryRoot string `mapstructure:"library_root" validate:"required"`
	LogLevel    string `mapstructure:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	LogJSON     bool   `mapstructure:"log_json"`
}

// Load reads configuration from path (optional; the default search locations
// are the working directory and the user config dir), applies FLEAPIT_*
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":3000")
	v.SetDefault("db_path", "fleapit.db")
	v.SetDefault("library_root", ".")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetEnvPrefix("FLEAPIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "fleapit"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
			// Missing config file is fine; defaults and env apply.
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
