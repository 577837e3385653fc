// Package config loads settings for the command-line tools from defaults,
// an optional cubeinfo.yaml, CUBEINFO_* environment variables and flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the tool settings.
type Config struct {
	LogLevel    string   `mapstructure:"log-level"`
	NoDataAttrs []string `mapstructure:"nodata-attrs"`
	Concurrency int      `mapstructure:"concurrency"`
	Schema      string   `mapstructure:"schema"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"log-level":    "warn",
		"nodata-attrs": []string{"_FillValue", "missing_value", "fill_value"},
		"concurrency":  4,
		"schema":       "",
	}
}

// Load resolves the configuration for cmd. A non-empty path names a config
// file that must exist; otherwise cubeinfo.yaml is looked up in the user
// config directory and the working directory, and a missing file is fine.
func Load(cmd *cobra.Command, path string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("cubeinfo")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "cubeinfo"))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("cubeinfo")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	return c, nil
}
