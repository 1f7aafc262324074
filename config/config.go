// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/flatkeeper/internal/model"
	"github.com/toeirei/flatkeeper/internal/registry"
)

// RuntimeOS is the operating system used to pick config locations.
// Tests override it to exercise other platforms.
var RuntimeOS = runtime.GOOS

// Config is the on-disk and environment configuration of Flatkeeper.
type Config struct {
	Database  Database         `mapstructure:"database" yaml:"database"`
	Language  string           `mapstructure:"language" yaml:"language"`
	Registry  Registry         `mapstructure:"registry" yaml:"registry"`
	Directory []DirectoryEntry `mapstructure:"directory" yaml:"directory,omitempty"`
}

// Database selects the storage engine.
type Database struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

// Registry holds the engine settings that become registry.Config.
type Registry struct {
	RootOperator             int64      `mapstructure:"root_operator" yaml:"root_operator"`
	Buildings                []Building `mapstructure:"buildings" yaml:"buildings,omitempty"`
	ResetToken               string     `mapstructure:"reset_token" yaml:"reset_token"`
	ApprovalsRequireOperator bool       `mapstructure:"approvals_require_operator" yaml:"approvals_require_operator"`
}

// Building is one configured unit range.
type Building struct {
	Name  string `mapstructure:"name" yaml:"name"`
	First int    `mapstructure:"first" yaml:"first"`
	Last  int    `mapstructure:"last" yaml:"last"`
}

// DirectoryEntry maps an identity to the name shown in notices.
type DirectoryEntry struct {
	ID   int64  `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`
}

// RegistryConfig builds the immutable engine configuration. Buildings fall
// back to the two standard ranges when none are configured.
func (c Config) RegistryConfig() (registry.Config, error) {
	rc := registry.Config{
		RootOperator:             c.Registry.RootOperator,
		ResetToken:               c.Registry.ResetToken,
		ApprovalsRequireOperator: c.Registry.ApprovalsRequireOperator,
	}
	if len(c.Registry.Buildings) == 0 {
		rc.Buildings = registry.DefaultBuildings()
	} else {
		for _, b := range c.Registry.Buildings {
			rc.Buildings = append(rc.Buildings, model.Building{Name: b.Name, First: b.First, Last: b.Last})
		}
	}
	if err := rc.Validate(); err != nil {
		return registry.Config{}, fmt.Errorf("invalid registry configuration: %w", err)
	}
	return rc, nil
}

// Names returns the directory as an id to display name map.
func (c Config) Names() map[int64]string {
	out := make(map[int64]string, len(c.Directory))
	for _, e := range c.Directory {
		out[e.ID] = e.Name
	}
	return out
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string

	if system {
		switch RuntimeOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Flatkeeper")
		default:
			configDir = "/etc/flatkeeper"
		}
	} else {
		dir, err := userConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(dir, "flatkeeper")
	}

	return filepath.Join(configDir, "flatkeeper.yaml"), nil
}

// userConfigDir honours XDG_CONFIG_HOME on every platform before falling
// back to os.UserConfigDir.
func userConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	return os.UserConfigDir()
}

// LoadConfig resolves T from defaults, the first non-empty flatkeeper.yaml
// (explicit path, user dir, system dir, working dir), FLATKEEPER_* environment
// variables and finally the command's flags. When no file was read the
// populated value is returned together with viper.ConfigFileNotFoundError.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("flatkeeper")
	v.SetConfigType("yaml")

	if additionalConfigFilePath != nil && *additionalConfigFilePath != "" {
		v.SetConfigFile(*additionalConfigFilePath)
	} else {
		// Only directories holding a non-empty candidate are searched, so an
		// empty file counts as missing.
		for _, dir := range candidateDirs() {
			if fi, err := os.Stat(filepath.Join(dir, "flatkeeper.yaml")); err == nil && fi.Size() > 0 {
				v.AddConfigPath(dir)
			}
		}
	}

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return c, err
		}
		notFound = err
	}

	v.SetEnvPrefix("flatkeeper")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, notFound
}

func candidateDirs() []string {
	var dirs []string
	if p, err := GetConfigPath(false); err == nil {
		dirs = append(dirs, filepath.Dir(p))
	}
	if p, err := GetConfigPath(true); err == nil {
		dirs = append(dirs, filepath.Dir(p))
	}
	return append(dirs, ".")
}

// WriteConfigFile marshals c to the user or system config path, creating the
// directory as needed. The file is written 0600 since it holds the reset token.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Save persists the global viper settings to the user config path.
func Save() error {
	return WriteConfigFile(ptr(viper.AllSettings()), false)
}

func ptr[T any](v T) *T { return &v }
