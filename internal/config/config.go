/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v3"
)

// Config represents the checkmigrations configuration
type Config struct {
	// Project detection settings
	Project ProjectConfig `yaml:"project" mapstructure:"project"`

	// SQL rendering settings
	Render RenderConfig `yaml:"render" mapstructure:"render"`

	// Compatibility rule settings
	Rules RulesConfig `yaml:"rules" mapstructure:"rules"`

	// Database configuration (used by the goose passthrough)
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Output settings
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// ProjectConfig contains project detection and migration discovery settings
type ProjectConfig struct {
	Kind          string   `yaml:"kind" mapstructure:"kind"`                     // auto, django or goose
	MigrationsDir string   `yaml:"migrations_dir" mapstructure:"migrations_dir"` // Path segment that identifies migration files
	Ignore        []string `yaml:"ignore" mapstructure:"ignore"`                 // Gitignore-style patterns of migration paths to skip
}

// RenderConfig contains settings for rendering migrations to SQL
type RenderConfig struct {
	Python       string `yaml:"python" mapstructure:"python"`               // Python interpreter used for manage.py
	ManageScript string `yaml:"manage_script" mapstructure:"manage_script"` // Django management script name
}

// RulesConfig controls the backward-compatibility rule set
type RulesConfig struct {
	Disabled []string    `yaml:"disabled" mapstructure:"disabled"` // Names of built-in rules to switch off
	Extra    []ExtraRule `yaml:"extra" mapstructure:"extra"`       // Additional regex rules from the project
}

// ExtraRule is a user-supplied compatibility rule
type ExtraRule struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Problem string `yaml:"problem" mapstructure:"problem"`
}

// DatabaseConfig contains database-related settings for the goose passthrough
type DatabaseConfig struct {
	Type    string `yaml:"type" mapstructure:"type"`         // postgresql, mysql, sqlserver, sqlite
	EnvFile string `yaml:"env_file" mapstructure:"env_file"` // Optional .env file with connection credentials
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Verbose      bool `yaml:"verbose" mapstructure:"verbose"`             // Enable verbose output
	ColorEnabled bool `yaml:"color_enabled" mapstructure:"color_enabled"` // Enable colored output
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Kind:          "auto",
			MigrationsDir: "migrations",
			Ignore:        []string{},
		},
		Render: RenderConfig{
			Python:       "python",
			ManageScript: "manage.py",
		},
		Rules: RulesConfig{
			Disabled: []string{},
			Extra:    []ExtraRule{},
		},
		Database: DatabaseConfig{
			Type:    "postgresql",
			EnvFile: ".env",
		},
		Output: OutputConfig{
			Verbose:      false,
			ColorEnabled: true,
		},
	}
}

// Load loads configuration from file and environment variables
func Load(configPath, projectDir string) (*Config, error) {
	v := viper.New()

	// Set up environment variable binding
	v.SetEnvPrefix("CHECKMIGRATIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	// Try to read config file if it exists
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in the project folder first, then the cwd
		v.SetConfigName("checkmigrations.config")
		v.SetConfigType("yaml")
		if projectDir != "" {
			v.AddConfigPath(projectDir)
		}
		v.AddConfigPath(".")
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into our config struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads configuration or returns default if not found
func LoadOrDefault(configPath, projectDir string) *Config {
	cfg, err := Load(configPath, projectDir)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Add header comment
	header := `# Checkmigrations Configuration File
#
# This file contains configuration for the checkmigrations tool.
# All settings can be overridden using environment variables with the prefix CHECKMIGRATIONS_
# For example: CHECKMIGRATIONS_DATABASE_TYPE=mysql
#
# For nested values, use underscores: CHECKMIGRATIONS_OUTPUT_COLOR_ENABLED=false
#
# Built-in backward-compatibility rules (disable by name under rules.disabled):
#   - not-null: adding a NOT NULL constraint on a column
#   - drop-column: dropping a column a running release may still read
#   - add-column-default: adding a column with a server-side default
#

`

	// Write to file
	fullContent := []byte(header + string(data))
	if err := os.WriteFile(path, fullContent, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper, cfg *Config) {
	// Project defaults
	v.SetDefault("project.kind", cfg.Project.Kind)
	v.SetDefault("project.migrations_dir", cfg.Project.MigrationsDir)
	v.SetDefault("project.ignore", cfg.Project.Ignore)

	// Render defaults
	v.SetDefault("render.python", cfg.Render.Python)
	v.SetDefault("render.manage_script", cfg.Render.ManageScript)

	// Rules defaults
	v.SetDefault("rules.disabled", cfg.Rules.Disabled)

	// Database defaults
	v.SetDefault("database.type", cfg.Database.Type)
	v.SetDefault("database.env_file", cfg.Database.EnvFile)

	// Output defaults
	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("output.color_enabled", cfg.Output.ColorEnabled)
}

// GetConfigPath returns the default config file path inside a project folder
func GetConfigPath(projectDir string) string {
	return filepath.Join(projectDir, "checkmigrations.config.yaml")
}

// ConfigExists checks if a config file exists in the project folder
func ConfigExists(projectDir string) bool {
	_, err := os.Stat(GetConfigPath(projectDir))
	return err == nil
}
