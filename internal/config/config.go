// Package config provides Viper-based configuration loading for the engine.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// GameConfig holds world content and session settings.
type GameConfig struct {
	// WorldDir is the directory containing world YAML files.
	WorldDir string `mapstructure:"world_dir"`
	// ScriptDir is the directory of Lua interaction scripts. Empty = scripting disabled.
	ScriptDir string `mapstructure:"script_dir"`
	// StartScene overrides the world's default start scene. Empty = use world default.
	StartScene string `mapstructure:"start_scene"`
}

// DatabaseConfig holds PostgreSQL connection settings for session snapshots.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// Enabled toggles snapshot persistence. When false the engine runs in-memory only.
	Enabled bool `mapstructure:"enabled"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// ExpansionConfig holds AI content-expansion settings.
type ExpansionConfig struct {
	// Provider selects the content generator: "anthropic" or "none".
	Provider string `mapstructure:"provider"`
	// Model is the provider model identifier.
	Model string `mapstructure:"model"`
	// MaxTokens caps the generated text length per expansion.
	MaxTokens int `mapstructure:"max_tokens"`
	// Timeout bounds a single generation call.
	Timeout time.Duration `mapstructure:"timeout"`
	// Style is the default narrative style key for expansions.
	Style string `mapstructure:"style"`
	// Preload enables background expansion of adjacent scenes on scene entry.
	Preload bool `mapstructure:"preload"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Game      GameConfig      `mapstructure:"game"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Expansion ExpansionConfig `mapstructure:"expansion"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateExpansion(c.Expansion); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	if g.WorldDir == "" {
		return errors.New("game.world_dir must not be empty")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateExpansion(e ExpansionConfig) error {
	var errs []string
	validProviders := map[string]bool{"anthropic": true, "none": true}
	if !validProviders[e.Provider] {
		errs = append(errs, fmt.Sprintf("expansion.provider must be one of [anthropic, none], got %q", e.Provider))
	}
	if e.Provider != "none" && e.Model == "" {
		errs = append(errs, "expansion.model must not be empty when a provider is configured")
	}
	if e.MaxTokens < 1 {
		errs = append(errs, fmt.Sprintf("expansion.max_tokens must be >= 1, got %d", e.MaxTokens))
	}
	if e.Timeout <= 0 {
		errs = append(errs, "expansion.timeout must be positive")
	}
	if e.Style == "" {
		errs = append(errs, "expansion.style must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with LANTERN_ prefix
	v.SetEnvPrefix("LANTERN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.world_dir", "content/world")
	v.SetDefault("game.script_dir", "content/scripts")
	v.SetDefault("game.start_scene", "")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "lantern")
	v.SetDefault("database.password", "lantern")
	v.SetDefault("database.name", "lantern")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("expansion.provider", "none")
	v.SetDefault("expansion.model", "claude-sonnet-4-5")
	v.SetDefault("expansion.max_tokens", 512)
	v.SetDefault("expansion.timeout", "30s")
	v.SetDefault("expansion.style", "classic")
	v.SetDefault("expansion.preload", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
