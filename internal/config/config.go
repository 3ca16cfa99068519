// Package config loads engine settings from environment variables (with
// the BLOOM_ prefix) and optional config files via viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ModelConfig holds settings for the model-inference collaborator.
type ModelConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	APIKey        string `mapstructure:"api_key"`
	VisionModel   string `mapstructure:"vision_model"`
	PrimaryModel  string `mapstructure:"primary_model"`
	FallbackModel string `mapstructure:"fallback_model"`

	// Per-task timeouts, milliseconds. The source left these unbounded;
	// here they are explicit configuration.
	ObserveTimeoutMs     int `mapstructure:"observe_timeout_ms"`
	DiagnoseTimeoutMs    int `mapstructure:"diagnose_timeout_ms"`
	RecalibrateTimeoutMs int `mapstructure:"recalibrate_timeout_ms"`

	MaxRetries int  `mapstructure:"max_retries"`
	LogCalls   bool `mapstructure:"log_calls"`
}

// ReminderConfig holds scheduler settings.
type ReminderConfig struct {
	// MaxNags caps how many times an overdue watering reminder is re-sent.
	// 0 means nag forever, matching the source behavior.
	MaxNags int `mapstructure:"max_nags"`

	// Timezone used for calendar-day comparisons in the sweep.
	Timezone string `mapstructure:"timezone"`
}

// Config is the root engine configuration.
type Config struct {
	DBPath   string         `mapstructure:"db_path"`
	BotToken string         `mapstructure:"bot_token"`
	Model    ModelConfig    `mapstructure:"model"`
	Reminder ReminderConfig `mapstructure:"reminder"`

	// PendingTTLMinutes bounds how long an unsaved analysis stays cached.
	PendingTTLMinutes int `mapstructure:"pending_ttl_minutes"`
}

// Load reads configuration from the environment (BLOOM_ prefix, dots as
// underscores) with defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BLOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Reminder.Timezone); err != nil {
		return nil, fmt.Errorf("invalid reminder timezone %q: %w", cfg.Reminder.Timezone, err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "")
	v.SetDefault("bot_token", "")

	v.SetDefault("model.endpoint", "https://api.openai.com/v1")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.vision_model", "gpt-4o")
	v.SetDefault("model.primary_model", "gpt-4o")
	v.SetDefault("model.fallback_model", "gpt-4o-mini")
	v.SetDefault("model.observe_timeout_ms", 60000)
	v.SetDefault("model.diagnose_timeout_ms", 60000)
	v.SetDefault("model.recalibrate_timeout_ms", 20000)
	v.SetDefault("model.max_retries", 1)
	v.SetDefault("model.log_calls", false)

	v.SetDefault("reminder.max_nags", 0)
	v.SetDefault("reminder.timezone", "Europe/Moscow")

	v.SetDefault("pending_ttl_minutes", 30)
}

// Location resolves the configured reminder timezone. Load has already
// validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reminder.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
