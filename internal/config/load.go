package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults for everything that has a sensible one. Secrets and
	// provider keys deliberately have no default.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("task.max_progress_messages", 100)
	v.SetDefault("task.retention_minutes", 60)
	v.SetDefault("task.sweep_interval_minutes", 10)
	v.SetDefault("task.stage_timeout_minutes", 30)
	v.SetDefault("cache.research_ttl_seconds", 1800)
	v.SetDefault("cache.outline_ttl_seconds", 3600)
	v.SetDefault("cache.bypass", false)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("media.dir", "./media")
	v.SetDefault("media.base_url", "/media")
	v.SetDefault("media.image_model", "imagen-3.0-generate-002")
	v.SetDefault("media.tts_endpoint", "http://localhost:5002/api/tts")
	v.SetDefault("media.ffmpeg_path", "ffmpeg")

	// Empty defaults so AutomaticEnv can see these keys during Unmarshal.
	// Validation rejects the empty values afterwards where required.
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("database.url", "")

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; environment variables carry the load.
	}

	// Environment variables with INKWELL_ prefix override file values,
	// e.g. INKWELL_SERVER_PORT maps to server.port.
	v.SetEnvPrefix("INKWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
