package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Task     TaskConfig     `mapstructure:"task"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Media    MediaConfig    `mapstructure:"media"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains settings for the auxiliary asset store.
// The URL may be empty, in which case asset tracking is disabled and
// generated content is only available through task results.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name" validate:"required"`

	// MaxRetries is the number of attempts for transient provider errors.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// RetryDelaySeconds is the base delay between retries (exponential backoff).
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}

// TaskConfig contains settings for the background task registry and executor.
type TaskConfig struct {
	// MaxProgressMessages caps the per-task progress message history.
	// The oldest messages are discarded once the cap is reached.
	MaxProgressMessages int `mapstructure:"max_progress_messages" validate:"gt=0"`

	// RetentionMinutes is how long completed or failed tasks remain
	// queryable before the retention sweep evicts them.
	RetentionMinutes int `mapstructure:"retention_minutes" validate:"gt=0"`

	// SweepIntervalMinutes is how often the retention sweep runs.
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"gt=0"`

	// StageTimeoutMinutes bounds each pipeline stage. Zero disables the
	// per-stage timeout.
	StageTimeoutMinutes int `mapstructure:"stage_timeout_minutes" validate:"gte=0"`
}

// MediaConfig contains settings for generated media storage and the
// media providers used by the story and podcast pipelines.
type MediaConfig struct {
	// Dir is the local directory generated assets are written to.
	Dir string `mapstructure:"dir" validate:"required"`

	// BaseURL is the URL prefix under which stored assets are served.
	BaseURL string `mapstructure:"base_url"`

	// ImageModel is the Imagen model used for scene images.
	ImageModel string `mapstructure:"image_model" validate:"required"`

	// TTSEndpoint is the HTTP text-to-speech endpoint.
	TTSEndpoint string `mapstructure:"tts_endpoint" validate:"required,url"`

	// FFmpegPath locates the ffmpeg binary used for video composition.
	FFmpegPath string `mapstructure:"ffmpeg_path" validate:"required"`
}

// CacheConfig contains settings for the result caches.
type CacheConfig struct {
	// ResearchTTLSeconds is the TTL for cached research results.
	ResearchTTLSeconds int `mapstructure:"research_ttl_seconds" validate:"gt=0"`

	// OutlineTTLSeconds is the TTL for cached outline results.
	OutlineTTLSeconds int `mapstructure:"outline_ttl_seconds" validate:"gt=0"`

	// Bypass forces every cache read to miss. Writes still happen.
	// Useful when debugging stale-result reports in production.
	Bypass bool `mapstructure:"bypass"`

	// RedisURL selects the redis cache backend when non-empty.
	// Single-process deployments leave it empty and use the in-memory backend.
	RedisURL string `mapstructure:"redis_url"`
}
