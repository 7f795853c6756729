// Package config loads and validates application configuration from the
// process environment (and an optional config file), using viper for
// precedence handling and go-playground/validator for validation.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Chat      ChatConfig      `mapstructure:"chat"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// AuthConfig contains authentication settings. An empty JWTSecret disables
// the bearer-token middleware entirely; token issuance lives outside this
// service either way.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
}

// ProvidersConfig groups the settings of every known AI backend. A provider
// with no API key is simply unavailable; it is excluded from the registry at
// startup instead of failing the process.
type ProvidersConfig struct {
	// MaxInFlight caps simultaneous generation calls per provider.
	MaxInFlight int64 `mapstructure:"max_in_flight" validate:"gte=0"`

	// RequestsPerSecond caps the per-provider call rate.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`

	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Mistral MistralConfig `mapstructure:"mistral"`
}

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// MistralConfig configures the Mistral client.
type MistralConfig struct {
	APIKey    string `mapstructure:"api_key"`
	OCRModel  string `mapstructure:"ocr_model"`
	ChatModel string `mapstructure:"chat_model"`
}

// ChatConfig contains chat orchestration settings.
type ChatConfig struct {
	// DefaultMaxContextTurns is the transcript window used when a request
	// does not specify one.
	DefaultMaxContextTurns int `mapstructure:"default_max_context_turns" validate:"gte=0"`
}
