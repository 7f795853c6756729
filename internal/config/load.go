package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads configuration from environment variables and an optional
// config.yaml in the working directory, applies defaults, and validates the
// result. Environment variables use the SOURCELIB_ prefix with underscores
// for nesting (e.g. SOURCELIB_SERVER_PORT); the conventional provider
// variables GEMINI_API_KEY, GEMINI_MODEL, MISTRAL_API_KEY, MISTRAL_OCR_MODEL
// and MISTRAL_MODEL are also honored so deployments can reuse credentials
// they already export.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	// Registered empty so AutomaticEnv picks the key up during Unmarshal.
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("providers.max_in_flight", 100)
	v.SetDefault("providers.requests_per_second", 100)
	v.SetDefault("providers.gemini.model", "gemini-2.5-flash")
	v.SetDefault("providers.mistral.ocr_model", "mistral-ocr-latest")
	v.SetDefault("providers.mistral.chat_model", "mistral-large-latest")
	v.SetDefault("chat.default_max_context_turns", 12)

	v.SetEnvPrefix("SOURCELIB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional provider variables take effect without the prefix.
	bindings := map[string]string{
		"providers.gemini.api_key":    "GEMINI_API_KEY",
		"providers.gemini.model":      "GEMINI_MODEL",
		"providers.mistral.api_key":   "MISTRAL_API_KEY",
		"providers.mistral.ocr_model": "MISTRAL_OCR_MODEL",
		"providers.mistral.chat_model": "MISTRAL_MODEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "SOURCELIB_"+strings.ToUpper(strings.NewReplacer(".", "_").Replace(key)), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
