package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT" validate:"required"`
	GrpcPort      string `mapstructure:"GRPC_PORT"`
	LogLevel      string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	IsLocalCors   bool   `mapstructure:"LOCAL_CORS"`
	RedisUrl      string `mapstructure:"REDIS_URL"`
	MongoUri      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE" validate:"required"`

	GroqApiKey      string `mapstructure:"GROQ_API_KEY"`
	OpenAiApiKey    string `mapstructure:"OPENAI_API_KEY"`
	AnthropicApiKey string `mapstructure:"ANTHROPIC_API_KEY"`
	MistralApiKey   string `mapstructure:"MISTRAL_API_KEY"`
	OpenAiBaseUrl   string `mapstructure:"OPENAI_BASE_URL"`

	WhiteProvider string `mapstructure:"WHITE_PROVIDER" validate:"oneof=groq openai anthropic mistral"`
	WhiteModel    string `mapstructure:"WHITE_MODEL"`
	BlackProvider string `mapstructure:"BLACK_PROVIDER" validate:"oneof=groq openai anthropic mistral"`
	BlackModel    string `mapstructure:"BLACK_MODEL"`

	LlmMaxTokens   int           `mapstructure:"LLM_MAX_TOKENS" validate:"gt=0"`
	LlmTemperature float64       `mapstructure:"LLM_TEMPERATURE" validate:"gte=0,lte=2"`
	MoveTimeout    time.Duration `mapstructure:"MOVE_TIMEOUT" validate:"gt=0"`
	MaxAttempts    int           `mapstructure:"MAX_ATTEMPTS" validate:"gte=1"`
	TurnDelay      time.Duration `mapstructure:"TURN_DELAY" validate:"gte=0"`
	MaxPlies       int           `mapstructure:"MAX_PLIES" validate:"gte=0"`
	ClaimDraws     bool          `mapstructure:"CLAIM_DRAWS"`
	ArchiveLimit   int           `mapstructure:"ARCHIVE_LIMIT" validate:"gt=0"`
}

var defaults = map[string]any{
	"SERVER_PORT":       "8080",
	"GRPC_PORT":         "8082",
	"LOG_LEVEL":         "info",
	"LOCAL_CORS":        false,
	"REDIS_URL":         "",
	"MONGO_URI":         "",
	"MONGO_DATABASE":    "ai_chess",
	"GROQ_API_KEY":      "",
	"OPENAI_API_KEY":    "",
	"ANTHROPIC_API_KEY": "",
	"MISTRAL_API_KEY":   "",
	"OPENAI_BASE_URL":   "",
	"WHITE_PROVIDER":    "groq",
	"WHITE_MODEL":       "",
	"BLACK_PROVIDER":    "groq",
	"BLACK_MODEL":       "",
	"LLM_MAX_TOKENS":    100,
	"LLM_TEMPERATURE":   0.7,
	"MOVE_TIMEOUT":      "30s",
	"MAX_ATTEMPTS":      3,
	"TURN_DELAY":        "500ms",
	"MAX_PLIES":         0,
	"CLAIM_DRAWS":       true,
	"ARCHIVE_LIMIT":     20,
}

// Setup reads cfgPath (a dotenv file) when it exists; environment variables
// always take precedence over the file.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err == nil {
			v.SetConfigFile(cfgPath)
			v.SetConfigType("env")
			if err = v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	cfg.WhiteProvider = strings.ToLower(cfg.WhiteProvider)
	cfg.BlackProvider = strings.ToLower(cfg.BlackProvider)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err = validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ApiKey returns the key configured for provider.
func (c *Config) ApiKey(provider string) string {
	switch provider {
	case "groq":
		return c.GroqApiKey
	case "openai":
		return c.OpenAiApiKey
	case "anthropic":
		return c.AnthropicApiKey
	case "mistral":
		return c.MistralApiKey
	}
	return ""
}
