package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     string
	OTel     OTelConfig
	Slack    SlackConfig
	Notion   NotionConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type SlackConfig struct {
	BotToken      string
	SigningSecret string
	BotUserID     string // the bot's own user id, required; stripped out of transcripts
}

type NotionConfig struct {
	APIKey     string
	DatabaseID string
}

// LLMConfig carries the default provider plus credentials for both backends.
// Only the selected provider's credentials are required at startup; the other
// backend becomes available for use_claude/use_azure switching when its
// credentials are present.
type LLMConfig struct {
	DefaultProvider string // "claude" or "azure_openai"
	MaxTokens       int

	AnthropicAPIKey string
	AnthropicModel  string

	AzureAPIKey     string
	AzureEndpoint   string
	AzureDeployment string
	AzureAPIVersion string
}

type PipelineConfig struct {
	RedisURL       string
	RedisStream    string
	RedisGroup     string
	RedisDLQStream string
	RedisConsumer  string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeWorker ServiceType = "worker"
)

// Load loads configuration from environment variables.
// In development it loads from service-specific .env files (.env.server,
// .env.worker), falling back to .env.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("THREADSCRIBE_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:  getEnv("THREADSCRIBE_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "threadscribe"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Slack: SlackConfig{
			BotToken:      getEnv("SLACK_BOT_TOKEN", ""),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
			BotUserID:     getEnv("SLACK_BOT_USER_ID", ""),
		},
		Notion: NotionConfig{
			APIKey:     getEnv("NOTION_API_KEY", ""),
			DatabaseID: getEnv("NOTION_DATABASE_ID", ""),
		},
		LLM: LLMConfig{
			DefaultProvider: getEnv("LLM_PROVIDER", "claude"),
			MaxTokens:       getEnvInt("LLM_MAX_TOKENS", 1000),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
			AzureAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
			AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
			AzureDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", "gpt-4"),
			AzureAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2023-12-01-preview"),
		},
		Pipeline: PipelineConfig{
			RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
			RedisStream:    getEnv("REDIS_STREAM", "threadscribe_mentions"),
			RedisGroup:     getEnv("REDIS_CONSUMER_GROUP", "threadscribe_group"),
			RedisDLQStream: getEnv("REDIS_DLQ_STREAM", "threadscribe_mentions_dlq"),
			RedisConsumer:  getEnv("REDIS_CONSUMER_NAME", string(serviceType)),
		},
	}

	// The bot user id is as load-bearing as the token: transcripts strip the
	// bot's own mention by it, and the ingest handler drops self-mentions by
	// it. An empty id would leak the trigger mention into every prompt.
	if cfg.Slack.BotToken == "" || cfg.Slack.SigningSecret == "" || cfg.Slack.BotUserID == "" {
		return Config{}, fmt.Errorf("SLACK_BOT_TOKEN, SLACK_SIGNING_SECRET and SLACK_BOT_USER_ID are required")
	}

	// Missing credentials for the selected backend are fatal at startup.
	// The other backend's credentials are only checked at switch time.
	switch cfg.LLM.DefaultProvider {
	case "claude":
		if cfg.LLM.AnthropicAPIKey == "" {
			return Config{}, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=claude")
		}
	case "azure_openai":
		if cfg.LLM.AzureAPIKey == "" || cfg.LLM.AzureEndpoint == "" {
			return Config{}, fmt.Errorf("AZURE_OPENAI_API_KEY and AZURE_OPENAI_ENDPOINT are required when LLM_PROVIDER=azure_openai")
		}
	default:
		return Config{}, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLM.DefaultProvider)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Enabled reports whether summaries can be persisted to Notion. Missing
// Notion configuration disables persistence but is not fatal.
func (c NotionConfig) Enabled() bool {
	return c.APIKey != "" && c.DatabaseID != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
