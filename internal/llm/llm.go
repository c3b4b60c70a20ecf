package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// Provider constants for LLM backend selection. These are also the values
// accepted by the use_claude / use_azure control tokens.
const (
	ProviderClaude      = "claude"
	ProviderAzureOpenAI = "azure_openai"
)

// Config holds credentials for both backends plus the selected provider.
type Config struct {
	Provider  string // "claude" or "azure_openai"
	MaxTokens int    // summary budget; 0 = default

	Anthropic AnthropicConfig
	Azure     AzureConfig
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type AzureConfig struct {
	APIKey     string
	Endpoint   string
	Deployment string
	APIVersion string
}

// Client generates thread summaries and extracts keywords from them.
// Both operations fail with a *GenerationError when the backend is
// unreachable or returns malformed output.
type Client interface {
	GenerateSummary(ctx context.Context, transcript string) (string, error)
	ExtractKeywords(ctx context.Context, summary string) (string, error)
	Provider() string
	Model() string
}

// GenerationError is a backend failure surfaced to the caller: the request
// aborts and the user sees an error message in the thread.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ConfigurationError covers an unsupported provider name or missing
// credentials for the requested provider. Fatal at startup; at switch time it
// leaves the previously active backend untouched.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("llm provider %q: %s", e.Provider, e.Reason)
}

// New builds a Client for cfg.Provider.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderClaude:
		return newClaudeClient(cfg)
	case ProviderAzureOpenAI:
		return newAzureClient(cfg)
	default:
		return nil, &ConfigurationError{Provider: cfg.Provider, Reason: "unsupported provider"}
	}
}

const maxTokensDefault = 1000

// keywordsResponse is the structured-output schema both backends use for
// keyword extraction: a forced tool call on Claude, a JSON-schema response
// format on Azure OpenAI.
type keywordsResponse struct {
	Keywords []string `json:"keywords" jsonschema_description:"Important keywords: technical terms, project names, technology names"`
}

var keywordsSchema = generateSchema[keywordsResponse]()

func generateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

const maxKeywords = 10

// formatKeywords turns the structured keyword list into the comma-separated
// string stored in the Notion キーワード property, capped at maxKeywords.
func formatKeywords(words []string) string {
	kept := make([]string, 0, maxKeywords)
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		kept = append(kept, w)
		if len(kept) == maxKeywords {
			break
		}
	}
	return strings.Join(kept, ", ")
}
