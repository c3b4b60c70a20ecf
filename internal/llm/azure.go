package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
)

type azureClient struct {
	client     openai.Client
	deployment string
	maxTokens  int
}

func newAzureClient(cfg Config) (Client, error) {
	if cfg.Azure.APIKey == "" || cfg.Azure.Endpoint == "" {
		return nil, &ConfigurationError{Provider: ProviderAzureOpenAI, Reason: "AZURE_OPENAI_API_KEY and AZURE_OPENAI_ENDPOINT are not both set"}
	}

	deployment := cfg.Azure.Deployment
	if deployment == "" {
		deployment = "gpt-4"
	}

	apiVersion := cfg.Azure.APIVersion
	if apiVersion == "" {
		apiVersion = "2023-12-01-preview"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = maxTokensDefault
	}

	return &azureClient{
		client: openai.NewClient(
			azure.WithEndpoint(cfg.Azure.Endpoint, apiVersion),
			azure.WithAPIKey(cfg.Azure.APIKey),
		),
		deployment: deployment,
		maxTokens:  maxTokens,
	}, nil
}

func (c *azureClient) GenerateSummary(ctx context.Context, transcript string) (string, error) {
	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.deployment,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summarySystemPrompt),
			openai.UserMessage(transcript),
		},
		MaxTokens: openai.Int(int64(c.maxTokens)),
	})
	if err != nil {
		return "", &GenerationError{Provider: ProviderAzureOpenAI, Err: fmt.Errorf("chat completion: %w", err)}
	}

	slog.DebugContext(ctx, "summary generated",
		"model", c.deployment,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &GenerationError{Provider: ProviderAzureOpenAI, Err: fmt.Errorf("empty completion")}
	}

	return resp.Choices[0].Message.Content, nil
}

// ExtractKeywords uses the JSON-schema response format so the model returns
// the keyword list as structured JSON instead of free text.
func (c *azureClient) ExtractKeywords(ctx context.Context, summary string) (string, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "keywords_response",
		Description: openai.String("Keywords extracted from the summary"),
		Schema:      keywordsSchema,
		Strict:      openai.Bool(true),
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.deployment,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(keywordsSystemPrompt),
			openai.UserMessage(summary),
		},
		MaxTokens: openai.Int(256),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return "", &GenerationError{Provider: ProviderAzureOpenAI, Err: fmt.Errorf("chat completion: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Provider: ProviderAzureOpenAI, Err: fmt.Errorf("no choices in response")}
	}

	var kw keywordsResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &kw); err != nil {
		return "", &GenerationError{Provider: ProviderAzureOpenAI, Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	return formatKeywords(kw.Keywords), nil
}

func (c *azureClient) Provider() string {
	return ProviderAzureOpenAI
}

func (c *azureClient) Model() string {
	return c.deployment
}
