package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type claudeClient struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

func newClaudeClient(cfg Config) (Client, error) {
	if cfg.Anthropic.APIKey == "" {
		return nil, &ConfigurationError{Provider: ProviderClaude, Reason: "ANTHROPIC_API_KEY is not set"}
	}

	model := cfg.Anthropic.Model
	if model == "" {
		model = "claude-3-haiku-20240307"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = maxTokensDefault
	}

	return &claudeClient{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.Anthropic.APIKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (c *claudeClient) GenerateSummary(ctx context.Context, transcript string) (string, error) {
	start := time.Now()
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: summarySystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			{
				Role:    anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(transcript)},
			},
		},
	})
	if err != nil {
		return "", &GenerationError{Provider: ProviderClaude, Err: fmt.Errorf("messages.create: %w", err)}
	}

	slog.DebugContext(ctx, "summary generated",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens)

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", &GenerationError{Provider: ProviderClaude, Err: fmt.Errorf("empty completion")}
	}

	return text, nil
}

// ExtractKeywords forces a record_keywords tool call so the model returns the
// keyword list as structured JSON instead of free text.
func (c *claudeClient) ExtractKeywords(ctx context.Context, summary string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: keywordsSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			{
				Role:    anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(summary)},
			},
		},
		Tools: []anthropic.ToolUnionParam{
			{
				OfTool: &anthropic.ToolParam{
					Name:        "record_keywords",
					Description: anthropic.String("Record the keywords extracted from the summary"),
					InputSchema: anthropic.ToolInputSchemaParam{
						Type:       "object",
						Properties: keywordsSchema.Properties,
					},
				},
			},
		},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Type: "tool", Name: "record_keywords"},
		},
	})
	if err != nil {
		return "", &GenerationError{Provider: ProviderClaude, Err: fmt.Errorf("messages.create: %w", err)}
	}

	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == "record_keywords" {
			var kw keywordsResponse
			if err := json.Unmarshal([]byte(block.Input), &kw); err != nil {
				return "", &GenerationError{Provider: ProviderClaude, Err: fmt.Errorf("parse tool input: %w", err)}
			}
			return formatKeywords(kw.Keywords), nil
		}
	}

	return "", &GenerationError{Provider: ProviderClaude, Err: fmt.Errorf("no record_keywords tool call in response")}
}

func (c *claudeClient) Provider() string {
	return ProviderClaude
}

func (c *claudeClient) Model() string {
	return c.model
}
