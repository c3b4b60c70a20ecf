package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Fields flow through context enrichment so that request context
// (request_id, channel_id, etc.) is included in every log statement without
// repeating it at each call site.
type LogFields struct {
	RequestID *int64  // summarization request id (snowflake)
	ChannelID *string // Slack channel id
	ThreadTS  *string // Slack thread timestamp
	MessageID *string // Redis stream message id
	Provider  *string // active LLM provider ("claude", "azure_openai")
	Component string  // component name, e.g. "threadscribe.pipeline"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.RequestID != nil {
		result.RequestID = next.RequestID
	}
	if next.ChannelID != nil {
		result.ChannelID = next.ChannelID
	}
	if next.ThreadTS != nil {
		result.ThreadTS = next.ThreadTS
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.Provider != nil {
		result.Provider = next.Provider
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value, for setting LogFields
// inline: logger.WithLogFields(ctx, logger.LogFields{RequestID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if
// truncated. Useful for logging potentially long strings like transcripts.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
