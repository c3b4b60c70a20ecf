// Package queue moves accepted mentions from the ingest server to the
// worker over a Redis stream.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"threadscribe.app/bot/internal/model"
)

type MentionMessage struct {
	RequestID  int64
	ChannelID  string
	ThreadTS   string
	EventTS    string
	UserID     string
	Text       string
	ReceivedAt time.Time
	TraceID    *string
	Attempt    int
}

func MentionMessageFrom(m model.Mention, traceID *string) MentionMessage {
	return MentionMessage{
		RequestID:  m.RequestID,
		ChannelID:  m.ChannelID,
		ThreadTS:   m.ThreadTS,
		EventTS:    m.EventTS,
		UserID:     m.UserID,
		Text:       m.Text,
		ReceivedAt: m.ReceivedAt,
		TraceID:    traceID,
	}
}

type Producer interface {
	Enqueue(ctx context.Context, msg MentionMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg MentionMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"request_id": msg.RequestID,
		"channel_id": msg.ChannelID,
		"event_ts":   msg.EventTS,
		"user_id":    msg.UserID,
		"attempt":    attempt,
	}

	if msg.ThreadTS != "" {
		fields["thread_ts"] = msg.ThreadTS
	}
	if msg.Text != "" {
		fields["text"] = msg.Text
	}
	if !msg.ReceivedAt.IsZero() {
		fields["received_at"] = msg.ReceivedAt.UTC().Format(time.RFC3339Nano)
	}
	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue mention: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued mention", "request_id", msg.RequestID, "channel_id", msg.ChannelID, "thread_ts", msg.ThreadTS, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
