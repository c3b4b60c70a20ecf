package worker

import (
	"context"

	"threadscribe.app/bot/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// MentionProcessor abstracts the summarization pipeline for testability.
type MentionProcessor interface {
	Process(ctx context.Context, msg queue.Message) error
}
