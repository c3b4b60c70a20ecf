package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"go.opentelemetry.io/otel/trace"

	"threadscribe.app/bot/common/id"
	"threadscribe.app/bot/common/logger"
	"threadscribe.app/bot/internal/http/dto"
	"threadscribe.app/bot/internal/model"
	"threadscribe.app/bot/internal/queue"
)

// EventsHandler receives Slack Events API callbacks. It verifies the
// request signature, answers URL verification challenges and enqueues
// app mentions for the worker. Slack expects an ack within 3 seconds,
// so nothing heavier than an XADD happens here.
type EventsHandler struct {
	producer      queue.Producer
	signingSecret string
	botUserID     string
}

func NewEventsHandler(producer queue.Producer, signingSecret, botUserID string) *EventsHandler {
	return &EventsHandler{
		producer:      producer,
		signingSecret: signingSecret,
		botUserID:     botUserID,
	}
}

func (h *EventsHandler) HandleEvent(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.WarnContext(ctx, "failed to read event body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	verifier, err := slackapi.NewSecretsVerifier(c.Request.Header, h.signingSecret)
	if err != nil {
		slog.WarnContext(ctx, "missing signature headers", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	if _, err := verifier.Write(body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	if err := verifier.Ensure(); err != nil {
		slog.WarnContext(ctx, "signature verification failed", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		slog.WarnContext(ctx, "failed to parse event", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge"})
			return
		}
		c.String(http.StatusOK, challenge.Challenge)

	case slackevents.CallbackEvent:
		h.handleCallback(c, event)

	default:
		slog.DebugContext(ctx, "ignoring event", "type", event.Type)
		c.Status(http.StatusOK)
	}
}

func (h *EventsHandler) handleCallback(c *gin.Context, event slackevents.EventsAPIEvent) {
	ctx := c.Request.Context()

	mentionEvent, ok := event.InnerEvent.Data.(*slackevents.AppMentionEvent)
	if !ok {
		slog.DebugContext(ctx, "ignoring callback event", "type", event.InnerEvent.Type)
		c.Status(http.StatusOK)
		return
	}

	// Mentions in messages the bot itself posted would loop forever.
	if mentionEvent.User == "" || mentionEvent.User == h.botUserID {
		slog.DebugContext(ctx, "ignoring self mention")
		c.Status(http.StatusOK)
		return
	}

	mention := model.Mention{
		RequestID:  id.New(),
		ChannelID:  mentionEvent.Channel,
		ThreadTS:   mentionEvent.ThreadTimeStamp,
		EventTS:    mentionEvent.TimeStamp,
		UserID:     mentionEvent.User,
		Text:       mentionEvent.Text,
		ReceivedAt: time.Now(),
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RequestID: logger.Ptr(mention.RequestID),
		ChannelID: logger.Ptr(mention.ChannelID),
		ThreadTS:  logger.Ptr(mention.ThreadTS),
	})

	var traceID *string
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		traceID = logger.Ptr(spanCtx.TraceID().String())
	}

	if err := h.producer.Enqueue(ctx, queue.MentionMessageFrom(mention, traceID)); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue mention", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue"})
		return
	}

	slog.InfoContext(ctx, "mention accepted",
		"user_id", mention.UserID,
		"threaded", mention.Threaded())
	c.JSON(http.StatusOK, dto.EventAckResponse{Ok: true})
}
