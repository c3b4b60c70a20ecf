// Package pipeline orchestrates a mention from queue message to posted
// summary: thread fetch, transcript assembly, LLM summarization and
// optional Notion persistence.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"threadscribe.app/bot/common/logger"
	"threadscribe.app/bot/internal/document"
	"threadscribe.app/bot/internal/llm"
	"threadscribe.app/bot/internal/model"
	"threadscribe.app/bot/internal/queue"
	"threadscribe.app/bot/internal/slack"
	"threadscribe.app/bot/internal/transcript"
)

// SlackGateway abstracts the Slack Web API for testability.
type SlackGateway interface {
	FetchThreadMessages(ctx context.Context, channelID, threadTS string) ([]model.ThreadMessage, error)
	GetUserProfile(ctx context.Context, userID string) (model.Identity, error)
	GetChannelInfo(ctx context.Context, channelID string) model.Channel
	PostMessage(ctx context.Context, channelID, threadTS, text string) (string, error)
	UpdateMessage(ctx context.Context, channelID, messageTS, text string) error
	BotUserID() string
}

// ProviderSwitcher abstracts the LLM backend selection.
type ProviderSwitcher interface {
	Active() llm.Client
	Provider() string
	Switch(provider string) error
}

// Persister abstracts the Notion client. A nil Persister means
// persistence is disabled and save tokens are ignored.
type Persister interface {
	SavePage(ctx context.Context, rec document.Record) (string, error)
}

type Processor struct {
	slack     SlackGateway
	llm       ProviderSwitcher
	persister Persister
}

func NewProcessor(gateway SlackGateway, switcher ProviderSwitcher, persister Persister) *Processor {
	return &Processor{
		slack:     gateway,
		llm:       switcher,
		persister: persister,
	}
}

// Process handles one mention end to end. The returned error means the
// summarization failed after the status message was posted; the failure
// has already been reported in the thread.
func (p *Processor) Process(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "bot.pipeline",
	})

	saveRequested := wantsNotionSave(msg.Text)
	saveToNotion := saveRequested && p.persister != nil
	if saveRequested && p.persister == nil {
		slog.WarnContext(ctx, "save requested but persistence is not configured")
	}

	if provider := requestedProvider(msg.Text); provider != "" {
		if err := p.llm.Switch(provider); err != nil {
			slog.ErrorContext(ctx, "provider switch failed",
				"requested_provider", provider,
				"error", err)
			p.post(ctx, msg.ChannelID, msg.ThreadTS, switchFailedPrefix+err.Error())
		} else {
			slog.InfoContext(ctx, "provider switched", "provider", provider)
		}
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Provider: logger.Ptr(p.llm.Provider()),
	})

	if msg.ThreadTS == "" {
		slog.InfoContext(ctx, "mention outside a thread, replying with usage")
		p.post(ctx, msg.ChannelID, "", helpMessage(p.llm.Provider()))
		return nil
	}

	status := statusSummarizing
	if saveToNotion {
		status += statusSaveSuffix
	}
	statusTS, err := p.slack.PostMessage(ctx, msg.ChannelID, msg.ThreadTS, status)
	if err != nil {
		return fmt.Errorf("posting status message: %w", err)
	}

	final, err := p.summarize(ctx, msg, saveToNotion)
	if err != nil {
		if updateErr := p.slack.UpdateMessage(ctx, msg.ChannelID, statusTS, errorPrefix+err.Error()); updateErr != nil {
			slog.ErrorContext(ctx, "failed to report error in thread", "error", updateErr)
		}
		return err
	}

	if err := p.slack.UpdateMessage(ctx, msg.ChannelID, statusTS, final); err != nil {
		return fmt.Errorf("updating status message with summary: %w", err)
	}

	if !msg.ReceivedAt.IsZero() {
		slog.InfoContext(ctx, "mention processed",
			"duration_ms", time.Since(msg.ReceivedAt).Milliseconds())
	} else {
		slog.InfoContext(ctx, "mention processed")
	}

	return nil
}

func (p *Processor) summarize(ctx context.Context, msg queue.Message, saveToNotion bool) (string, error) {
	messages, err := p.slack.FetchThreadMessages(ctx, msg.ChannelID, msg.ThreadTS)
	if err != nil {
		return "", fmt.Errorf("fetching thread: %w", err)
	}
	slog.InfoContext(ctx, "fetched thread", "message_count", len(messages))

	channel := p.slack.GetChannelInfo(ctx, msg.ChannelID)

	// One resolver per request so user lookups are deduplicated across
	// transcript assembly and participant extraction.
	resolver := transcript.NewCachingResolver(profileResolver{p.slack})

	text := transcript.Build(ctx, messages, resolver, p.slack.BotUserID())
	threadURL := slack.ThreadURL(msg.ChannelID, msg.ThreadTS)

	client := p.llm.Active()
	start := time.Now()
	summary, err := client.GenerateSummary(ctx, text)
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}
	slog.InfoContext(ctx, "summary generated",
		"duration_ms", time.Since(start).Milliseconds(),
		"summary_length", len(summary),
		"summary_preview", logger.Truncate(summary, 120))

	participants := transcript.Participants(ctx, messages, resolver)
	slog.InfoContext(ctx, "participants extracted", "count", len(participants))

	var notionURL string
	if saveToNotion {
		notionURL = p.persist(ctx, client, summary, participants, channel, msg.ThreadTS, threadURL)
	}

	final := summary
	if notionURL != "" {
		final += fmt.Sprintf(savedLinkFormat, notionURL)
	}
	final += fmt.Sprintf(generatedByFormat, p.llm.Provider())

	return final, nil
}

// persist extracts keywords and writes the page. Failures are absorbed:
// the summary is still delivered, just without the saved-link suffix.
func (p *Processor) persist(ctx context.Context, client llm.Client, summary string, participants []model.Participant, channel model.Channel, threadTS, threadURL string) string {
	keywords, err := client.ExtractKeywords(ctx, summary)
	if err != nil {
		slog.ErrorContext(ctx, "keyword extraction failed, skipping save", "error", err)
		return ""
	}
	slog.InfoContext(ctx, "keywords extracted", "keywords", keywords)

	rec := document.BuildRecord(summary, participants, document.Meta{
		ChannelName: channel.Name,
		ThreadTS:    threadTS,
		SourceURL:   threadURL,
		Keywords:    keywords,
		Now:         time.Now(),
	})

	url, err := p.persister.SavePage(ctx, rec)
	if err != nil {
		slog.ErrorContext(ctx, "saving page failed", "error", err)
		return ""
	}

	slog.InfoContext(ctx, "page saved", "url", url)
	return url
}

// post sends a best-effort message, logging failures instead of
// propagating them.
func (p *Processor) post(ctx context.Context, channelID, threadTS, text string) {
	if _, err := p.slack.PostMessage(ctx, channelID, threadTS, text); err != nil {
		slog.ErrorContext(ctx, "failed to post message", "error", err)
	}
}

// profileResolver adapts the Slack gateway to the transcript resolver
// interface.
type profileResolver struct {
	slack SlackGateway
}

func (r profileResolver) Resolve(ctx context.Context, userID string) (model.Identity, error) {
	return r.slack.GetUserProfile(ctx, userID)
}
