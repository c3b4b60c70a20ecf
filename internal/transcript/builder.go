package transcript

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"threadscribe.app/bot/internal/model"
)

var mentionToken = regexp.MustCompile(`<@([A-Z0-9]+)>`)

// Build converts a thread's messages into a flat transcript for the LLM
// prompt: one "DisplayName: text" line per authored, non-empty message,
// joined by blank lines. Message order is preserved. System and bot messages
// are skipped, inline <@UID> mention tokens are resolved to "@DisplayName",
// and the bot's own mention token is stripped so the trigger text doesn't
// leak into the summary.
func Build(ctx context.Context, messages []model.ThreadMessage, resolver UserResolver, botUserID string) string {
	var lines []string

	for _, msg := range messages {
		if !msg.Authored() {
			continue
		}

		author, err := resolver.Resolve(ctx, msg.UserID)
		if err != nil {
			slog.WarnContext(ctx, "author lookup failed, using fallback label",
				"user_id", msg.UserID, "error", err)
			author = FallbackIdentity(msg.UserID)
		}

		text := msg.Text
		if botUserID != "" {
			text = strings.ReplaceAll(text, "<@"+botUserID+">", "")
		}
		text = strings.TrimSpace(resolveMentions(ctx, text, resolver))
		if text == "" {
			continue
		}

		lines = append(lines, author.DisplayName+": "+text)
	}

	return strings.Join(lines, "\n\n")
}

// resolveMentions replaces every resolvable <@UID> token with "@DisplayName".
// Unresolvable tokens are left unchanged; that is a warning, not a failure.
// The replacement contains no mention tokens, so running the result through
// resolveMentions again is a no-op.
func resolveMentions(ctx context.Context, text string, resolver UserResolver) string {
	return mentionToken.ReplaceAllStringFunc(text, func(token string) string {
		userID := mentionToken.FindStringSubmatch(token)[1]
		identity, err := resolver.Resolve(ctx, userID)
		if err != nil {
			slog.WarnContext(ctx, "mention resolution failed, leaving token as-is",
				"user_id", userID, "error", err)
			return token
		}
		return "@" + identity.DisplayName
	})
}
