package transcript

import (
	"context"
	"log/slog"

	"threadscribe.app/bot/internal/model"
)

// Participants derives the de-duplicated participant list of a thread,
// in order of first appearance. Lookup failures fall back to the placeholder
// label with an empty email, same as the transcript builder.
func Participants(ctx context.Context, messages []model.ThreadMessage, resolver UserResolver) []model.Participant {
	var participants []model.Participant
	seen := make(map[string]struct{})

	for _, msg := range messages {
		if !msg.Authored() {
			continue
		}
		if _, ok := seen[msg.UserID]; ok {
			continue
		}
		seen[msg.UserID] = struct{}{}

		identity, err := resolver.Resolve(ctx, msg.UserID)
		if err != nil {
			slog.WarnContext(ctx, "participant lookup failed, using fallback label",
				"user_id", msg.UserID, "error", err)
			identity = FallbackIdentity(msg.UserID)
		}

		participants = append(participants, model.Participant{
			UserID: msg.UserID,
			Name:   identity.DisplayName,
			Email:  identity.Email,
		})
	}

	return participants
}
