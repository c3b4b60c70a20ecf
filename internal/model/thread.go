package model

// ThreadMessage is one message of a Slack thread, taken verbatim from the
// conversations.replies response. Messages without a UserID (or with a BotID)
// are system or bot output and are excluded from transcripts and participant
// lists.
type ThreadMessage struct {
	UserID    string // empty for system/bot messages
	BotID     string // non-empty for bot messages
	Text      string // raw text, may contain <@UID> mention tokens
	Timestamp string // Slack ts, e.g. "1700000000.000100"
}

// Authored reports whether the message was written by a human user.
func (m ThreadMessage) Authored() bool {
	return m.UserID != "" && m.BotID == ""
}

// Identity is a resolved Slack user. Email may be empty: Slack only exposes
// it when the workspace admin allows it.
type Identity struct {
	ID          string
	DisplayName string
	Email       string
}

// Participant is a thread participant, unique per user id within one request.
type Participant struct {
	UserID string
	Name   string
	Email  string
}

// Channel is the subset of channel metadata the pipeline needs.
type Channel struct {
	ID   string
	Name string
}
