package model

import "time"

// Mention is one inbound "bot mentioned" event, as delivered by the Slack
// Events API and queued for the worker.
type Mention struct {
	RequestID  int64 // snowflake id assigned at ingest
	ChannelID  string
	ThreadTS   string // parent thread ts; empty when the mention is not in a thread
	EventTS    string // ts of the mention message itself
	UserID     string // author of the mention
	Text       string // raw mention text, scanned for control tokens
	ReceivedAt time.Time
}

// Threaded reports whether the mention happened inside a thread. Only
// threaded mentions run the summarization pipeline; the rest get a help
// message.
func (m Mention) Threaded() bool {
	return m.ThreadTS != ""
}
