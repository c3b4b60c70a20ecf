package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"threadscribe.app/bot/internal/model"
)

// Notion caps multi-select options at 100 entries of 100 characters each.
const (
	maxTags      = 100
	maxTagLength = 100
)

// Record is the fully assembled document: title, property values and the
// ordered block body. Built once per request, sent once, immutable after.
// Optional properties (Keywords, ParticipantText, ParticipantTags) are
// omitted from the stored page when empty.
type Record struct {
	Title           string
	ChannelName     string
	SavedAt         time.Time
	ThreadDate      time.Time
	SourceURL       string
	Keywords        string
	ParticipantText string
	ParticipantTags []string
	Blocks          []Block
}

// Meta carries the request-scoped inputs of BuildRecord that don't come from
// the summary itself.
type Meta struct {
	ChannelName string
	ThreadTS    string
	SourceURL   string
	Keywords    string
	Now         time.Time
}

// BuildRecord serializes a summary and its participant list into a Record.
func BuildRecord(summary string, participants []model.Participant, meta Meta) Record {
	return Record{
		Title:           ExtractTitle(summary),
		ChannelName:     meta.ChannelName,
		SavedAt:         meta.Now,
		ThreadDate:      threadDate(meta.ThreadTS, meta.Now),
		SourceURL:       meta.SourceURL,
		Keywords:        meta.Keywords,
		ParticipantText: participantText(participants),
		ParticipantTags: participantTags(participants),
		Blocks:          ParseBlocks(summary),
	}
}

// threadDate derives the thread's calendar date from its Slack ts
// ("1700000000.000100" = epoch seconds). An unparsable ts falls back to now
// rather than failing the save.
func threadDate(threadTS string, now time.Time) time.Time {
	seconds := threadTS
	if idx := strings.IndexByte(threadTS, '.'); idx >= 0 {
		seconds = threadTS[:idx]
	}
	epoch, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil {
		return now
	}
	return time.Unix(epoch, 0)
}

// participantText joins "Name (email)" for every participant with a known
// email address. Empty when nobody has one; the property is then omitted.
func participantText(participants []model.Participant) string {
	var entries []string
	for _, p := range participants {
		if p.Email == "" {
			continue
		}
		entries = append(entries, fmt.Sprintf("%s (%s)", p.Name, p.Email))
	}
	return strings.Join(entries, ", ")
}

// participantTags returns display names bounded to Notion's multi-select
// limits: each name truncated to maxTagLength characters, the list capped at
// the first maxTags participants.
func participantTags(participants []model.Participant) []string {
	var tags []string
	for _, p := range participants {
		if p.Name == "" {
			continue
		}
		name := p.Name
		if runes := []rune(name); len(runes) > maxTagLength {
			name = string(runes[:maxTagLength])
		}
		tags = append(tags, name)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}
