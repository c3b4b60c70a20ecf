package slack

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	slackapi "github.com/slack-go/slack"

	"threadscribe.app/bot/internal/model"
)

// FetchError wraps failures of the Slack Web API: transport errors and
// malformed responses alike. A FetchError on the thread fetch aborts the
// current request.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("slack %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client wraps the Slack Web API operations the pipeline needs.
type Client struct {
	api       *slackapi.Client
	botUserID string
}

func New(botToken, botUserID string) *Client {
	return &Client{
		api:       slackapi.New(botToken),
		botUserID: botUserID,
	}
}

// BotUserID returns the bot's own user id, whose mention token is stripped
// from transcripts.
func (c *Client) BotUserID() string {
	return c.botUserID
}

// FetchThreadMessages returns all messages of a thread in reply order,
// following pagination cursors.
func (c *Client) FetchThreadMessages(ctx context.Context, channelID, threadTS string) ([]model.ThreadMessage, error) {
	var messages []model.ThreadMessage
	cursor := ""

	for {
		msgs, hasMore, nextCursor, err := c.api.GetConversationRepliesContext(ctx, &slackapi.GetConversationRepliesParameters{
			ChannelID: channelID,
			Timestamp: threadTS,
			Limit:     200,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, &FetchError{Op: "conversations.replies", Err: err}
		}

		for _, m := range msgs {
			messages = append(messages, model.ThreadMessage{
				UserID:    m.User,
				BotID:     m.BotID,
				Text:      m.Text,
				Timestamp: m.Timestamp,
			})
		}

		if !hasMore {
			return messages, nil
		}
		cursor = nextCursor
	}
}

// GetUserProfile resolves a user id to an Identity.
func (c *Client) GetUserProfile(ctx context.Context, userID string) (model.Identity, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return model.Identity{}, &FetchError{Op: "users.info", Err: err}
	}

	name := user.RealName
	if name == "" {
		name = user.Name
	}

	return model.Identity{
		ID:          user.ID,
		DisplayName: name,
		Email:       user.Profile.Email,
	}, nil
}

// GetChannelInfo resolves channel metadata. DMs and group messages have no
// channel record, and a lookup failure must not abort a summarization, so
// every branch degrades to a placeholder name.
func (c *Client) GetChannelInfo(ctx context.Context, channelID string) model.Channel {
	switch {
	case strings.HasPrefix(channelID, "C"):
		channel, err := c.api.GetConversationInfoContext(ctx, &slackapi.GetConversationInfoInput{
			ChannelID: channelID,
		})
		if err != nil {
			slog.WarnContext(ctx, "channel info lookup failed", "channel_id", channelID, "error", err)
			return model.Channel{ID: channelID, Name: "channel-" + channelID}
		}
		return model.Channel{ID: channelID, Name: channel.Name}
	case strings.HasPrefix(channelID, "D"):
		return model.Channel{ID: channelID, Name: "direct-message"}
	case strings.HasPrefix(channelID, "G"):
		return model.Channel{ID: channelID, Name: "group-message"}
	default:
		slog.WarnContext(ctx, "unknown channel id prefix", "channel_id", channelID)
		return model.Channel{ID: channelID, Name: "unknown-channel-" + channelID}
	}
}

// PostMessage posts a message into a thread and returns its timestamp, which
// serves as the handle for later edits.
func (c *Client) PostMessage(ctx context.Context, channelID, threadTS, text string) (string, error) {
	opts := []slackapi.MsgOption{slackapi.MsgOptionText(text, false)}
	if threadTS != "" {
		opts = append(opts, slackapi.MsgOptionTS(threadTS))
	}

	_, ts, err := c.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", &FetchError{Op: "chat.postMessage", Err: err}
	}
	return ts, nil
}

// UpdateMessage replaces the text of a previously posted message in place.
func (c *Client) UpdateMessage(ctx context.Context, channelID, messageTS, text string) error {
	_, _, _, err := c.api.UpdateMessageContext(ctx, channelID, messageTS, slackapi.MsgOptionText(text, false))
	if err != nil {
		return &FetchError{Op: "chat.update", Err: err}
	}
	return nil
}

// ThreadURL builds the permalink of a thread from its channel id and ts.
func ThreadURL(channelID, threadTS string) string {
	return fmt.Sprintf("https://slack.com/archives/%s/p%s", channelID, strings.ReplaceAll(threadTS, ".", ""))
}
