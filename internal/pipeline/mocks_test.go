package pipeline_test

import (
	"context"
	"errors"

	"threadscribe.app/bot/internal/document"
	"threadscribe.app/bot/internal/llm"
	"threadscribe.app/bot/internal/model"
)

type postedMessage struct {
	ChannelID string
	ThreadTS  string
	Text      string
}

type updatedMessage struct {
	ChannelID string
	MessageTS string
	Text      string
}

// mockGateway implements pipeline.SlackGateway.
type mockGateway struct {
	messages  []model.ThreadMessage
	fetchErr  error
	channel   model.Channel
	profiles  map[string]model.Identity
	postErr   error
	updateErr error

	posts   []postedMessage
	updates []updatedMessage
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		channel:  model.Channel{ID: "C001", Name: "general"},
		profiles: map[string]model.Identity{},
	}
}

func (m *mockGateway) FetchThreadMessages(ctx context.Context, channelID, threadTS string) ([]model.ThreadMessage, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.messages, nil
}

func (m *mockGateway) GetUserProfile(ctx context.Context, userID string) (model.Identity, error) {
	if identity, ok := m.profiles[userID]; ok {
		return identity, nil
	}
	return model.Identity{}, errors.New("user not found")
}

func (m *mockGateway) GetChannelInfo(ctx context.Context, channelID string) model.Channel {
	return m.channel
}

func (m *mockGateway) PostMessage(ctx context.Context, channelID, threadTS, text string) (string, error) {
	if m.postErr != nil {
		return "", m.postErr
	}
	m.posts = append(m.posts, postedMessage{ChannelID: channelID, ThreadTS: threadTS, Text: text})
	return "1700000001.000001", nil
}

func (m *mockGateway) UpdateMessage(ctx context.Context, channelID, messageTS, text string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, updatedMessage{ChannelID: channelID, MessageTS: messageTS, Text: text})
	return nil
}

func (m *mockGateway) BotUserID() string {
	return "UBOT001"
}

// mockLLMClient implements llm.Client.
type mockLLMClient struct {
	provider    string
	summary     string
	summaryErr  error
	keywords    string
	keywordsErr error

	summaryCalls  int
	keywordsCalls int
	lastTranscript string
}

func (m *mockLLMClient) GenerateSummary(ctx context.Context, transcript string) (string, error) {
	m.summaryCalls++
	m.lastTranscript = transcript
	if m.summaryErr != nil {
		return "", m.summaryErr
	}
	return m.summary, nil
}

func (m *mockLLMClient) ExtractKeywords(ctx context.Context, summary string) (string, error) {
	m.keywordsCalls++
	if m.keywordsErr != nil {
		return "", m.keywordsErr
	}
	return m.keywords, nil
}

func (m *mockLLMClient) Provider() string { return m.provider }
func (m *mockLLMClient) Model() string    { return "mock-model" }

// mockSwitcher implements pipeline.ProviderSwitcher.
type mockSwitcher struct {
	client    *mockLLMClient
	switchErr error
	switched  []string
}

func (m *mockSwitcher) Active() llm.Client { return m.client }
func (m *mockSwitcher) Provider() string   { return m.client.provider }

func (m *mockSwitcher) Switch(provider string) error {
	if m.switchErr != nil {
		return m.switchErr
	}
	m.switched = append(m.switched, provider)
	m.client.provider = provider
	return nil
}

// mockPersister implements pipeline.Persister.
type mockPersister struct {
	url     string
	saveErr error
	saved   []document.Record
}

func (m *mockPersister) SavePage(ctx context.Context, rec document.Record) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = append(m.saved, rec)
	return m.url, nil
}
