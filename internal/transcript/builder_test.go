package transcript_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"threadscribe.app/bot/internal/model"
	"threadscribe.app/bot/internal/transcript"
)

// mockResolver implements transcript.UserResolver for testing.
type mockResolver struct {
	identities map[string]model.Identity
	failing    map[string]error
	callCount  map[string]int
}

func newMockResolver() *mockResolver {
	return &mockResolver{
		identities: make(map[string]model.Identity),
		failing:    make(map[string]error),
		callCount:  make(map[string]int),
	}
}

func (m *mockResolver) add(userID, name, email string) {
	m.identities[userID] = model.Identity{ID: userID, DisplayName: name, Email: email}
}

func (m *mockResolver) Resolve(ctx context.Context, userID string) (model.Identity, error) {
	m.callCount[userID]++
	if err, ok := m.failing[userID]; ok {
		return model.Identity{}, err
	}
	if identity, ok := m.identities[userID]; ok {
		return identity, nil
	}
	return model.Identity{}, errors.New("user not found")
}

var _ = Describe("Build", func() {
	var (
		ctx      context.Context
		resolver *mockResolver
	)

	const botUserID = "UBOT001"

	BeforeEach(func() {
		ctx = context.Background()
		resolver = newMockResolver()
		resolver.add("U001", "Alice", "alice@example.com")
		resolver.add("U002", "Bob", "bob@example.com")
	})

	It("renders one 'Name: text' line per message joined by blank lines", func() {
		messages := []model.ThreadMessage{
			{UserID: "U001", Text: "question about deploys", Timestamp: "1700000000.000100"},
			{UserID: "U002", Text: "checking now", Timestamp: "1700000000.000200"},
		}

		out := transcript.Build(ctx, messages, resolver, botUserID)

		Expect(out).To(Equal("Alice: question about deploys\n\nBob: checking now"))
	})

	It("skips bot and system messages", func() {
		messages := []model.ThreadMessage{
			{UserID: "U001", Text: "real message"},
			{UserID: "U002", BotID: "B001", Text: "bot noise"},
			{Text: "channel join notice"},
		}

		out := transcript.Build(ctx, messages, resolver, botUserID)

		Expect(out).To(Equal("Alice: real message"))
	})

	It("strips the bot's own mention token", func() {
		messages := []model.ThreadMessage{
			{UserID: "U001", Text: "<@UBOT001> notion please"},
		}

		out := transcript.Build(ctx, messages, resolver, botUserID)

		Expect(out).To(Equal("Alice: notion please"))
	})

	It("strips the bot mention even when the bot id is resolvable", func() {
		// The bot user resolves through users.info like anyone else. The
		// strip must win over inline mention resolution, otherwise every
		// trigger message would open with "@SummaryBot" in the prompt.
		resolver.add(botUserID, "SummaryBot", "")
		messages := []model.ThreadMessage{
			{UserID: "U001", Text: "<@UBOT001> hello"},
		}

		out := transcript.Build(ctx, messages, resolver, botUserID)

		Expect(out).To(Equal("Alice: hello"))
		Expect(out).NotTo(ContainSubstring("SummaryBot"))
	})

	It("skips messages that become empty after stripping", func() {
		messages := []model.ThreadMessage{
			{UserID: "U001", Text: "<@UBOT001>"},
			{UserID: "U002", Text: "  "},
		}

		out := transcript.Build(ctx, messages, resolver, botUserID)

		Expect(out).To(BeEmpty())
	})

	It("resolves inline mentions to display names", func() {
		messages := []model.ThreadMessage{
			{UserID: "U001", Text: "ping <@U002> about this"},
		}

		out := transcript.Build(ctx, messages, resolver, botUserID)

		Expect(out).To(Equal("Alice: ping @Bob about this"))
	})

	It("leaves unresolvable mention tokens unchanged", func() {
		resolver.failing["U999"] = errors.New("users.info failed")
		messages := []model.ThreadMessage{
			{UserID: "U001", Text: "cc <@U999>"},
		}

		out := transcript.Build(ctx, messages, resolver, botUserID)

		Expect(out).To(Equal("Alice: cc <@U999>"))
	})

	It("labels authors with a fallback when lookup fails", func() {
		resolver.failing["U003"] = errors.New("users.info failed")
		messages := []model.ThreadMessage{
			{UserID: "U003", Text: "hello"},
		}

		out := transcript.Build(ctx, messages, resolver, botUserID)

		Expect(out).To(Equal("User U003: hello"))
	})

	It("preserves message order", func() {
		messages := []model.ThreadMessage{
			{UserID: "U002", Text: "first"},
			{UserID: "U001", Text: "second"},
			{UserID: "U002", Text: "third"},
		}

		out := transcript.Build(ctx, messages, resolver, botUserID)

		Expect(out).To(Equal("Bob: first\n\nAlice: second\n\nBob: third"))
	})
})

var _ = Describe("Participants", func() {
	var (
		ctx      context.Context
		resolver *mockResolver
	)

	BeforeEach(func() {
		ctx = context.Background()
		resolver = newMockResolver()
		resolver.add("U001", "Alice", "alice@example.com")
		resolver.add("U002", "Bob", "bob@example.com")
	})

	It("deduplicates by user id in order of first appearance", func() {
		messages := []model.ThreadMessage{
			{UserID: "U002", Text: "a"},
			{UserID: "U001", Text: "b"},
			{UserID: "U002", Text: "c"},
		}

		participants := transcript.Participants(ctx, messages, resolver)

		Expect(participants).To(HaveLen(2))
		Expect(participants[0].Name).To(Equal("Bob"))
		Expect(participants[1].Name).To(Equal("Alice"))
	})

	It("excludes bot and system messages", func() {
		messages := []model.ThreadMessage{
			{UserID: "U001", Text: "a"},
			{UserID: "U002", BotID: "B001", Text: "bot"},
		}

		participants := transcript.Participants(ctx, messages, resolver)

		Expect(participants).To(HaveLen(1))
		Expect(participants[0].UserID).To(Equal("U001"))
	})

	It("falls back to a placeholder with empty email on lookup failure", func() {
		resolver.failing["U003"] = errors.New("users.info failed")
		messages := []model.ThreadMessage{
			{UserID: "U003", Text: "a"},
		}

		participants := transcript.Participants(ctx, messages, resolver)

		Expect(participants).To(HaveLen(1))
		Expect(participants[0].Name).To(Equal("User U003"))
		Expect(participants[0].Email).To(BeEmpty())
	})
})

var _ = Describe("CachingResolver", func() {
	var (
		ctx      context.Context
		upstream *mockResolver
		resolver *transcript.CachingResolver
	)

	BeforeEach(func() {
		ctx = context.Background()
		upstream = newMockResolver()
		upstream.add("U001", "Alice", "alice@example.com")
		resolver = transcript.NewCachingResolver(upstream)
	})

	It("performs one upstream lookup per unique user id", func() {
		for i := 0; i < 3; i++ {
			identity, err := resolver.Resolve(ctx, "U001")
			Expect(err).NotTo(HaveOccurred())
			Expect(identity.DisplayName).To(Equal("Alice"))
		}

		Expect(upstream.callCount["U001"]).To(Equal(1))
	})

	It("caches failures as well", func() {
		upstream.failing["U404"] = errors.New("users.info failed")

		_, err1 := resolver.Resolve(ctx, "U404")
		_, err2 := resolver.Resolve(ctx, "U404")

		Expect(err1).To(HaveOccurred())
		Expect(err2).To(HaveOccurred())
		Expect(upstream.callCount["U404"]).To(Equal(1))
	})
})
