package pipeline_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"threadscribe.app/bot/internal/llm"
	"threadscribe.app/bot/internal/model"
	"threadscribe.app/bot/internal/pipeline"
	"threadscribe.app/bot/internal/queue"
)

var _ = Describe("Processor", func() {
	var (
		ctx       context.Context
		gateway   *mockGateway
		client    *mockLLMClient
		switcher  *mockSwitcher
		persister *mockPersister
		processor *pipeline.Processor
	)

	threadedMessage := func(text string) queue.Message {
		return queue.Message{
			ID:         "1-0",
			RequestID:  42,
			ChannelID:  "C001",
			ThreadTS:   "1700000000.000100",
			EventTS:    "1700000000.000500",
			UserID:     "U001",
			Text:       text,
			ReceivedAt: time.Now(),
			Attempt:    1,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		gateway = newMockGateway()
		gateway.messages = []model.ThreadMessage{
			{UserID: "U001", Text: "deploy is broken", Timestamp: "1700000000.000100"},
			{UserID: "U002", Text: "looking into it", Timestamp: "1700000000.000200"},
		}
		gateway.profiles["U001"] = model.Identity{ID: "U001", DisplayName: "Alice", Email: "alice@example.com"}
		gateway.profiles["U002"] = model.Identity{ID: "U002", DisplayName: "Bob", Email: "bob@example.com"}

		client = &mockLLMClient{
			provider: llm.ProviderClaude,
			summary:  "## スレッド要約\n- **主題**: デプロイ障害\n\n## 結論/次のアクション\n- ロールバック",
			keywords: "デプロイ, ロールバック",
		}
		switcher = &mockSwitcher{client: client}
		persister = &mockPersister{url: "https://notion.so/page123"}
		processor = pipeline.NewProcessor(gateway, switcher, persister)
	})

	Context("mention outside a thread", func() {
		It("replies with usage and the current provider", func() {
			msg := threadedMessage("<@UBOT001> hello")
			msg.ThreadTS = ""

			err := processor.Process(ctx, msg)

			Expect(err).NotTo(HaveOccurred())
			Expect(gateway.posts).To(HaveLen(1))
			Expect(gateway.posts[0].ThreadTS).To(BeEmpty())
			Expect(gateway.posts[0].Text).To(ContainSubstring("スレッド内で"))
			Expect(gateway.posts[0].Text).To(ContainSubstring("use_claude"))
			Expect(gateway.posts[0].Text).To(ContainSubstring("*claude*"))
			Expect(gateway.updates).To(BeEmpty())
			Expect(client.summaryCalls).To(Equal(0))
		})
	})

	Context("threaded mention", func() {
		It("posts a status message then edits it into the summary", func() {
			err := processor.Process(ctx, threadedMessage("<@UBOT001>"))

			Expect(err).NotTo(HaveOccurred())
			Expect(gateway.posts).To(HaveLen(1))
			Expect(gateway.posts[0].ThreadTS).To(Equal("1700000000.000100"))
			Expect(gateway.posts[0].Text).To(Equal("スレッドを要約しています..."))

			Expect(gateway.updates).To(HaveLen(1))
			Expect(gateway.updates[0].Text).To(ContainSubstring("デプロイ障害"))
			Expect(gateway.updates[0].Text).To(HaveSuffix("_Generated by: claude_"))
			Expect(gateway.updates[0].Text).NotTo(ContainSubstring("Notion"))
		})

		It("feeds the resolved transcript to the LLM", func() {
			err := processor.Process(ctx, threadedMessage("<@UBOT001>"))

			Expect(err).NotTo(HaveOccurred())
			Expect(client.lastTranscript).To(ContainSubstring("Alice:"))
			Expect(client.lastTranscript).To(ContainSubstring("Bob: looking into it"))
		})

		It("edits the status message with the error detail when summarization fails", func() {
			client.summaryErr = errors.New("claude generation: overloaded")

			err := processor.Process(ctx, threadedMessage("<@UBOT001>"))

			Expect(err).To(HaveOccurred())
			Expect(gateway.updates).To(HaveLen(1))
			Expect(gateway.updates[0].Text).To(HavePrefix("スレッドの要約中にエラーが発生しました: "))
			Expect(gateway.updates[0].Text).To(ContainSubstring("overloaded"))
		})

		It("fails when the thread cannot be fetched", func() {
			gateway.fetchErr = errors.New("conversations.replies: channel_not_found")

			err := processor.Process(ctx, threadedMessage("<@UBOT001>"))

			Expect(err).To(HaveOccurred())
			Expect(gateway.updates).To(HaveLen(1))
			Expect(gateway.updates[0].Text).To(HavePrefix("スレッドの要約中にエラーが発生しました: "))
		})
	})

	Context("save token", func() {
		It("announces the save, persists the record and appends the page link", func() {
			err := processor.Process(ctx, threadedMessage("<@UBOT001> notion"))

			Expect(err).NotTo(HaveOccurred())
			Expect(gateway.posts[0].Text).To(Equal("スレッドを要約しています...\nNotionにも保存します。"))

			Expect(client.keywordsCalls).To(Equal(1))
			Expect(persister.saved).To(HaveLen(1))
			Expect(persister.saved[0].Title).To(Equal("デプロイ障害"))
			Expect(persister.saved[0].ChannelName).To(Equal("general"))
			Expect(persister.saved[0].Keywords).To(Equal("デプロイ, ロールバック"))
			Expect(persister.saved[0].SourceURL).To(Equal("https://slack.com/archives/C001/p1700000000000100"))

			Expect(gateway.updates[0].Text).To(ContainSubstring("*<https://notion.so/page123|📝 Notionにも保存しました>*"))
		})

		It("recognizes the katakana token", func() {
			err := processor.Process(ctx, threadedMessage("<@UBOT001> ノーション"))

			Expect(err).NotTo(HaveOccurred())
			Expect(persister.saved).To(HaveLen(1))
		})

		It("still delivers the summary when persistence fails", func() {
			persister.saveErr = errors.New("notion: page creation failed with status 502")

			err := processor.Process(ctx, threadedMessage("<@UBOT001> notion"))

			Expect(err).NotTo(HaveOccurred())
			Expect(gateway.updates).To(HaveLen(1))
			Expect(gateway.updates[0].Text).To(ContainSubstring("デプロイ障害"))
			Expect(gateway.updates[0].Text).NotTo(ContainSubstring("Notionにも保存しました"))
		})

		It("still delivers the summary when keyword extraction fails", func() {
			client.keywordsErr = errors.New("claude generation: malformed tool output")

			err := processor.Process(ctx, threadedMessage("<@UBOT001> notion"))

			Expect(err).NotTo(HaveOccurred())
			Expect(persister.saved).To(BeEmpty())
			Expect(gateway.updates[0].Text).To(ContainSubstring("デプロイ障害"))
			Expect(gateway.updates[0].Text).NotTo(ContainSubstring("Notionにも保存しました"))
		})

		It("ignores the token when persistence is not configured", func() {
			processor = pipeline.NewProcessor(gateway, switcher, nil)

			err := processor.Process(ctx, threadedMessage("<@UBOT001> notion"))

			Expect(err).NotTo(HaveOccurred())
			Expect(client.keywordsCalls).To(Equal(0))
			Expect(gateway.posts[0].Text).To(Equal("スレッドを要約しています..."))
		})
	})

	Context("switch tokens", func() {
		It("switches the backend before summarizing", func() {
			err := processor.Process(ctx, threadedMessage("<@UBOT001> use_azure"))

			Expect(err).NotTo(HaveOccurred())
			Expect(switcher.switched).To(Equal([]string{llm.ProviderAzureOpenAI}))
			Expect(gateway.updates[0].Text).To(HaveSuffix("_Generated by: azure_openai_"))
		})

		It("recognizes the katakana switch tokens", func() {
			client.provider = llm.ProviderAzureOpenAI

			err := processor.Process(ctx, threadedMessage("<@UBOT001> クロード"))

			Expect(err).NotTo(HaveOccurred())
			Expect(switcher.switched).To(Equal([]string{llm.ProviderClaude}))
		})

		It("reports a failed switch in the channel and keeps the active backend", func() {
			switcher.switchErr = &llm.ConfigurationError{
				Provider: llm.ProviderAzureOpenAI,
				Reason:   "AZURE_OPENAI_API_KEY is required",
			}

			err := processor.Process(ctx, threadedMessage("<@UBOT001> use_azure"))

			Expect(err).NotTo(HaveOccurred())
			Expect(gateway.posts[0].Text).To(HavePrefix("LLMプロバイダの切り替えに失敗しました: "))
			Expect(gateway.updates[0].Text).To(HaveSuffix("_Generated by: claude_"))
		})
	})
})
