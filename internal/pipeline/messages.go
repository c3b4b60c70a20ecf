package pipeline

import (
	"fmt"
	"strings"

	"threadscribe.app/bot/internal/llm"
)

// User-facing messages are Japanese, matching the workspaces this bot
// serves.
const (
	statusSummarizing  = "スレッドを要約しています..."
	statusSaveSuffix   = "\nNotionにも保存します。"
	errorPrefix        = "スレッドの要約中にエラーが発生しました: "
	switchFailedPrefix = "LLMプロバイダの切り替えに失敗しました: "
	savedLinkFormat    = "\n\n*<%s|📝 Notionにも保存しました>*"
	generatedByFormat  = "\n\n_Generated by: %s_"
)

func helpMessage(provider string) string {
	var b strings.Builder
	b.WriteString("スレッド内で @呼び出してください。スレッドの内容を要約します。\n")
	b.WriteString("利用可能なオプション:\n")
	b.WriteString("- `@summary_bot notion` - 要約をNotionにも保存\n")
	b.WriteString("- `@summary_bot use_claude` - Claudeを使用\n")
	b.WriteString("- `@summary_bot use_azure` - Azure OpenAIを使用\n")
	fmt.Fprintf(&b, "\n現在のLLMプロバイダ: *%s*", provider)
	return b.String()
}

// wantsNotionSave reports whether the mention text carries a save token.
// The ASCII token is case-insensitive, the katakana one is matched as-is.
func wantsNotionSave(text string) bool {
	return strings.Contains(strings.ToLower(text), "notion") ||
		strings.Contains(text, "ノーション")
}

// requestedProvider returns the provider a switch token in the mention
// selects, or "" when no switch token is present.
func requestedProvider(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "use_claude") || strings.Contains(text, "クロード"):
		return llm.ProviderClaude
	case strings.Contains(lower, "use_azure") || strings.Contains(text, "アジュール"):
		return llm.ProviderAzureOpenAI
	}
	return ""
}
