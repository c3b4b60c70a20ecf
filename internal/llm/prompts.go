package llm

// summarySystemPrompt fixes the structural template of the summary. The
// document serializer parses this structure (the **主題**: title line, the
// section headings, the "- " bullets), so the template is part of the
// contract with the model, not just prompt flavor.
const summarySystemPrompt = `あなたはSlackのスレッドを要約する専門AIアシスタントです。
以下のSlackスレッドの内容を分析し、次の形式で簡潔に要約してください：

## スレッド要約
- **主題**: [議論の主なテーマ]
- **参加者**: [会話に参加している人々のリスト]

## 主要ポイント
- [重要なポイントを箇条書きで、最大5つ]

## 結論/次のアクション
- [合意された事項や次のアクションがあれば記載]

## 未解決の質問
- [未解決の質問があれば記載]

要約は簡潔でありながら、元のスレッドの重要な情報をすべて含むものにしてください。
各ユーザーの発言内容を「〜さんが〜と言った」という形式で要約に含めてください。`

const keywordsSystemPrompt = `以下のSlackスレッド要約から重要なキーワード（専門用語、プロジェクト名、技術名など）を最大10個抽出してください。`
