package notion

import (
	"time"

	"github.com/jomei/notionapi"

	"threadscribe.app/bot/internal/document"
)

// Property names match the original Notion database schema, which is
// Japanese.
const (
	propTitle           = "タイトル"
	propChannel         = "チャンネル"
	propSavedAt         = "保存日時"
	propThreadDate      = "スレッド日時"
	propThreadURL       = "スレッドURL"
	propKeywords        = "キーワード"
	propParticipantInfo = "参加者情報"
	propParticipants    = "参加者"
)

// dateOnly drops the clock. 保存日時 and スレッド日時 hold calendar dates,
// not timestamps.
func dateOnly(t time.Time) notionapi.Date {
	y, m, d := t.Date()
	return notionapi.Date(time.Date(y, m, d, 0, 0, 0, 0, t.Location()))
}

func pageProperties(rec document.Record) notionapi.Properties {
	savedAt := dateOnly(rec.SavedAt)
	threadDate := dateOnly(rec.ThreadDate)

	props := notionapi.Properties{
		propTitle: notionapi.TitleProperty{
			Title: richText(rec.Title),
		},
		propChannel: notionapi.RichTextProperty{
			RichText: richText("#" + rec.ChannelName),
		},
		propSavedAt: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &savedAt},
		},
		propThreadDate: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &threadDate},
		},
		propThreadURL: notionapi.URLProperty{
			URL: rec.SourceURL,
		},
	}

	// Optional properties are omitted entirely when empty.
	if rec.Keywords != "" {
		props[propKeywords] = notionapi.RichTextProperty{
			RichText: richText(rec.Keywords),
		}
	}
	if rec.ParticipantText != "" {
		props[propParticipantInfo] = notionapi.RichTextProperty{
			RichText: richText(rec.ParticipantText),
		}
	}
	if len(rec.ParticipantTags) > 0 {
		options := make([]notionapi.Option, len(rec.ParticipantTags))
		for i, tag := range rec.ParticipantTags {
			options[i] = notionapi.Option{Name: tag}
		}
		props[propParticipants] = notionapi.MultiSelectProperty{
			MultiSelect: options,
		}
	}

	return props
}

// pageChildren renders the block body: a bold source link, a spacer
// paragraph, then the serialized summary blocks.
func pageChildren(rec document.Record) []notionapi.Block {
	blocks := []notionapi.Block{
		paragraphBlock([]notionapi.RichText{{
			Type:        notionapi.ObjectTypeText,
			Text:        &notionapi.Text{Content: "元のスレッド: " + rec.SourceURL},
			Annotations: &notionapi.Annotations{Bold: true},
		}}),
		paragraphBlock(richText("")),
	}

	for _, b := range rec.Blocks {
		switch b.Type {
		case document.BlockHeading:
			blocks = append(blocks, notionapi.Heading2Block{
				BasicBlock: basicBlock(notionapi.BlockTypeHeading2),
				Heading2:   notionapi.Heading{RichText: richText(b.Text)},
			})
		case document.BlockBullet:
			blocks = append(blocks, notionapi.BulletedListItemBlock{
				BasicBlock:       basicBlock(notionapi.BlockTypeBulletedListItem),
				BulletedListItem: notionapi.ListItem{RichText: richText(b.Text)},
			})
		case document.BlockParagraph:
			blocks = append(blocks, paragraphBlock(richText(b.Text)))
		}
	}

	return blocks
}

func basicBlock(blockType notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   blockType,
	}
}

func paragraphBlock(text []notionapi.RichText) notionapi.Block {
	return notionapi.ParagraphBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
		Paragraph:  notionapi.Paragraph{RichText: text},
	}
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: content},
	}}
}
