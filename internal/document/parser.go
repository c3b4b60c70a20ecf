package document

import "strings"

// DefaultTitle is used when the summary carries no title label line.
const DefaultTitle = "Slack スレッド要約"

// titleLabel marks the title line inside the summary; the template in the
// summary prompt guarantees it for well-formed model output.
const titleLabel = "**主題**:"

// ExtractTitle scans summary lines for the first one containing the title
// label and returns the text following it. Falls back to DefaultTitle when
// no such line exists or the label has no text after it.
func ExtractTitle(summary string) string {
	for _, line := range strings.Split(summary, "\n") {
		idx := strings.Index(line, titleLabel)
		if idx < 0 {
			continue
		}
		if title := strings.TrimSpace(line[idx+len(titleLabel):]); title != "" {
			return title
		}
	}
	return DefaultTitle
}

// ParseBlocks converts the summary's markdown-like text into a flat block
// sequence with a single line-oriented pass. Consecutive "- " lines
// accumulate into a bullet run that is flushed, in order, by the next
// heading, blank line, plain line, or end of input.
//
// A plain line encountered mid-run flushes the run and becomes a paragraph.
// Dropping it (as earlier revisions did) loses model output whenever a
// bullet wraps onto a continuation line.
func ParseBlocks(summary string) []Block {
	var blocks []Block
	var bullets []string

	flush := func() {
		for _, b := range bullets {
			blocks = append(blocks, Bullet(b))
		}
		bullets = bullets[:0]
	}

	for _, line := range strings.Split(summary, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "##"):
			flush()
			blocks = append(blocks, Heading(strings.TrimSpace(strings.Trim(line, "# "))))
		case strings.HasPrefix(trimmed, "- "):
			bullets = append(bullets, strings.TrimSpace(trimmed[2:]))
		case trimmed == "":
			flush()
			blocks = append(blocks, Paragraph(""))
		default:
			flush()
			blocks = append(blocks, Paragraph(trimmed))
		}
	}

	flush()
	return blocks
}
