package document

// BlockType tags one node of the serialized summary body.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockBullet    BlockType = "bullet"
	BlockParagraph BlockType = "paragraph"
)

// Block is one typed unit of document content. The summary body is a flat
// ordered sequence of blocks; there is no nesting.
type Block struct {
	Type BlockType
	Text string
}

func Heading(text string) Block   { return Block{Type: BlockHeading, Text: text} }
func Bullet(text string) Block    { return Block{Type: BlockBullet, Text: text} }
func Paragraph(text string) Block { return Block{Type: BlockParagraph, Text: text} }
