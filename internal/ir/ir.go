// Package ir defines the intermediate representation of a decoded
// document. A Builder fills it from sink events; the CLI renders it as
// Markdown, plain text or JSON.
package ir

// Document represents the intermediate representation of a document.
type Document struct {
	Version   string     `json:"version"`
	Metadata  Metadata   `json:"metadata"`
	Page      *Page      `json:"page,omitempty"`
	Content   []Block    `json:"content"`
	Headers   []Block    `json:"headers,omitempty"`
	Footers   []Block    `json:"footers,omitempty"`
	Footnotes *ListBlock `json:"footnotes,omitempty"`
}

// Metadata contains document metadata.
type Metadata struct {
	Title   string `json:"title,omitempty"`
	Format  string `json:"format,omitempty"`  // source format, e.g. mswrite
	Type    string `json:"type,omitempty"`    // Finder type code
	Creator string `json:"creator,omitempty"` // Finder creator code
}

// Page is the page geometry of the first section, in points.
type Page struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	MarginTop    float64 `json:"margin_top"`
	MarginBottom float64 `json:"margin_bottom"`
	MarginLeft   float64 `json:"margin_left"`
	MarginRight  float64 `json:"margin_right"`
	Columns      int     `json:"columns,omitempty"`
}

// BlockType represents the type of content block.
type BlockType string

const (
	BlockTypeParagraph BlockType = "paragraph"
	BlockTypeTable     BlockType = "table"
	BlockTypeImage     BlockType = "image"
	BlockTypePageBreak BlockType = "page_break"
)

// Block represents a content block in the document.
type Block struct {
	Type      BlockType   `json:"type"`
	Paragraph *Paragraph  `json:"paragraph,omitempty"`
	Table     *TableBlock `json:"table,omitempty"`
	Image     *ImageBlock `json:"image,omitempty"`
}

// NewDocument creates a new IR document with the current version.
func NewDocument() *Document {
	return &Document{
		Version: "1.0",
		Content: make([]Block, 0),
	}
}

// Images returns every image block of the body, headers and footers.
func (d *Document) Images() []*ImageBlock {
	var out []*ImageBlock
	for _, blocks := range [][]Block{d.Content, d.Headers, d.Footers} {
		for _, b := range blocks {
			if b.Type == BlockTypeImage && b.Image != nil {
				out = append(out, b.Image)
			}
		}
	}
	return out
}
