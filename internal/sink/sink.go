// Package sink defines the receiver of decoded document content. Format
// parsers and the replayer emit events in text order; what a sink builds
// from them is up to the sink.
package sink

// Sink receives document events. Each text zone starts with the default
// font and paragraph; SetFont and SetParagraph are only sent on change.
type Sink interface {
	StartDocument()
	EndDocument()

	OpenSection(sec Section)
	CloseSection()

	SetFont(f Font)
	SetParagraph(p Paragraph)

	InsertText(r rune)
	InsertTab()
	InsertEOL()
	InsertLineBreak()
	InsertPageBreak()
	InsertField(kind FieldKind)

	OpenTable(name string, columnWidths []float64)
	CloseTable()
	OpenCell(c Cell)
	CloseCell()

	InsertPicture(p Picture)
	InsertNote(sd SubDocument)
}

// Color is a 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// Black is the default text color.
var Black = Color{}

// Font is a character format. Sizes are in points.
type Font struct {
	ID        int     `json:"id"`
	Name      string  `json:"name,omitempty"`
	Size      float64 `json:"size,omitempty"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline bool    `json:"underline,omitempty"`
	Strike    bool    `json:"strike,omitempty"`
	Outline   bool    `json:"outline,omitempty"`
	Shadow    bool    `json:"shadow,omitempty"`
	// Script is positive for superscript and negative for subscript.
	Script int   `json:"script,omitempty"`
	Color  Color `json:"color"`
}

// Justify is a paragraph alignment.
type Justify int

const (
	JustifyLeft Justify = iota
	JustifyCenter
	JustifyRight
	JustifyFull
)

func (j Justify) String() string {
	switch j {
	case JustifyCenter:
		return "center"
	case JustifyRight:
		return "right"
	case JustifyFull:
		return "justify"
	default:
		return "left"
	}
}

// TabKind is the alignment of a tab stop.
type TabKind int

const (
	TabLeft TabKind = iota
	TabCenter
	TabRight
	TabDecimal
)

// Tab is a tab stop at Position points from the left margin.
type Tab struct {
	Position float64 `json:"position"`
	Kind     TabKind `json:"kind,omitempty"`
}

// Paragraph is a paragraph format. Indents are in points; Spacing is the
// line height as a multiple of single spacing.
type Paragraph struct {
	Justify     Justify `json:"justify,omitempty"`
	LeftIndent  float64 `json:"left_indent,omitempty"`
	RightIndent float64 `json:"right_indent,omitempty"`
	FirstIndent float64 `json:"first_indent,omitempty"`
	Spacing     float64 `json:"spacing,omitempty"`
	Tabs        []Tab   `json:"tabs,omitempty"`
}

// Section describes the page geometry in points. Columns holds one width
// per text column and is empty for single-column layout.
type Section struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
	FirstPage    int
	Columns      []float64
}

// Cell is a table or spreadsheet cell position.
type Cell struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int
}

// FieldKind is a variable inserted at render time.
type FieldKind int

const (
	FieldPageNumber FieldKind = iota
	FieldPageCount
	FieldDate
	FieldTime
	FieldTitle
)

func (k FieldKind) String() string {
	switch k {
	case FieldPageNumber:
		return "page"
	case FieldPageCount:
		return "pages"
	case FieldDate:
		return "date"
	case FieldTime:
		return "time"
	case FieldTitle:
		return "title"
	default:
		return "field"
	}
}

// Anchor is what a picture is positioned against.
type Anchor int

const (
	AnchorChar Anchor = iota
	AnchorParagraph
	AnchorPage
)

// Placement positions a picture. Sizes and offsets are in points.
type Placement struct {
	Anchor Anchor
	X, Y   float64
	Width  float64
	Height float64
}

// Picture is an embedded image.
type Picture struct {
	Data      []byte
	MIME      string
	Placement Placement
}

// SubDocumentKind is the closed set of nested documents.
type SubDocumentKind int

const (
	SubHeader SubDocumentKind = iota
	SubFooter
	SubFootnote
	SubLink
	SubTag
	SubBookmark
)

func (k SubDocumentKind) String() string {
	switch k {
	case SubHeader:
		return "header"
	case SubFooter:
		return "footer"
	case SubFootnote:
		return "footnote"
	case SubLink:
		return "link"
	case SubTag:
		return "tag"
	case SubBookmark:
		return "bookmark"
	default:
		return "subdocument"
	}
}

// SubDocument is content replayed out of line: a header, a footnote body
// or the text of a link. Replay may be nil for an empty sub-document.
// Target is the URL of a link or the name of a bookmark.
type SubDocument struct {
	Kind   SubDocumentKind
	Label  string
	Target string
	Replay func(s Sink) error
}
