package ir

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roboco-io/mwaw2md/internal/sink"
)

// Builder is a sink.Sink that assembles a Document. Headers and footers
// are collected apart from the body; footnotes become references in the
// text and items of Document.Footnotes.
type Builder struct {
	doc    *Document
	frames []*frame
	images int
	notes  int
	errs   []error
}

// frame is the output state of one text zone.
type frame struct {
	blocks *[]Block
	font   sink.Font
	format sink.Paragraph
	link   string

	para    *Paragraph
	pending strings.Builder
	style   TextStyle
	table   *tableState
}

type tableState struct {
	name   string
	widths []float64
	cells  []tableCell
	cell   *cellState
	depth  int
}

type tableCell struct {
	sink.Cell
	text string
}

type cellState struct {
	sink.Cell
	text strings.Builder
}

var _ sink.Sink = (*Builder)(nil)

// NewBuilder creates a builder holding an empty document.
func NewBuilder() *Builder {
	b := &Builder{}
	b.reset()
	return b
}

// Document returns the document built so far.
func (b *Builder) Document() *Document {
	b.endParagraph()
	return b.doc
}

// Err returns the errors raised while replaying sub-documents.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

func (b *Builder) reset() {
	b.doc = NewDocument()
	b.frames = []*frame{{blocks: &b.doc.Content}}
	b.images, b.notes = 0, 0
	b.errs = nil
}

func (b *Builder) top() *frame {
	return b.frames[len(b.frames)-1]
}

func (b *Builder) add(blk Block) {
	f := b.top()
	*f.blocks = append(*f.blocks, blk)
}

func (b *Builder) StartDocument() { b.reset() }
func (b *Builder) EndDocument() { b.endParagraph() }

func (b *Builder) OpenSection(sec sink.Section) {
	b.endParagraph()
	if b.doc.Page != nil {
		return
	}
	b.doc.Page = &Page{
		Width:        sec.PageWidth,
		Height:       sec.PageHeight,
		MarginTop:    sec.MarginTop,
		MarginBottom: sec.MarginBottom,
		MarginLeft:   sec.MarginLeft,
		MarginRight:  sec.MarginRight,
		Columns:      len(sec.Columns),
	}
}

func (b *Builder) CloseSection() { b.endParagraph() }

func (b *Builder) SetFont(f sink.Font) { b.top().font = f }
func (b *Builder) SetParagraph(p sink.Paragraph) { b.top().format = p }

func (b *Builder) InsertText(r rune) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	b.write(string(buf[:n]))
}

func (b *Builder) InsertTab() { b.write("\t") }
func (b *Builder) InsertLineBreak() { b.write("\n") }

func (b *Builder) InsertEOL() {
	if t := b.top().table; t != nil {
		if t.cell != nil {
			t.cell.text.WriteByte('\n')
		}
		return
	}
	b.endParagraph()
}

func (b *Builder) InsertPageBreak() {
	if b.top().table != nil {
		return
	}
	b.endParagraph()
	b.add(Block{Type: BlockTypePageBreak})
}

// InsertField writes a placeholder such as "{page}".
func (b *Builder) InsertField(kind sink.FieldKind) {
	b.write("{" + kind.String() + "}")
}

func (b *Builder) OpenTable(name string, columnWidths []float64) {
	f := b.top()
	if f.table != nil {
		f.table.depth++
		return
	}
	b.endParagraph()
	f.table = &tableState{name: name, widths: columnWidths}
}

func (b *Builder) CloseTable() {
	f := b.top()
	t := f.table
	if t == nil {
		return
	}
	if t.depth > 0 {
		t.depth--
		return
	}
	f.table = nil

	rows, cols := 0, len(t.widths)
	for _, c := range t.cells {
		rows = max(rows, c.Row+max(c.RowSpan, 1))
		cols = max(cols, c.Col+max(c.ColSpan, 1))
	}
	tb := NewTable(rows, cols)
	tb.Caption = t.name
	tb.Widths = t.widths
	for i := range t.cells {
		c := &t.cells[i]
		cell := tb.GetCell(c.Row, c.Col)
		if cell == nil {
			continue
		}
		cell.Text = strings.TrimRight(c.text, "\n")
		cell.RowSpan = max(c.RowSpan, 1)
		cell.ColSpan = max(c.ColSpan, 1)
	}
	b.add(Block{Type: BlockTypeTable, Table: tb})
}

func (b *Builder) OpenCell(c sink.Cell) {
	if t := b.top().table; t != nil && t.depth == 0 {
		t.cell = &cellState{Cell: c}
	}
}

func (b *Builder) CloseCell() {
	t := b.top().table
	if t == nil || t.cell == nil || t.depth > 0 {
		return
	}
	t.cells = append(t.cells, tableCell{Cell: t.cell.Cell, text: t.cell.text.String()})
	t.cell = nil
}

func (b *Builder) InsertPicture(p sink.Picture) {
	b.endParagraph()
	b.images++
	img := NewImage(fmt.Sprintf("image%d", b.images))
	img.Format = formatFromMIME(p.MIME)
	img.Data = p.Data
	img.SetDimensions(int(p.Placement.Width+0.5), int(p.Placement.Height+0.5))
	b.add(Block{Type: BlockTypeImage, Image: img})
}

func (b *Builder) InsertNote(sd sink.SubDocument) {
	switch sd.Kind {
	case sink.SubHeader:
		b.doc.Headers = append(b.doc.Headers, b.collect(sd)...)
	case sink.SubFooter:
		b.doc.Footers = append(b.doc.Footers, b.collect(sd)...)
	case sink.SubFootnote:
		b.notes++
		n := b.notes
		b.reference(n)
		if b.doc.Footnotes == nil {
			b.doc.Footnotes = NewOrderedList()
		}
		b.doc.Footnotes.AddItem(plainText(b.collect(sd)), sd.Label)
	default:
		// links, tags and bookmarks stay in the running text
		f := b.top()
		font, format, link := f.font, f.format, f.link
		if sd.Kind == sink.SubLink {
			f.link = sd.Target
		}
		b.replay(sd)
		f.font, f.format, f.link = font, format, link
	}
}

// collect replays sd into a fresh zone and returns its blocks.
func (b *Builder) collect(sd sink.SubDocument) []Block {
	var blocks []Block
	b.frames = append(b.frames, &frame{blocks: &blocks})
	b.replay(sd)
	b.endParagraph()
	b.frames = b.frames[:len(b.frames)-1]
	return blocks
}

func (b *Builder) replay(sd sink.SubDocument) {
	if sd.Replay == nil {
		return
	}
	if err := sd.Replay(b); err != nil {
		b.errs = append(b.errs, fmt.Errorf("%s %q: %w", sd.Kind, sd.Label, err))
	}
}

func (b *Builder) reference(n int) {
	f := b.top()
	if f.table != nil {
		if f.table.cell != nil {
			fmt.Fprintf(&f.table.cell.text, "[%d]", n)
		}
		return
	}
	b.flushRun()
	b.paragraph().AddNote(n)
}

func (b *Builder) write(s string) {
	f := b.top()
	if f.table != nil {
		if f.table.cell != nil {
			f.table.cell.text.WriteString(s)
		}
		return
	}
	style := textStyle(f.font)
	style.Link = f.link
	if f.pending.Len() > 0 && style != f.style {
		b.flushRun()
	}
	b.paragraph()
	f.style = style
	f.pending.WriteString(s)
}

func (b *Builder) paragraph() *Paragraph {
	f := b.top()
	if f.para == nil {
		f.para = NewParagraph("")
		f.para.Style = paragraphStyle(f.format)
	}
	return f.para
}

func (b *Builder) flushRun() {
	f := b.top()
	if f.pending.Len() == 0 {
		return
	}
	b.paragraph().AddRun(f.pending.String(), f.style)
	f.pending.Reset()
}

func (b *Builder) endParagraph() {
	b.flushRun()
	f := b.top()
	p := f.para
	f.para = nil
	if p == nil || strings.TrimSpace(p.Text) == "" {
		return
	}
	p.SetHeading(headingLevel(p))
	b.add(Block{Type: BlockTypeParagraph, Paragraph: p})
}

func textStyle(f sink.Font) TextStyle {
	return TextStyle{
		Font:          f.Name,
		Size:          f.Size,
		Bold:          f.Bold,
		Italic:        f.Italic,
		Underline:     f.Underline,
		Strikethrough: f.Strike,
		Superscript:   f.Script > 0,
		Subscript:     f.Script < 0,
		Code:          monospace(f.Name),
	}
}

func monospace(name string) bool {
	switch strings.ToLower(name) {
	case "courier", "courier new", "monaco", "fixedsys", "terminal":
		return true
	}
	return false
}

// 들여쓰기 한 단계 = 반 인치
const indentStep = 36.0

func paragraphStyle(p sink.Paragraph) ParagraphStyle {
	s := ParagraphStyle{Indent: int(p.LeftIndent / indentStep)}
	if p.Justify != sink.JustifyLeft {
		s.Alignment = p.Justify.String()
	}
	s.IsQuote = p.LeftIndent > 0 && p.RightIndent > 0
	return s
}

// headingLevel guesses a heading from a short paragraph set in one large
// font.
func headingLevel(p *Paragraph) int {
	if len(p.Runs) != 1 || utf8.RuneCountInString(p.Text) > 120 || strings.Contains(p.Text, "\n") {
		return 0
	}
	st := p.Runs[0].Style
	switch {
	case st.Size >= 18:
		return 1
	case st.Size >= 14 && st.Bold:
		return 2
	}
	return 0
}

func plainText(blocks []Block) string {
	var parts []string
	for _, blk := range blocks {
		if blk.Type == BlockTypeParagraph {
			parts = append(parts, strings.TrimSpace(blk.Paragraph.Text))
		}
	}
	return strings.Join(parts, " ")
}
