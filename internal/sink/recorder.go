package sink

import (
	"fmt"
	"strings"
)

// Event is one recorded sink call.
type Event struct {
	Op     string
	Rune   rune
	Font   *Font
	Para   *Paragraph
	Field  FieldKind
	Sub    SubDocumentKind
	Label  string
	Cell   *Cell
	Pic    *Picture
	Sec    *Section
	Widths []float64
	Err    error
}

func (e Event) String() string {
	switch e.Op {
	case "text":
		return fmt.Sprintf("text(%q)", e.Rune)
	case "font":
		return fmt.Sprintf("font(%d %s %.1f)", e.Font.ID, e.Font.Name, e.Font.Size)
	case "field":
		return "field(" + e.Field.String() + ")"
	case "note":
		return "note(" + e.Sub.String() + ")"
	default:
		return e.Op
	}
}

// Recorder is a Sink that keeps every call. Sub-documents are replayed in
// place between "note" and "endnote" events.
type Recorder struct {
	Events []Event
}

// Ops returns the Op of every event.
func (r *Recorder) Ops() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Op
	}
	return out
}

// Count returns the number of events with the given op.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, e := range r.Events {
		if e.Op == op {
			n++
		}
	}
	return n
}

// Text returns the inserted text with tabs as '\t', paragraph ends as '\n'
// and line and page breaks as '\v' and '\f'.
func (r *Recorder) Text() string {
	var b strings.Builder
	for _, e := range r.Events {
		switch e.Op {
		case "text":
			b.WriteRune(e.Rune)
		case "tab":
			b.WriteByte('\t')
		case "eol":
			b.WriteByte('\n')
		case "linebreak":
			b.WriteByte('\v')
		case "pagebreak":
			b.WriteByte('\f')
		}
	}
	return b.String()
}

// Fonts returns the fonts passed to SetFont in order.
func (r *Recorder) Fonts() []Font {
	var out []Font
	for _, e := range r.Events {
		if e.Op == "font" {
			out = append(out, *e.Font)
		}
	}
	return out
}

func (r *Recorder) add(e Event) {
	r.Events = append(r.Events, e)
}

func (r *Recorder) StartDocument() { r.add(Event{Op: "start"}) }
func (r *Recorder) EndDocument() { r.add(Event{Op: "end"}) }
func (r *Recorder) OpenSection(sec Section) { r.add(Event{Op: "section", Sec: &sec}) }
func (r *Recorder) CloseSection() { r.add(Event{Op: "endsection"}) }
func (r *Recorder) SetFont(f Font) { r.add(Event{Op: "font", Font: &f}) }
func (r *Recorder) SetParagraph(p Paragraph) {
	r.add(Event{Op: "paragraph", Para: &p})
}
func (r *Recorder) InsertText(c rune) { r.add(Event{Op: "text", Rune: c}) }
func (r *Recorder) InsertTab() { r.add(Event{Op: "tab"}) }
func (r *Recorder) InsertEOL() { r.add(Event{Op: "eol"}) }
func (r *Recorder) InsertLineBreak() { r.add(Event{Op: "linebreak"}) }
func (r *Recorder) InsertPageBreak() { r.add(Event{Op: "pagebreak"}) }
func (r *Recorder) InsertField(kind FieldKind) { r.add(Event{Op: "field", Field: kind}) }
func (r *Recorder) OpenTable(name string, columnWidths []float64) {
	r.add(Event{Op: "table", Label: name, Widths: columnWidths})
}
func (r *Recorder) CloseTable() { r.add(Event{Op: "endtable"}) }
func (r *Recorder) OpenCell(c Cell) { r.add(Event{Op: "cell", Cell: &c}) }
func (r *Recorder) CloseCell() { r.add(Event{Op: "endcell"}) }
func (r *Recorder) InsertPicture(p Picture) { r.add(Event{Op: "picture", Pic: &p}) }

// InsertNote records the note and replays its content into r.
func (r *Recorder) InsertNote(sd SubDocument) {
	r.add(Event{Op: "note", Sub: sd.Kind, Label: sd.Label})
	if sd.Replay != nil {
		if err := sd.Replay(r); err != nil {
			r.add(Event{Op: "error", Err: err})
		}
	}
	r.add(Event{Op: "endnote", Sub: sd.Kind})
}
