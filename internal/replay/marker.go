package replay

import (
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/sink"
)

// MarkerKind is what a marker breakpoint does at its offset.
type MarkerKind int

const (
	MarkerPageBreak MarkerKind = iota
	MarkerField
	MarkerNote
	MarkerPicture
	MarkerEmit
	MarkerSkip
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerPageBreak:
		return "pagebreak"
	case MarkerField:
		return "field"
	case MarkerNote:
		return "note"
	case MarkerPicture:
		return "picture"
	case MarkerEmit:
		return "emit"
	case MarkerSkip:
		return "skip"
	default:
		return fmt.Sprintf("marker(%d)", int(k))
	}
}

// Marker is an out-of-band event anchored at a text offset. Consume is the
// number of text bytes the marker stands for; they are not emitted as
// text.
type Marker struct {
	Kind    MarkerKind
	Consume int
	Field   sink.FieldKind
	Note    sink.SubDocument
	Picture sink.Picture
	// Emit writes arbitrary content such as a table.
	Emit func(s sink.Sink) error
}

// apply sends the marker to s.
func (m *Marker) apply(s sink.Sink) error {
	switch m.Kind {
	case MarkerPageBreak:
		s.InsertPageBreak()
	case MarkerField:
		s.InsertField(m.Field)
	case MarkerNote:
		s.InsertNote(m.Note)
	case MarkerPicture:
		s.InsertPicture(m.Picture)
	case MarkerEmit:
		if m.Emit != nil {
			return m.Emit(s)
		}
	case MarkerSkip:
	}
	return nil
}

// Control is the meaning of a special text byte.
type Control int

const (
	CtrlIgnore Control = iota
	CtrlTab
	CtrlEOL
	CtrlLineBreak
	CtrlPageBreak
	CtrlPageNumber
	CtrlDate
	CtrlTime
	CtrlSoftHyphen
	CtrlNBSP
)

// Controls maps byte values to their meaning.
type Controls map[byte]Control

// MacControls is the control set of classic Mac text: CR ends a paragraph.
func MacControls() Controls {
	return Controls{
		0x09: CtrlTab,
		0x0D: CtrlEOL,
		0x0C: CtrlPageBreak,
		0x0B: CtrlLineBreak,
		0x00: CtrlIgnore,
	}
}
