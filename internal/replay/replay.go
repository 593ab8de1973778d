// Package replay walks a text zone once and turns its bytes and attribute
// runs into sink events.
package replay

import (
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/diag"
	"github.com/roboco-io/mwaw2md/internal/plc"
	"github.com/roboco-io/mwaw2md/internal/sink"
	"github.com/roboco-io/mwaw2md/internal/textenc"
)

// Replayer holds the decoded pools of one document.
type Replayer struct {
	// Text is the whole stream zone offsets refer to.
	Text []byte

	Fonts      *plc.Pool[sink.Font]
	Paragraphs *plc.Pool[sink.Paragraph]
	Markers    *plc.Pool[Marker]

	DefaultFont      sink.Font
	DefaultParagraph sink.Paragraph

	Charsets *textenc.Table
	Controls Controls
	// CRLF treats a CR LF pair as a single paragraph end.
	CRLF bool

	Diag *diag.Collector
}

type state struct {
	zone *plc.Zone
	s    sink.Sink

	font    int
	para    int
	fontRec sink.Font
}

// Replay emits the content of z to s in a single forward pass. A zone
// outside Text is an error; bad attribute references are recorded and
// skipped.
func (r *Replayer) Replay(z *plc.Zone, s sink.Sink) error {
	if z.Begin < 0 || z.Begin > z.End || z.End > int64(len(r.Text)) {
		return fmt.Errorf("replay: zone %s [%d,%d) outside text of %d bytes", z.Name, z.Begin, z.End, len(r.Text))
	}
	if r.Charsets == nil {
		r.Charsets = textenc.NewTable(nil)
	}

	st := &state{zone: z, s: s, font: plc.Default, para: plc.Default, fontRec: r.DefaultFont}
	bps := z.Runs.All()
	next := 0

	pos := z.Begin
	for pos < z.End {
		consumed := int64(0)
		for next < len(bps) && bps[next].Offset <= pos {
			n := r.apply(st, bps[next], pos)
			if n > consumed {
				consumed = n
			}
			next++
		}
		if consumed > 0 {
			if pos+consumed > z.End {
				consumed = z.End - pos
			}
			pos += consumed
			continue
		}
		pos += r.emitByte(st, pos)
	}

	// markers anchored at the end of the zone
	for ; next < len(bps); next++ {
		bp := bps[next]
		if bp.Offset > z.End {
			break
		}
		if bp.Kind == plc.KindFootnote || bp.Kind == plc.KindMarker {
			r.apply(st, bp, z.End)
		}
	}
	return nil
}

// apply installs one breakpoint and returns the bytes a marker consumes.
func (r *Replayer) apply(st *state, bp plc.Breakpoint, pos int64) int64 {
	switch bp.Kind {
	case plc.KindFont:
		idx, ok := r.checked(st, bp, r.Fonts.Len())
		if !ok || idx == st.font {
			return 0
		}
		f := r.DefaultFont
		if idx != plc.Default {
			f, _ = r.Fonts.Get(idx)
		}
		st.font, st.fontRec = idx, f
		st.s.SetFont(f)

	case plc.KindParagraph:
		idx, ok := r.checked(st, bp, r.Paragraphs.Len())
		if !ok || idx == st.para {
			return 0
		}
		p := r.DefaultParagraph
		if idx != plc.Default {
			p, _ = r.Paragraphs.Get(idx)
		}
		st.para = idx
		st.s.SetParagraph(p)

	case plc.KindPageBreak:
		if bp.Offset > st.zone.Begin {
			st.s.InsertPageBreak()
		}

	case plc.KindFootnote, plc.KindMarker:
		if bp.Index == plc.Default {
			return 0
		}
		if bp.Offset < pos {
			r.Diag.Notef("replay.marker", st.zone.Name, bp.Offset, "marker %d inside consumed bytes dropped", bp.Index)
			return 0
		}
		m, ok := r.Markers.Get(bp.Index)
		if !ok {
			r.outOfRange(st, bp, r.Markers.Len())
			return 0
		}
		if err := m.apply(st.s); err != nil {
			r.Diag.Errorf("replay.marker", st.zone.Name, bp.Offset, err, "%v marker failed", m.Kind)
		}
		return int64(m.Consume)
	}
	return 0
}

// checked validates an attribute index against a pool of size n. An
// invalid index keeps the current attribute.
func (r *Replayer) checked(st *state, bp plc.Breakpoint, n int) (int, bool) {
	if bp.Index == plc.Default || (bp.Index >= 0 && bp.Index < n) {
		return bp.Index, true
	}
	r.outOfRange(st, bp, n)
	return 0, false
}

func (r *Replayer) outOfRange(st *state, bp plc.Breakpoint, n int) {
	err := fmt.Errorf("%w: %v index %d, pool holds %d", plc.ErrAttributeIndexOutOfRange, bp.Kind, bp.Index, n)
	r.Diag.Errorf("replay.index", st.zone.Name, bp.Offset, err, "keeping the current %v", bp.Kind)
}

// emitByte sends the byte at pos and returns how many bytes it used.
func (r *Replayer) emitByte(st *state, pos int64) int64 {
	b := r.Text[pos]
	if r.CRLF && b == '\r' && pos+1 < st.zone.End && r.Text[pos+1] == '\n' {
		st.s.InsertEOL()
		return 2
	}
	if ctrl, ok := r.Controls[b]; ok {
		r.control(st, ctrl)
		return 1
	}
	if b < 0x20 {
		r.Diag.Once(fmt.Sprintf("replay.ctrl.%02x", b), diag.Note{
			Code: "replay.ctrl", Zone: st.zone.Name, Offset: pos,
			Msg: fmt.Sprintf("unknown control byte %#02x ignored", b),
		})
		return 1
	}
	st.s.InsertText(r.Charsets.Rune(st.fontRec.ID, b))
	return 1
}

func (r *Replayer) control(st *state, c Control) {
	switch c {
	case CtrlTab:
		st.s.InsertTab()
	case CtrlEOL:
		st.s.InsertEOL()
	case CtrlLineBreak:
		st.s.InsertLineBreak()
	case CtrlPageBreak:
		st.s.InsertPageBreak()
	case CtrlPageNumber:
		st.s.InsertField(sink.FieldPageNumber)
	case CtrlDate:
		st.s.InsertField(sink.FieldDate)
	case CtrlTime:
		st.s.InsertField(sink.FieldTime)
	case CtrlSoftHyphen:
		st.s.InsertText('\u00AD')
	case CtrlNBSP:
		st.s.InsertText('\u00A0')
	case CtrlIgnore:
	}
}
