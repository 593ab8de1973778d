// Package plc implements the attribute-run index over a text stream: pools
// of decoded attribute records, breakpoint tables read from FDP and PLC
// structures, and the per-zone index the replayer walks.
package plc

import "fmt"

// Kind is an attribute axis. The order of the constants is the order in
// which breakpoints at the same offset are applied.
type Kind int

const (
	KindFont Kind = iota
	KindParagraph
	KindPageBreak
	KindFootnote
	KindMarker

	numKinds
)

// Kinds lists every kind in application order.
func Kinds() []Kind {
	return []Kind{KindFont, KindParagraph, KindPageBreak, KindFootnote, KindMarker}
}

func (k Kind) String() string {
	switch k {
	case KindFont:
		return "font"
	case KindParagraph:
		return "paragraph"
	case KindPageBreak:
		return "pagebreak"
	case KindFootnote:
		return "footnote"
	case KindMarker:
		return "marker"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Default is the attribute index meaning "use the document default".
const Default = -1

// Breakpoint says that from Offset on, the active attribute of Kind is the
// pool record at Index, or the default when Index is Default.
type Breakpoint struct {
	Offset int64
	Kind   Kind
	Index  int
}

// MergeSorted merges two offset-ascending sequences into a new one. The
// merge is stable. When both sequences hold an offset, the breakpoints of b
// at that offset replace those of a.
func MergeSorted(a, b []Breakpoint) []Breakpoint {
	out := make([]Breakpoint, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Offset < b[j].Offset:
			out = append(out, a[i])
			i++
		case a[i].Offset > b[j].Offset:
			out = append(out, b[j])
			j++
		default:
			off := a[i].Offset
			for i < len(a) && a[i].Offset == off {
				i++
			}
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// sorted reports whether seq is offset-ascending.
func sorted(seq []Breakpoint) bool {
	for i := 1; i < len(seq); i++ {
		if seq[i].Offset < seq[i-1].Offset {
			return false
		}
	}
	return true
}

// collapse keeps the last breakpoint of every run of equal offsets.
func collapse(seq []Breakpoint) []Breakpoint {
	out := make([]Breakpoint, 0, len(seq))
	for _, bp := range seq {
		if n := len(out); n > 0 && out[n-1].Offset == bp.Offset {
			out[n-1] = bp
			continue
		}
		out = append(out, bp)
	}
	return out
}
