package plc

import (
	"fmt"
	"sort"
)

// Index holds, per kind, the offset-ascending breakpoints of one zone.
type Index struct {
	runs [numKinds][]Breakpoint
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Add merges seq into the breakpoints of kind. seq must be offset-ascending;
// equal offsets inside seq collapse to the last one. At offsets already
// present, seq wins.
func (x *Index) Add(kind Kind, seq []Breakpoint) error {
	if kind < 0 || kind >= numKinds {
		return fmt.Errorf("plc: unknown kind %v", kind)
	}
	if !sorted(seq) {
		return fmt.Errorf("%w: %v sequence is not ascending", ErrNonMonotonicOffsets, kind)
	}
	in := make([]Breakpoint, len(seq))
	for i, bp := range seq {
		bp.Kind = kind
		in[i] = bp
	}
	x.runs[kind] = MergeSorted(x.runs[kind], collapse(in))
	return nil
}

// Breakpoints returns a copy of the breakpoints of kind.
func (x *Index) Breakpoints(kind Kind) []Breakpoint {
	if kind < 0 || kind >= numKinds {
		return nil
	}
	out := make([]Breakpoint, len(x.runs[kind]))
	copy(out, x.runs[kind])
	return out
}

// Len returns the number of breakpoints of every kind.
func (x *Index) Len() int {
	n := 0
	for _, r := range x.runs {
		n += len(r)
	}
	return n
}

// ActiveAt returns the attribute index of kind in effect at off: the last
// breakpoint at or before off, Default if there is none.
func (x *Index) ActiveAt(kind Kind, off int64) int {
	if kind < 0 || kind >= numKinds {
		return Default
	}
	r := x.runs[kind]
	i := sort.Search(len(r), func(i int) bool { return r[i].Offset > off })
	if i == 0 {
		return Default
	}
	return r[i-1].Index
}

// All returns every breakpoint ordered by offset, then by kind.
func (x *Index) All() []Breakpoint {
	out := make([]Breakpoint, 0, x.Len())
	for _, r := range x.runs {
		out = append(out, r...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Offset != out[j].Offset {
			return out[i].Offset < out[j].Offset
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Clip drops every breakpoint outside [begin, end] and returns how many
// were dropped.
func (x *Index) Clip(begin, end int64) int {
	dropped := 0
	for k, r := range x.runs {
		kept := r[:0]
		for _, bp := range r {
			if bp.Offset < begin || bp.Offset > end {
				dropped++
				continue
			}
			kept = append(kept, bp)
		}
		x.runs[k] = kept
	}
	return dropped
}

// Slice returns a new index holding the breakpoints in [begin, end]. The
// font and paragraph in effect at begin are carried over as breakpoints at
// begin, so a zone cut out of a larger text starts with the right
// attributes.
func (x *Index) Slice(begin, end int64) *Index {
	s := NewIndex()
	for k := range x.runs {
		kind := Kind(k)
		var seq []Breakpoint
		if kind == KindFont || kind == KindParagraph {
			if idx := x.ActiveAt(kind, begin); idx != Default {
				seq = append(seq, Breakpoint{Offset: begin, Kind: kind, Index: idx})
			}
		}
		for _, bp := range x.runs[k] {
			if bp.Offset < begin || bp.Offset > end {
				continue
			}
			if len(seq) > 0 && seq[len(seq)-1].Offset == bp.Offset {
				seq[len(seq)-1] = bp
				continue
			}
			seq = append(seq, bp)
		}
		s.runs[k] = seq
	}
	return s
}

// dropAt removes the page breaks and markers at off.
func (x *Index) dropAt(off int64) {
	for _, kind := range []Kind{KindPageBreak, KindFootnote, KindMarker} {
		r := x.runs[kind]
		kept := r[:0]
		for _, bp := range r {
			if bp.Offset != off {
				kept = append(kept, bp)
			}
		}
		x.runs[kind] = kept
	}
}

// Check verifies that every kind is offset-ascending.
func (x *Index) Check() error {
	for k, r := range x.runs {
		if !sorted(r) {
			return fmt.Errorf("%w: %v", ErrNonMonotonicOffsets, Kind(k))
		}
	}
	return nil
}
