package plc

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func bps(kind Kind, pairs ...int64) []Breakpoint {
	var out []Breakpoint
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Breakpoint{Offset: pairs[i], Kind: kind, Index: int(pairs[i+1])})
	}
	return out
}

func TestMergeSorted_SecondWinsOnTie(t *testing.T) {
	a := bps(KindFont, 0, 1, 10, 2, 20, 3)
	b := bps(KindFont, 10, 7, 15, 8, 30, 9)

	got := MergeSorted(a, b)
	want := bps(KindFont, 0, 1, 10, 7, 15, 8, 20, 3, 30, 9)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}

	// for every offset held by both inputs the result carries b's value
	at := func(seq []Breakpoint, off int64) (int, bool) {
		for _, bp := range seq {
			if bp.Offset == off {
				return bp.Index, true
			}
		}
		return 0, false
	}
	for _, bb := range b {
		if _, inA := at(a, bb.Offset); !inA {
			continue
		}
		if v, _ := at(got, bb.Offset); v != bb.Index {
			t.Errorf("offset %d: got %d, want b's %d", bb.Offset, v, bb.Index)
		}
	}
}

func TestMergeSorted_Empty(t *testing.T) {
	a := bps(KindFont, 0, 1)
	if diff := cmp.Diff(a, MergeSorted(a, nil)); diff != "" {
		t.Errorf("merge with empty b (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(a, MergeSorted(nil, a)); diff != "" {
		t.Errorf("merge with empty a (-want +got):\n%s", diff)
	}
}

func TestIndex_AddLaterTableOverrides(t *testing.T) {
	x := NewIndex()
	if err := x.Add(KindParagraph, bps(KindParagraph, 0, 0, 10, 1)); err != nil {
		t.Fatal(err)
	}
	if err := x.Add(KindParagraph, bps(KindParagraph, 10, 5)); err != nil {
		t.Fatal(err)
	}
	if got := x.ActiveAt(KindParagraph, 12); got != 5 {
		t.Errorf("ActiveAt(12) = %d, want 5", got)
	}
	if err := x.Add(KindParagraph, bps(KindParagraph, 9, 0, 3, 0)); !errors.Is(err, ErrNonMonotonicOffsets) {
		t.Errorf("expected descending input to be rejected, got %v", err)
	}
	if err := x.Check(); err != nil {
		t.Error(err)
	}
}

func TestIndex_Invariants(t *testing.T) {
	x := NewIndex()
	_ = x.Add(KindFont, bps(KindFont, 3, 0, 8, 1, 8, 2, 14, Default))
	_ = x.Add(KindParagraph, bps(KindParagraph, 0, 0, 9, 1))
	_ = x.Add(KindFont, bps(KindFont, 5, 4))
	_ = x.Add(KindMarker, bps(KindMarker, 6, 0))

	// monotonicity
	for _, k := range Kinds() {
		r := x.Breakpoints(k)
		for i := 1; i < len(r); i++ {
			if r[i].Offset < r[i-1].Offset {
				t.Errorf("%v: offset %d after %d", k, r[i].Offset, r[i-1].Offset)
			}
		}
	}

	// coverage: one active attribute per kind at every offset
	want := map[int64]int{0: Default, 2: Default, 3: 0, 4: 0, 5: 4, 7: 4, 8: 2, 13: 2, 14: Default, 19: Default}
	for off, idx := range want {
		if got := x.ActiveAt(KindFont, off); got != idx {
			t.Errorf("font at %d = %d, want %d", off, got, idx)
		}
	}
	for off := int64(0); off < 20; off++ {
		p := x.ActiveAt(KindParagraph, off)
		if (off < 9 && p != 0) || (off >= 9 && p != 1) {
			t.Errorf("paragraph at %d = %d", off, p)
		}
	}
}

func TestIndex_AllOrdersKindsAtSameOffset(t *testing.T) {
	x := NewIndex()
	_ = x.Add(KindMarker, bps(KindMarker, 4, 0))
	_ = x.Add(KindParagraph, bps(KindParagraph, 4, 1))
	_ = x.Add(KindFont, bps(KindFont, 4, 2))

	var kinds []Kind
	for _, bp := range x.All() {
		kinds = append(kinds, bp.Kind)
	}
	if diff := cmp.Diff([]Kind{KindFont, KindParagraph, KindMarker}, kinds); diff != "" {
		t.Errorf("precedence mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_SliceSeedsActiveAttributes(t *testing.T) {
	x := NewIndex()
	_ = x.Add(KindFont, bps(KindFont, 0, 1, 30, 2))
	_ = x.Add(KindParagraph, bps(KindParagraph, 0, 0, 20, 3))
	_ = x.Add(KindPageBreak, bps(KindPageBreak, 5, 0, 25, 1))

	s := x.Slice(20, 40)
	if diff := cmp.Diff(bps(KindFont, 20, 1, 30, 2), s.Breakpoints(KindFont)); diff != "" {
		t.Errorf("font slice mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(bps(KindParagraph, 20, 3), s.Breakpoints(KindParagraph)); diff != "" {
		t.Errorf("paragraph slice mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(bps(KindPageBreak, 25, 1), s.Breakpoints(KindPageBreak)); diff != "" {
		t.Errorf("page break slice mismatch (-want +got):\n%s", diff)
	}
	// the source index is untouched
	if len(x.Breakpoints(KindPageBreak)) != 2 {
		t.Error("Slice modified its source")
	}
}

func TestIndex_Clip(t *testing.T) {
	x := NewIndex()
	_ = x.Add(KindFont, bps(KindFont, 0, 1, 30, 2, 90, 3))
	if n := x.Clip(10, 50); n != 2 {
		t.Errorf("Clip dropped %d, want 2", n)
	}
	if diff := cmp.Diff(bps(KindFont, 30, 2), x.Breakpoints(KindFont)); diff != "" {
		t.Errorf("clip mismatch (-want +got):\n%s", diff)
	}
}

func TestZone_Sub(t *testing.T) {
	z, _ := NewZone("TEXT", ZoneMain, 128, 400)
	_ = z.Runs.Add(KindFont, bps(KindFont, 128, 0, 200, 1))

	h, err := z.Sub("header", ZoneHeader, 150, 180)
	if err != nil {
		t.Fatal(err)
	}
	if h.Runs.ActiveAt(KindFont, 150) != 0 || h.Len() != 30 {
		t.Errorf("header zone %+v", h)
	}
	_ = z.Runs.Add(KindMarker, bps(KindMarker, 180, 0))
	h, _ = z.Sub("header", ZoneHeader, 150, 180)
	if n := len(h.Runs.Breakpoints(KindMarker)); n != 0 {
		t.Errorf("marker at the cut belongs to the next zone, header holds %d", n)
	}
	rest, _ := z.Sub("main", ZoneMain, 180, 400)
	if n := len(rest.Runs.Breakpoints(KindMarker)); n != 1 {
		t.Errorf("main zone should start with the marker, holds %d", n)
	}
	if _, err := z.Sub("bad", ZoneFooter, 100, 180); err == nil {
		t.Error("expected an error for a sub-zone outside the parent")
	}
	if _, err := NewZone("bad", ZoneMain, 10, 5); err == nil {
		t.Error("expected an error for begin > end")
	}
}

func TestPool(t *testing.T) {
	p := NewPool[string]()
	if p.Add("a") != 0 || p.Add("b") != 1 {
		t.Error("indices must be assigned in append order")
	}
	if v, ok := p.Get(1); !ok || v != "b" {
		t.Errorf("Get(1) = %q, %v", v, ok)
	}
	if _, ok := p.Get(2); ok {
		t.Error("Get past the end must fail")
	}
	if _, ok := p.Get(Default); ok {
		t.Error("Get(Default) must fail")
	}

	i, err := p.Intern(64, func() (string, error) { return "", errors.New("bad") })
	if err == nil || i != Default {
		t.Errorf("failed Intern = %d, %v", i, err)
	}
	i, _ = p.Intern(64, func() (string, error) { return "c", nil })
	j, _ := p.Intern(64, func() (string, error) { return "d", nil })
	if i != 2 || j != 2 {
		t.Errorf("Intern did not reuse the cached index: %d, %d", i, j)
	}

	s := NewSideTable[int]()
	s.Set(2, 7)
	if v, ok := s.Get(2); !ok || v != 7 || s.Len() != 1 {
		t.Errorf("side table Get(2) = %d, %v", v, ok)
	}
}
