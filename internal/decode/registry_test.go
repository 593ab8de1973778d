package decode

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/diag"
	"github.com/roboco-io/mwaw2md/internal/entry"
)

func newIndex(t *testing.T, limit int64, entries ...entry.Entry) *entry.Index {
	t.Helper()
	x := entry.NewIndex(limit)
	for _, e := range entries {
		if _, err := x.Insert(e); err != nil {
			t.Fatalf("Insert(%v): %v", e, err)
		}
	}
	return x
}

func TestRegistry_DecodeAll(t *testing.T) {
	data := make([]byte, 64)
	data[10] = 0x42
	c := binio.New(data, binary.BigEndian)
	if err := c.Seek(5); err != nil {
		t.Fatal(err)
	}

	x := newIndex(t, 64,
		entry.Entry{Name: "FONT", ID: 1, Begin: 10, Length: 4},
		entry.Entry{Name: "BAD ", ID: 1, Begin: 20, Length: 4},
		entry.Entry{Name: "MPSR", ID: 1, Begin: 30, Length: 4},
		entry.Entry{Name: "ZZZZ", ID: 1, Begin: 40, Length: 4},
	)

	d := diag.New(nil)
	r := NewRegistry(d)
	var seen []string
	r.Register("FONT", func(v *binio.Cursor, e *entry.Entry) (Result, error) {
		if v.Tell() != e.Begin {
			t.Errorf("view starts at %d, want %d", v.Tell(), e.Begin)
		}
		b, err := v.Uint8()
		if err != nil {
			return Malformed, err
		}
		if b != 0x42 {
			t.Errorf("read %#x, want 0x42", b)
		}
		seen = append(seen, e.Name)
		return Ok, nil
	})
	r.Register("BAD ", func(v *binio.Cursor, e *entry.Entry) (Result, error) {
		// reading past the entry must fail even though the stream has more bytes
		_, err := v.ReadBytes(8)
		return Ok, err
	})
	r.Skip("MPSR")

	s := r.DecodeAll(c, x)
	if c.Tell() != 5 {
		t.Errorf("cursor position not restored: %d", c.Tell())
	}

	want := Summary{Ok: 1, Skipped: 1, Malformed: 1, Unknown: 1}
	got := Summary{Ok: s.Ok, Skipped: s.Skipped, Malformed: s.Malformed, Unknown: s.Unknown}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if len(seen) != 1 {
		t.Errorf("FONT decoder ran %d times", len(seen))
	}

	var unparsed []string
	for _, e := range x.Unparsed() {
		unparsed = append(unparsed, e.Name)
	}
	if diff := cmp.Diff([]string{"BAD ", "ZZZZ"}, unparsed); diff != "" {
		t.Errorf("unparsed mismatch (-want +got):\n%s", diff)
	}
	if !d.HasCode("decode.malformed") || !d.Has(binio.ErrOutOfBounds) {
		t.Errorf("expected a malformed note wrapping ErrOutOfBounds, got %v", d.Notes())
	}
}

func TestRegistry_MalformedResultWithoutError(t *testing.T) {
	c := binio.New(make([]byte, 16), binary.LittleEndian)
	x := newIndex(t, 16, entry.Entry{Name: "CHP ", Begin: 0, Length: 16})
	d := diag.New(nil)
	r := NewRegistry(d)
	r.Register("CHP ", func(*binio.Cursor, *entry.Entry) (Result, error) {
		return Malformed, nil
	})

	e, _ := x.Find("CHP ", 0)
	if got := r.Decode(c, e); got != Malformed {
		t.Errorf("Decode = %v, want malformed", got)
	}
	if e.Parsed() {
		t.Error("malformed entry must stay unparsed")
	}
	if d.Len() != 1 {
		t.Errorf("expected one note, got %d", d.Len())
	}
}

func TestRegistry_OrderAndUnknown(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("B", nil)
	r.Register("A", nil)
	r.Register("B", nil)
	if diff := cmp.Diff([]string{"B", "A"}, r.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	c := binio.New(nil, nil)
	e := &entry.Entry{Name: "C"}
	if got := r.Decode(c, e); got != Unknown {
		t.Errorf("Decode of unregistered name = %v", got)
	}
}

func TestResult_String(t *testing.T) {
	for r, want := range map[Result]string{Ok: "ok", Skipped: "skipped", Malformed: "malformed", Unknown: "unknown"} {
		if r.String() != want {
			t.Errorf("%d.String() = %q, want %q", r, r.String(), want)
		}
	}
}

func TestDecodeErrorIsRecoverable(t *testing.T) {
	// a decoder error never escapes Decode
	c := binio.New(make([]byte, 4), nil)
	r := NewRegistry(diag.New(nil))
	r.Register("X", func(*binio.Cursor, *entry.Entry) (Result, error) {
		return Ok, errors.New("boom")
	})
	if got := r.Decode(c, &entry.Entry{Name: "X", Length: 4}); got != Malformed {
		t.Errorf("Decode = %v, want malformed", got)
	}
}

func TestRegistry_ConsumedEntriesAreNotUnknown(t *testing.T) {
	c := binio.New(make([]byte, 16), binary.LittleEndian)
	x := newIndex(t, 16,
		entry.Entry{Name: "TEXT", Begin: 0, Length: 8},
		entry.Entry{Name: "ZZZZ", Begin: 8, Length: 8},
	)
	text, _ := x.Find("TEXT", 0)
	x.MarkParsed(text)

	s := NewRegistry(nil).DecodeAll(c, x)
	if s.Unknown != 1 || len(s.Outcomes) != 1 || s.Outcomes[0].Entry.Name != "ZZZZ" {
		t.Errorf("expected only ZZZZ unknown, got %+v", s)
	}
}

func TestRegistry_ParsedEntriesAreNotDecodedAgain(t *testing.T) {
	c := binio.New(make([]byte, 16), binary.LittleEndian)
	x := newIndex(t, 16,
		entry.Entry{Name: "FONT", ID: 1, Begin: 0, Length: 8},
		entry.Entry{Name: "FONT", ID: 2, Begin: 8, Length: 8},
	)
	first, _ := x.Find("FONT", 1)
	x.MarkParsed(first)

	r := NewRegistry(nil)
	var ids []int
	r.Register("FONT", func(v *binio.Cursor, e *entry.Entry) (Result, error) {
		ids = append(ids, e.ID)
		return Ok, nil
	})

	s := r.DecodeAll(c, x)
	if diff := cmp.Diff([]int{2}, ids); diff != "" {
		t.Errorf("decoded ids mismatch (-want +got):\n%s", diff)
	}
	if s.Ok != 1 || len(s.Outcomes) != 1 {
		t.Errorf("summary %+v", s)
	}

	// a second pass finds nothing left to do
	if s := r.DecodeAll(c, x); s.Ok != 0 || len(ids) != 1 {
		t.Errorf("second pass decoded again: %+v, ids %v", s, ids)
	}
}
