package entry

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/diag"
)

func TestIndex_InsertAndFind(t *testing.T) {
	x := NewIndex(1000)

	for _, e := range []Entry{
		{Name: "FONT", ID: 2, Begin: 10, Length: 20},
		{Name: "FONT", ID: 1, Begin: 40, Length: 20},
		{Name: "RULE", ID: 1, Begin: 100, Length: 0},
	} {
		if _, err := x.Insert(e); err != nil {
			t.Fatalf("Insert(%v) failed: %v", e, err)
		}
	}

	fonts := x.FindAll("FONT")
	if len(fonts) != 2 {
		t.Fatalf("expected 2 FONT entries, got %d", len(fonts))
	}
	if fonts[0].ID != 2 || fonts[1].ID != 1 {
		t.Errorf("expected insertion order, got ids %d,%d", fonts[0].ID, fonts[1].ID)
	}

	e, ok := x.Find("RULE", 1)
	if !ok || e.Begin != 100 {
		t.Errorf("Find(RULE,1) = %v, %v", e, ok)
	}
	if got := x.FindAll("NONE"); len(got) != 0 {
		t.Errorf("expected empty result for unknown name, got %v", got)
	}
	if diff := cmp.Diff([]string{"FONT", "RULE"}, x.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_BoundsRejection(t *testing.T) {
	x := NewIndex(80)

	_, err := x.Insert(Entry{Name: "FONT", ID: 1, Begin: 100, Length: 40})
	if !errors.Is(err, ErrMalformedEntry) {
		t.Fatalf("expected ErrMalformedEntry, got %v", err)
	}
	if x.Len() != 0 {
		t.Errorf("rejected insert mutated the index: %d entries", x.Len())
	}
	if got := x.FindAll("FONT"); len(got) != 0 {
		t.Errorf("expected FindAll(FONT) empty, got %v", got)
	}
}

func TestIndex_RejectsBadEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{"negative begin", Entry{Name: "A", Begin: -1, Length: 1}},
		{"negative length", Entry{Name: "A", Begin: 1, Length: -1}},
		{"end past limit", Entry{Name: "A", Begin: 60, Length: 41}},
		{"begin past limit", Entry{Name: "A", Begin: 101, Length: 0}},
		{"overflowing length", Entry{Name: "A", Begin: 50, Length: 1 << 62}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := NewIndex(100)
			if _, err := x.Insert(tt.entry); !errors.Is(err, ErrMalformedEntry) {
				t.Errorf("expected ErrMalformedEntry, got %v", err)
			}
			if x.Len() != 0 {
				t.Error("index mutated on failure")
			}
		})
	}
}

func TestIndex_DuplicateID(t *testing.T) {
	x := NewIndex(100)
	if _, err := x.Insert(Entry{Name: "PICT", ID: 5, Begin: 0, Length: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := x.Insert(Entry{Name: "PICT", ID: 5, Begin: 20, Length: 10}); !errors.Is(err, ErrMalformedEntry) {
		t.Errorf("expected duplicate to be rejected, got %v", err)
	}
	if len(x.FindAll("PICT")) != 1 {
		t.Error("duplicate must not be stored")
	}
}

func TestIndex_MarkParsed(t *testing.T) {
	x := NewIndex(100)
	a, _ := x.Insert(Entry{Name: "A", Begin: 0, Length: 1})
	b, _ := x.Insert(Entry{Name: "B", Begin: 1, Length: 1})

	x.MarkParsed(a)
	x.MarkParsed(a)
	if !a.Parsed() {
		t.Error("expected a to be parsed")
	}
	left := x.Unparsed()
	if len(left) != 1 || left[0] != b {
		t.Errorf("expected only b unparsed, got %v", left)
	}
}

func beRecord(tag string, begin, length uint32, id uint16) []byte {
	b := []byte(tag)
	b = binary.BigEndian.AppendUint32(b, begin)
	b = binary.BigEndian.AppendUint32(b, length)
	return binary.BigEndian.AppendUint16(b, id)
}

func TestReadFlat(t *testing.T) {
	var data []byte
	data = append(data, beRecord("TEXT", 0, 50, 0)...)
	data = append(data, beRecord("FONT", 100, 40, 1)...) // past the 80 byte stream
	data = append(data, beRecord("FDPC", 50, 20, 0)...)

	x := NewIndex(80)
	d := diag.New(nil)
	c := binio.New(data, binary.BigEndian)
	if err := ReadFlat(c, 3, FlatLayout{}, x, d); err != nil {
		t.Fatalf("ReadFlat failed: %v", err)
	}

	if x.Len() != 2 {
		t.Errorf("expected 2 valid entries, got %d", x.Len())
	}
	if len(x.FindAll("FONT")) != 0 {
		t.Error("out-of-bounds FONT entry must be rejected")
	}
	if !d.Has(ErrMalformedEntry) {
		t.Error("expected a diagnostic for the rejected entry")
	}
}

func TestReadFlat_CountTooLarge(t *testing.T) {
	data := beRecord("TEXT", 0, 10, 0)
	x := NewIndex(1 << 20)
	c := binio.New(data, binary.BigEndian)

	err := ReadFlat(c, 5000, FlatLayout{}, x, nil)
	if !errors.Is(err, ErrMalformedEntry) {
		t.Fatalf("expected ErrMalformedEntry, got %v", err)
	}
	if x.Len() != 0 {
		t.Error("no record may be read when the count does not fit")
	}
	if c.Tell() != 0 {
		t.Error("cursor must not move when the count is rejected")
	}
}

func TestReadFlat_NamedLayout(t *testing.T) {
	var data []byte
	data = binary.LittleEndian.AppendUint16(data, 7)
	data = binary.LittleEndian.AppendUint32(data, 4)
	data = binary.LittleEndian.AppendUint32(data, 8)

	x := NewIndex(64)
	c := binio.New(data, binary.LittleEndian)
	layout := FlatLayout{Name: "PAGE", IDFirst: true}
	if layout.RecordSize() != 10 {
		t.Fatalf("expected record size 10, got %d", layout.RecordSize())
	}
	if err := ReadFlat(c, 1, layout, x, nil); err != nil {
		t.Fatal(err)
	}
	e, ok := x.Find("PAGE", 7)
	if !ok || e.Begin != 4 || e.Length != 8 {
		t.Errorf("unexpected entry %v", e)
	}
}
