package works

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/container"
	"github.com/roboco-io/mwaw2md/internal/decode"
	"github.com/roboco-io/mwaw2md/internal/diag"
	"github.com/roboco-io/mwaw2md/internal/parser"
	"github.com/roboco-io/mwaw2md/internal/sink"
)

func decodeFile(t *testing.T, f *container.File) (*Parser, *sink.Recorder, *diag.Collector) {
	t.Helper()
	d := diag.New(nil)
	p := New(parser.DefaultOptions(), d)
	rec := &sink.Recorder{}
	if state, err := parser.NewSession(p, d).Run(f, rec); err != nil {
		t.Fatalf("Run failed in %s: %v", state, err)
	}
	return p, rec, d
}

func TestCheckHeader_BadMagic(t *testing.T) {
	other := &container.File{}
	other.SetStream("WordDocument", []byte("not works"))

	wrongVersion := &container.File{}
	wrongVersion.SetStream(StreamName, cat(magic, u16(3, 0), u32(12)))

	for name, f := range map[string]*container.File{
		"plain file":    {Data: []byte("hello")},
		"other ole":     other,
		"wrong version": wrongVersion,
	} {
		t.Run(name, func(t *testing.T) {
			if err := New(parser.DefaultOptions(), nil).CheckHeader(f); !parser.IsBadMagic(err) {
				t.Errorf("expected ErrBadMagic, got %v", err)
			}
		})
	}
}

func TestParse_TextAndRuns(t *testing.T) {
	var b streamBuilder
	b.add("TEXT", TextMain, []byte("Hello\rWorld\r"))
	base := uint32(b.offsetOf(0))
	b.add("FNTB", 0, fontTable("Helvetica", "Symbol"))
	// relative positions, found by the heuristic
	b.add("FDPC", 0, fdp([]uint32{0, 5, 12}, [][]byte{charRecord(0, 10, charBold), nil}))
	// absolute positions
	center := cat([]byte{paraFixedSize, 1}, u32(0, 0, 0), u16(100), []byte{0})
	b.add("FDPP", 1, fdp([]uint32{base, base + 6, base + 12}, [][]byte{center, nil}))

	p, rec, _ := decodeFile(t, b.file())

	if rec.Text() != "Hello\nWorld\n" {
		t.Errorf("text = %q", rec.Text())
	}
	want := []sink.Font{
		{ID: 0, Name: "Helvetica", Size: 10, Bold: true},
		{ID: 0, Name: "Helvetica", Size: 12},
	}
	if diff := cmp.Diff(want, rec.Fonts()); diff != "" {
		t.Errorf("fonts mismatch (-want +got):\n%s", diff)
	}
	if rec.Count("paragraph") != 2 {
		t.Errorf("expected 2 paragraph changes, got %d", rec.Count("paragraph"))
	}
	if s := p.Summary(); s.Ok != 3 || s.Malformed != 0 {
		t.Errorf("summary %+v", s)
	}
}

func TestParse_Footnotes(t *testing.T) {
	var b streamBuilder
	b.add("TEXT", TextMain, []byte("See\x05.\r"))
	b.add("TEXT", TextFootnotes, []byte("Note one.\r"))
	b.add("FTNT", 0, plcBody([]uint32{3, 3}, 8, u32(0, 10)))

	_, rec, _ := decodeFile(t, b.file())

	if rec.Text() != "SeeNote one.\n.\n" {
		t.Errorf("text = %q", rec.Text())
	}
	var notes []string
	for _, e := range rec.Events {
		if e.Op == "note" {
			notes = append(notes, e.Sub.String()+":"+e.Label)
		}
	}
	if diff := cmp.Diff([]string{"footnote:1"}, notes); diff != "" {
		t.Errorf("notes mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_TokensAndSheet(t *testing.T) {
	var b streamBuilder
	b.add("TEXT", TextMain, []byte("P\x01 \x02\r"))
	base := uint32(b.offsetOf(0))
	cells := cat(u16(2, 32),
		cat(u16(0, 0), []byte{1, 'A'}, make([]byte, 26)),
		cat(u16(0, 1), []byte{1, 'B'}, make([]byte, 26)),
	)
	b.add("SHET", 7, cat(u16(1, 2), u16(72, 36), cells))
	b.add("TOKN", 0, plcBody([]uint32{base + 1, base + 3, base + 5}, 4, u16(TokenPageNumber, 0), u16(TokenSheet, 7)))
	b.add("PRNT", 0, make([]byte, 10))

	p, rec, _ := decodeFile(t, b.file())

	wantOps := []string{"start", "section", "text", "field", "text",
		"table", "cell", "text", "endcell", "cell", "text", "endcell", "endtable",
		"eol", "endsection", "end"}
	if diff := cmp.Diff(wantOps, rec.Ops()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	for _, e := range rec.Events {
		if e.Op == "table" {
			if diff := cmp.Diff([]float64{72, 36}, e.Widths); diff != "" {
				t.Errorf("column widths mismatch (-want +got):\n%s", diff)
			}
		}
	}
	if s := p.Summary(); s.Skipped != 1 || s.Unknown != 0 {
		t.Errorf("summary %+v", s)
	}
}

func TestParse_MalformedTokensLeaveNoFields(t *testing.T) {
	var b streamBuilder
	b.add("TEXT", TextMain, []byte("ab\x01c\r"))
	b.add("TEXT", TextHeader, []byte("x\x01\x01y\r"))
	main, head := uint32(b.offsetOf(0)), uint32(b.offsetOf(1))
	// valid in the main zone, out of order in the header
	b.add("TOKN", 0, plcBody([]uint32{main + 2, head + 2, head + 1, head + 4}, 4,
		u16(TokenPageNumber, 0), u16(TokenPageNumber, 0), u16(TokenPageNumber, 0)))

	p, rec, d := decodeFile(t, b.file())

	if n := rec.Count("field"); n != 0 {
		t.Errorf("rejected token table still placed %d fields", n)
	}
	var tokn decode.Result
	for _, o := range p.Summary().Outcomes {
		if o.Entry.Name == "TOKN" {
			tokn = o.Result
		}
	}
	if tokn != decode.Malformed {
		t.Errorf("TOKN result = %v, want malformed", tokn)
	}
	if !d.HasCode("decode.malformed") {
		t.Error("expected a decode.malformed note")
	}
}

func TestParse_HeaderFooterAndPageBreaks(t *testing.T) {
	var b streamBuilder
	b.add("TEXT", TextMain, []byte("one\rtwo\r"))
	b.add("TEXT", TextHeader, []byte("Head\r"))
	b.add("TEXT", TextFooter, []byte("Foot\r"))
	b.add("PGBK", 0, plcBody([]uint32{0, 4, 8}, 0, nil, nil))

	_, rec, _ := decodeFile(t, b.file())

	if rec.Text() != "one\n\ftwo\nHead\nFoot\n" {
		t.Errorf("text = %q", rec.Text())
	}
	if rec.Count("note") != 2 {
		t.Errorf("expected header and footer notes, got %d", rec.Count("note"))
	}
}

func TestParse_MissingMainText(t *testing.T) {
	var b streamBuilder
	b.add("TEXT", TextHeader, []byte("Head\r"))

	d := diag.New(nil)
	s := parser.NewSession(New(parser.DefaultOptions(), d), d)
	state, err := s.Run(b.file(), &sink.Recorder{})
	if state != parser.StateFailed || !errors.Is(err, ErrNoMainText) {
		t.Fatalf("state %s, err %v", state, err)
	}
	if s.FailedIn() != parser.StateHeaderChecked {
		t.Errorf("failed in %s", s.FailedIn())
	}
	if !d.HasCode("parser.failed") {
		t.Error("expected a parser.failed note")
	}
}

func TestParse_MalformedTablesDegrade(t *testing.T) {
	var b streamBuilder
	b.add("TEXT", TextMain, []byte("body\r"))
	bad := fontTable("Geneva")
	bad[1] = 100 // count
	b.add("FNTB", 0, bad)
	b.add("FDPC", 0, fdp([]uint32{4, 2, 5}, [][]byte{charRecord(0, 10, 0), nil}))
	b.add("ZZZZ", 0, []byte{1})

	p, rec, d := decodeFile(t, b.file())

	if rec.Text() != "body\n" {
		t.Errorf("text = %q", rec.Text())
	}
	s := p.Summary()
	if s.Malformed != 2 || s.Unknown != 1 {
		t.Errorf("summary %+v", s)
	}
	if !d.Has(decode.ErrMalformedRecordTable) {
		t.Error("expected a malformed record table note")
	}
	if left := p.Index().Unparsed(); len(left) != 3 {
		t.Errorf("expected FNTB, FDPC and ZZZZ unparsed, got %v", left)
	}
}

func TestParse_Concurrent(t *testing.T) {
	var a, b streamBuilder
	a.add("TEXT", TextMain, []byte("first\r"))
	a.add("FNTB", 0, fontTable("Symbol"))
	a.add("FDPC", 0, fdp([]uint32{0, 6}, [][]byte{charRecord(0, 12, 0)}))
	b.add("TEXT", TextMain, []byte("second\r"))

	files := []*container.File{a.file(), b.file()}
	want := []string{"φιρστ\n", "second\n"}

	var wg sync.WaitGroup
	got := make([]string, len(files))
	for i, f := range files {
		i, f := i, f
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := &sink.Recorder{}
			d := diag.New(nil)
			if _, err := parser.NewSession(New(parser.DefaultOptions(), d), d).Run(f, rec); err != nil {
				t.Error(err)
				return
			}
			got[i] = rec.Text()
		}()
	}
	wg.Wait()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("concurrent decode mismatch (-want +got):\n%s", diff)
	}
}

func TestRecords_TruncatedFieldsFail(t *testing.T) {
	// the length bytes claim full records but the views end early
	tests := []struct {
		name string
		read func(v *binio.Cursor) error
		data []byte
	}{
		{"char after font id", func(v *binio.Cursor) error {
			_, err := readCharRecord(v, nil)
			return err
		}, cat([]byte{charRecordSize}, u16(1))},
		{"char after size", func(v *binio.Cursor) error {
			_, err := readCharRecord(v, nil)
			return err
		}, cat([]byte{charRecordSize}, u16(1, 12))},
		{"para without justify", func(v *binio.Cursor) error {
			_, err := readParaRecord(v)
			return err
		}, []byte{paraFixedSize}},
		{"para without spacing", func(v *binio.Cursor) error {
			_, err := readParaRecord(v)
			return err
		}, cat([]byte{paraFixedSize, 1}, u32(0, 0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(binio.New(tt.data, binary.BigEndian))
			if !errors.Is(err, binio.ErrUnexpectedEnd) && !errors.Is(err, binio.ErrOutOfBounds) {
				t.Errorf("expected a read error, got %v", err)
			}
		})
	}
}
