package works

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/container"
	"github.com/roboco-io/mwaw2md/internal/decode"
	"github.com/roboco-io/mwaw2md/internal/diag"
	"github.com/roboco-io/mwaw2md/internal/entry"
	"github.com/roboco-io/mwaw2md/internal/parser"
	"github.com/roboco-io/mwaw2md/internal/plc"
	"github.com/roboco-io/mwaw2md/internal/replay"
	"github.com/roboco-io/mwaw2md/internal/sink"
	"github.com/roboco-io/mwaw2md/internal/textenc"
	"github.com/roboco-io/mwaw2md/internal/units"
)

// ErrNoMainText is returned when TEXT 0 is missing.
var ErrNoMainText = errors.New("works: main text zone missing")

// TEXT ids
const (
	TextMain = iota
	TextHeader
	TextFooter
	TextFootnotes
)

var zoneKinds = map[int]plc.ZoneKind{
	TextMain:      plc.ZoneMain,
	TextHeader:    plc.ZoneHeader,
	TextFooter:    plc.ZoneFooter,
	TextFootnotes: plc.ZoneFootnote,
}

var modes = plc.ModeRegistry{
	"FDPC": plc.PosUnknown,
	"FDPP": plc.PosUnknown,
	"PGBK": plc.PosRelative,
	"FTNT": plc.PosIncremental,
	"TOKN": plc.PosAbsolute,
}

// Parser decodes the MN0 stream of one document.
type Parser struct {
	opts parser.Options
	diag *diag.Collector

	stream  []byte
	header  *Header
	cursor  *binio.Cursor
	index   *entry.Index
	summary decode.Summary

	zones    map[int]*plc.Zone
	fontName map[int]string
	fonts    *plc.Pool[sink.Font]
	paras    *plc.Pool[sink.Paragraph]
	markers  *plc.Pool[replay.Marker]
	charsets *textenc.Table
	pictures map[int][]byte
	sheets   map[int]*Sheet
	section  sink.Section

	rep *replay.Replayer
}

// New creates a Works parser. d may be nil.
func New(opts parser.Options, d *diag.Collector) *Parser {
	return &Parser{
		opts:     opts,
		diag:     d,
		zones:    make(map[int]*plc.Zone),
		fontName: make(map[int]string),
		fonts:    plc.NewPool[sink.Font](),
		paras:    plc.NewPool[sink.Paragraph](),
		markers:  plc.NewPool[replay.Marker](),
		pictures: make(map[int][]byte),
		sheets:   make(map[int]*Sheet),
		section: sink.Section{
			PageWidth: 612, PageHeight: 792,
			MarginTop: 72, MarginBottom: 72, MarginLeft: 90, MarginRight: 90,
			FirstPage: 1,
		},
	}
}

func (p *Parser) Format() parser.Format { return parser.FormatWorks }

func (p *Parser) Index() *entry.Index { return p.index }

func (p *Parser) Summary() decode.Summary { return p.summary }

// CheckHeader looks for the MN0 stream and its signature.
func (p *Parser) CheckHeader(f *container.File) error {
	stream, err := f.Stream(StreamName)
	if err != nil {
		return fmt.Errorf("%w: %v", parser.ErrBadMagic, err)
	}
	h, err := ParseHeader(stream)
	if err != nil {
		return err
	}
	p.stream, p.header = stream, h
	p.cursor = binio.New(stream, binary.BigEndian)

	cs, err := textenc.ByName(p.opts.DefaultEncoding)
	if err != nil {
		p.diag.Errorf("works.encoding", "", -1, err, "using MacRoman")
		cs = nil
	}
	p.charsets = textenc.NewTable(cs)
	return nil
}

// CreateZones reads the index and makes one zone per TEXT entry.
func (p *Parser) CreateZones() error {
	x, err := p.header.ReadIndex(p.cursor, p.diag)
	if err != nil {
		return err
	}
	p.index = x

	for _, e := range x.FindAll("TEXT") {
		kind, ok := zoneKinds[e.ID]
		if !ok {
			p.diag.Notef("works.text", e.Name, e.Begin, "unknown text zone %d", e.ID)
			continue
		}
		z, err := plc.NewZone(kind.String(), kind, e.Begin, e.End())
		if err != nil {
			return err
		}
		p.zones[e.ID] = z
		x.MarkParsed(e)
	}
	if _, ok := p.zones[TextMain]; !ok {
		return ErrNoMainText
	}
	return nil
}

// DecodeAttributes runs the decoders. Pictures and sheets come before the
// tokens that reference them, and the tokens before the footnotes that
// cut sub-zones out of the footnote text.
func (p *Parser) DecodeAttributes() error {
	reg := decode.NewRegistry(p.diag)
	reg.Register("FNTB", p.decodeFonts)
	reg.Register("DOCP", p.decodeDocument)
	reg.Register("PICT", p.decodePicture)
	reg.Register("SHET", p.decodeSheet)
	reg.Register("FDPC", p.decodeFDP(plc.KindFont))
	reg.Register("FDPP", p.decodeFDP(plc.KindParagraph))
	reg.Register("PGBK", p.decodePageBreaks)
	reg.Register("TOKN", p.decodeTokens)
	reg.Register("FTNT", p.decodeFootnotes)
	reg.Skip("PRNT", "WPOS")
	p.summary = reg.DecodeAll(p.cursor, p.index)
	return nil
}

func (p *Parser) decodeFonts(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	tbl, err := decode.ReadCountStride(v, 2, 2)
	if err != nil {
		return decode.Malformed, err
	}
	if tbl.Stride < 2+32 {
		return decode.Malformed, fmt.Errorf("%w: font record stride %d", decode.ErrMalformedRecordTable, tbl.Stride)
	}
	err = decode.Each(v, e, tbl, func(i int, r *binio.Cursor) error {
		id, err := r.Uint16()
		if err != nil {
			return err
		}
		name, err := r.ReadPascalString(31)
		if err != nil {
			return err
		}
		s := textenc.String(p.charsets.Default(), name)
		p.fontName[int(id)] = s
		p.charsets.SetByName(int(id), s)
		return nil
	})
	if err != nil {
		return decode.Malformed, err
	}
	return decode.Ok, nil
}

func (p *Parser) decodeDocument(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	var f [6]float64
	for i := range f {
		raw, err := v.Int32()
		if err != nil {
			return decode.Malformed, err
		}
		f[i] = units.Fixed16ToPoints(raw)
	}
	sec := sink.Section{
		PageWidth: f[0], PageHeight: f[1],
		MarginTop: f[2], MarginBottom: f[3], MarginLeft: f[4], MarginRight: f[5],
		FirstPage: 1,
	}
	if sec.PageWidth <= sec.MarginLeft+sec.MarginRight || sec.PageHeight <= sec.MarginTop+sec.MarginBottom {
		return decode.Malformed, fmt.Errorf("works: margins exceed the %gx%g page", sec.PageWidth, sec.PageHeight)
	}
	p.section = sec
	return decode.Ok, nil
}

func (p *Parser) decodePicture(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	p.pictures[e.ID] = v.Bytes()
	return decode.Ok, nil
}

func (p *Parser) decodeSheet(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	sh, err := readSheet(v, e, p.charsets.Default())
	if err != nil {
		return decode.Malformed, err
	}
	p.sheets[e.ID] = sh
	return decode.Ok, nil
}

// decodeFDP returns the decoder for FDPC or FDPP. The entry id carries the
// TEXT zone in its high byte.
func (p *Parser) decodeFDP(kind plc.Kind) decode.Func {
	return func(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
		z, ok := p.zones[e.ID>>8]
		if !ok {
			return decode.Malformed, fmt.Errorf("works: %s refers to missing text zone %d", e, e.ID>>8)
		}
		t, err := readFDP(v, e.Name, kind)
		if err != nil {
			return decode.Malformed, err
		}
		resolve := func(ptr int64) (int, error) {
			r, err := v.View(ptr, e.End()-ptr)
			if err != nil {
				return plc.Default, err
			}
			if kind == plc.KindFont {
				return p.fonts.Intern(ptr, func() (sink.Font, error) {
					return readCharRecord(r, p.fontName)
				})
			}
			return p.paras.Intern(ptr, func() (sink.Paragraph, error) {
				return readParaRecord(r)
			})
		}
		if err := z.AddTable(t, modes.Mode(e.Name), resolve); err != nil {
			return decode.Malformed, err
		}
		return decode.Ok, nil
	}
}

func (p *Parser) decodePageBreaks(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	pl, err := readPLC(v, e)
	if err != nil {
		return decode.Malformed, err
	}
	t := &plc.Table{Name: e.Name, Kind: plc.KindPageBreak, Positions: pl.Positions}
	for range pl.Data {
		t.Pointers = append(t.Pointers, plc.UseDefault)
	}
	if err := p.zones[TextMain].AddTable(t, modes.Mode(e.Name), nil); err != nil {
		return decode.Malformed, err
	}
	return decode.Ok, nil
}

// tokenMarker builds the marker for one token. The token byte itself is
// always consumed.
func (p *Parser) tokenMarker(tok Token, at int64) replay.Marker {
	m := replay.Marker{Kind: replay.MarkerSkip, Consume: 1}
	switch tok.Kind {
	case TokenPageNumber:
		m.Kind, m.Field = replay.MarkerField, sink.FieldPageNumber
	case TokenDate:
		m.Kind, m.Field = replay.MarkerField, sink.FieldDate
	case TokenTime:
		m.Kind, m.Field = replay.MarkerField, sink.FieldTime
	case TokenPicture:
		data, ok := p.pictures[tok.Ref]
		if !ok {
			p.diag.Notef("works.tokn", "TOKN", at, "picture %d missing", tok.Ref)
			break
		}
		m.Kind = replay.MarkerPicture
		m.Picture = sink.Picture{Data: data, MIME: "image/pict", Placement: sink.Placement{Anchor: sink.AnchorChar}}
	case TokenSheet:
		sh, ok := p.sheets[tok.Ref]
		if !ok {
			p.diag.Notef("works.tokn", "TOKN", at, "sheet %d missing", tok.Ref)
			break
		}
		m.Kind, m.Emit = replay.MarkerEmit, sh.Emit
	default:
		p.diag.Notef("works.tokn", "TOKN", at, "unknown token kind %d", tok.Kind)
	}
	return m
}

func (p *Parser) decodeTokens(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	pl, err := readPLC(v, e)
	if err != nil {
		return decode.Malformed, err
	}
	markers := make(map[int64]int, len(pl.Data))
	offs := pl.Positions[:len(pl.Data)]
	for i, b := range pl.Data {
		tok, err := parseToken(b)
		if err != nil {
			return decode.Malformed, err
		}
		markers[pl.Offsets[i]] = p.markers.Add(p.tokenMarker(tok, offs[i]))
	}
	resolve := func(ptr int64) (int, error) { return markers[ptr], nil }

	// 토큰은 어느 텍스트 영역에나 있을 수 있다
	type zoneRuns struct {
		z   *plc.Zone
		seq []plc.Breakpoint
	}
	var pending []zoneRuns
	placed := 0
	for id := TextMain; id <= TextFootnotes; id++ {
		z, ok := p.zones[id]
		if !ok {
			continue
		}
		t := &plc.Table{Name: e.Name, Kind: plc.KindMarker}
		for i, off := range offs {
			if off >= z.Begin && off < z.End {
				t.Positions = append(t.Positions, off)
				t.Pointers = append(t.Pointers, pl.Offsets[i])
			}
		}
		if len(t.Pointers) == 0 {
			continue
		}
		t.Positions = append(t.Positions, z.End)
		seq, err := t.Breakpoints(z, modes.Mode(e.Name), resolve)
		if err != nil {
			return decode.Malformed, err
		}
		pending = append(pending, zoneRuns{z, seq})
		placed += len(t.Pointers)
	}
	// every zone validated: only now touch the indexes
	for _, zr := range pending {
		if err := zr.z.Runs.Add(plc.KindMarker, zr.seq); err != nil {
			return decode.Malformed, err
		}
	}
	if placed < len(offs) {
		p.diag.Notef("works.tokn", e.Name, e.Begin, "%d tokens outside every text zone", len(offs)-placed)
	}
	return decode.Ok, nil
}

// decodeFootnotes anchors the notes in the main text. Positions are
// deltas: the first from the zone start to the first anchor, the last to
// the end of the zone.
func (p *Parser) decodeFootnotes(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	pl, err := readPLC(v, e)
	if err != nil {
		return decode.Malformed, err
	}
	foot, ok := p.zones[TextFootnotes]
	if !ok && len(pl.Data) > 0 {
		return decode.Malformed, fmt.Errorf("works: %d footnotes without a footnote zone", len(pl.Data))
	}

	markers := make(map[int64]int, len(pl.Data))
	t := &plc.Table{
		Name:      e.Name,
		Kind:      plc.KindFootnote,
		Positions: append(append([]int64{}, pl.Positions...), 0),
		Pointers:  []int64{plc.UseDefault},
	}
	for i, b := range pl.Data {
		fn, err := parseFootnote(b)
		if err != nil {
			return decode.Malformed, err
		}
		label := fmt.Sprint(i + 1)
		m := replay.Marker{Kind: replay.MarkerSkip, Consume: 1}
		z, err := foot.Sub("footnote"+label, plc.ZoneFootnote, foot.Begin+fn.Begin, foot.Begin+fn.Begin+fn.Length)
		if err != nil {
			p.diag.Errorf("works.ftnt", e.Name, pl.Offsets[i], err, "footnote %s dropped", label)
		} else {
			m.Kind = replay.MarkerNote
			m.Note = sink.SubDocument{
				Kind:  sink.SubFootnote,
				Label: label,
				Replay: func(s sink.Sink) error {
					return p.rep.Replay(z, s)
				},
			}
		}
		markers[pl.Offsets[i]] = p.markers.Add(m)
		t.Pointers = append(t.Pointers, pl.Offsets[i])
	}
	resolve := func(ptr int64) (int, error) { return markers[ptr], nil }
	if err := p.zones[TextMain].AddTable(t, modes.Mode(e.Name), resolve); err != nil {
		return decode.Malformed, err
	}
	return decode.Ok, nil
}

func (p *Parser) replayer() *replay.Replayer {
	return &replay.Replayer{
		Text:        p.stream,
		Fonts:       p.fonts,
		Paragraphs:  p.paras,
		Markers:     p.markers,
		DefaultFont: sink.Font{ID: 0, Name: p.fontName[0], Size: 12},
		Charsets:    p.charsets,
		Controls: replay.Controls{
			0x09: replay.CtrlTab,
			0x0B: replay.CtrlLineBreak,
			0x0C: replay.CtrlPageBreak,
			0x0D: replay.CtrlEOL,
		},
		Diag: p.diag,
	}
}

// Replay emits the main zone, then the header and footer as
// sub-documents. Footnotes are replayed at their anchors.
func (p *Parser) Replay(s sink.Sink) error {
	p.rep = p.replayer()
	s.OpenSection(p.section)
	if err := p.rep.Replay(p.zones[TextMain], s); err != nil {
		return err
	}
	for _, id := range []int{TextHeader, TextFooter} {
		z, ok := p.zones[id]
		if !ok {
			continue
		}
		kind := sink.SubHeader
		if id == TextFooter {
			kind = sink.SubFooter
		}
		s.InsertNote(sink.SubDocument{
			Kind:  kind,
			Label: z.Name,
			Replay: func(s sink.Sink) error {
				return p.rep.Replay(z, s)
			},
		})
	}
	s.CloseSection()
	return nil
}
