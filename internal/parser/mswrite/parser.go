package mswrite

import (
	"encoding/binary"
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
	"golang.org/x/text/encoding/charmap"
)

var modes = plc.ModeRegistry{
	EntryChar:  plc.PosAbsolute,
	EntryPara:  plc.PosAbsolute,
	EntryPages: plc.PosRelative,
}

// Parser는 Write 문서 파서
type Parser struct {
	opts parser.Options
	diag *diag.Collector

	data    []byte
	cursor  *binio.Cursor
	header  *Header
	index   *entry.Index
	summary decode.Summary

	fontNames []FontName
	fonts     *plc.Pool[sink.Font]
	paras     *plc.Pool[sink.Paragraph]
	paps      *plc.SideTable[PAP]
	markers   *plc.Pool[replay.Marker]
	charsets  *textenc.Table

	sepAt   int64
	section sink.Section
	pages   []PageStart

	text  *plc.Zone
	main  *plc.Zone
	heads []*plc.Zone
}

// New creates a Write parser. d may be nil.
func New(opts parser.Options, d *diag.Collector) *Parser {
	return &Parser{
		opts:    opts,
		diag:    d,
		fonts:   plc.NewPool[sink.Font](),
		paras:   plc.NewPool[sink.Paragraph](),
		paps:    plc.NewSideTable[PAP](),
		markers: plc.NewPool[replay.Marker](),
		sepAt:   -1,
	}
}

func (p *Parser) Format() parser.Format { return parser.FormatMSWrite }

func (p *Parser) Index() *entry.Index { return p.index }

func (p *Parser) Summary() decode.Summary { return p.summary }

// Header returns the parsed header page.
func (p *Parser) Header() *Header { return p.header }

// CheckHeader validates the header page.
func (p *Parser) CheckHeader(f *container.File) error {
	h, err := ParseHeader(f.Data)
	if err != nil {
		return err
	}
	p.data = f.Data
	p.header = h
	p.cursor = binio.New(f.Data, binary.LittleEndian)

	var def textenc.Charset = charmap.Windows1252
	if p.opts.DefaultEncoding != "" {
		cs, err := textenc.ByName(p.opts.DefaultEncoding)
		if err != nil {
			p.diag.Errorf("mswrite.encoding", "", -1, err, "using windows-1252")
		} else {
			def = cs
		}
	}
	p.charsets = textenc.NewTable(def)
	p.diag.Logger().Debug("Write header", "version", h.Version(), "fcMac", h.FcMac, "pages", h.PnMac)
	return nil
}

// CreateZones lays out the page index and the text zone.
func (p *Parser) CreateZones() error {
	p.index = entry.NewIndex(int64(len(p.data)))
	err := p.header.BuildIndex(p.index, func(e entry.Entry, err error) {
		p.diag.Errorf("entry.reject", e.Name, e.Begin, err, "page entry rejected")
	})
	if err != nil {
		return err
	}

	text, err := plc.NewZone("text", plc.ZoneMain, PageSize, int64(p.header.FcMac))
	if err != nil {
		return err
	}
	p.text = text
	if e, ok := p.index.Find(EntryText, 0); ok {
		p.index.MarkParsed(e)
	}
	return nil
}

// DecodeAttributes decodes the tables, then splits the running heads off
// the text and places the pictures.
func (p *Parser) DecodeAttributes() error {
	reg := decode.NewRegistry(p.diag)
	reg.Register(EntryFonts, p.decodeFonts)
	reg.Register(EntrySetb, p.decodeSETB)
	reg.Register(EntrySection, p.decodeSEP)
	reg.Register(EntryPages, p.decodePGTB)
	reg.Register(EntryPara, p.decodePAP)
	reg.Register(EntryChar, p.decodeCHP)
	p.summary = reg.DecodeAll(p.cursor, p.index)

	if p.section.PageWidth == 0 {
		p.section = defaultSection()
	}
	p.placePictures()
	if p.opts.PageTableBreaks && len(p.pages) > 0 {
		p.addPageBreaks()
	}
	return p.splitZones()
}

func (p *Parser) decodeFonts(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	fonts, err := readFonts(v, p.charsets.Default())
	if err != nil {
		return decode.Malformed, err
	}
	p.fontNames = fonts
	for i, f := range fonts {
		p.charsets.SetByName(i, f.Name)
	}
	return decode.Ok, nil
}

func (p *Parser) decodeSETB(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	at, err := readSETB(v, e)
	if err != nil {
		return decode.Malformed, err
	}
	p.sepAt = at
	return decode.Ok, nil
}

func (p *Parser) decodeSEP(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	// SED가 가리키는 위치를 우선, 없으면 페이지 시작
	if p.sepAt >= 0 && p.sepAt != e.Begin {
		if err := v.Seek(p.sepAt); err != nil {
			p.diag.Notef("mswrite.sep", e.Name, p.sepAt, "SED points outside the section page")
		}
	}
	sec, err := readSEP(v)
	if err != nil {
		return decode.Malformed, err
	}
	p.section = sec
	return decode.Ok, nil
}

func (p *Parser) decodePGTB(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	pages, err := readPGTB(v, e)
	if err != nil {
		return decode.Malformed, err
	}
	p.pages = pages
	if !p.opts.PageTableBreaks {
		return decode.Skipped, nil
	}
	return decode.Ok, nil
}

func (p *Parser) decodeCHP(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	t, err := readFKP(v, e.Name, plc.KindFont)
	if err != nil {
		return decode.Malformed, err
	}
	resolve := func(ptr int64) (int, error) {
		return p.fonts.Intern(ptr, func() (sink.Font, error) {
			b, err := fprop(v, ptr, defaultCHP)
			if err != nil {
				return sink.Font{}, err
			}
			chp := parseCHP(b)
			return chp.Font(p.fontName(chp.FontIndex)), nil
		})
	}
	if err := p.text.AddTable(t, modes.Mode(e.Name), resolve); err != nil {
		return decode.Malformed, err
	}
	return decode.Ok, nil
}

func (p *Parser) decodePAP(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	t, err := readFKP(v, e.Name, plc.KindParagraph)
	if err != nil {
		return decode.Malformed, err
	}
	resolve := func(ptr int64) (int, error) {
		var pap PAP
		n := p.paras.Len()
		i, err := p.paras.Intern(ptr, func() (sink.Paragraph, error) {
			b, err := fprop(v, ptr, defaultPAP())
			if err != nil {
				return sink.Paragraph{}, err
			}
			pap = parsePAP(b)
			return pap.Para, nil
		})
		if err == nil && i == n {
			p.paps.Set(i, pap)
		}
		return i, err
	}
	if err := p.text.AddTable(t, modes.Mode(e.Name), resolve); err != nil {
		return decode.Malformed, err
	}
	return decode.Ok, nil
}

func (p *Parser) fontName(i int) string {
	if i >= 0 && i < len(p.fontNames) {
		return p.fontNames[i].Name
	}
	return ""
}

func (p *Parser) defaultFont() sink.Font {
	return parseCHP(defaultCHP).Font(p.fontName(0))
}

// paragraphs returns the paragraph runs of the text in order.
func (p *Parser) paragraphs() []paraRun {
	bps := p.text.Runs.Breakpoints(plc.KindParagraph)
	runs := make([]paraRun, 0, len(bps))
	for i, bp := range bps {
		end := p.text.End
		if i+1 < len(bps) {
			end = bps[i+1].Offset
		}
		if end > bp.Offset {
			runs = append(runs, paraRun{Begin: bp.Offset, End: end, Index: bp.Index})
		}
	}
	return runs
}

type paraRun struct {
	Begin, End int64
	Index      int
}

func (p *Parser) placePictures() {
	var bps []plc.Breakpoint
	for _, run := range p.paragraphs() {
		pap, ok := p.paps.Get(run.Index)
		if !ok || !pap.Graphics() {
			continue
		}
		c, err := p.cursor.View(run.Begin, run.End-run.Begin)
		if err != nil {
			p.diag.Errorf("mswrite.picture", p.text.Name, run.Begin, err, "picture paragraph outside file")
			continue
		}
		pic, n, err := readPicture(c, run.End-run.Begin)
		if err != nil {
			p.diag.Errorf("mswrite.picture", p.text.Name, run.Begin, err, "picture dropped")
			continue
		}
		idx := p.markers.Add(replay.Marker{Kind: replay.MarkerPicture, Consume: int(n), Picture: pic})
		bps = append(bps, plc.Breakpoint{Offset: run.Begin, Kind: plc.KindMarker, Index: idx})
	}
	if err := p.text.Runs.Add(plc.KindMarker, bps); err != nil {
		p.diag.Errorf("mswrite.picture", p.text.Name, -1, err, "pictures dropped")
	}
}

func (p *Parser) addPageBreaks() {
	t := &plc.Table{Name: EntryPages, Kind: plc.KindPageBreak}
	for _, pg := range p.pages {
		t.Positions = append(t.Positions, pg.CP)
		t.Pointers = append(t.Pointers, plc.UseDefault)
	}
	t.Positions = append(t.Positions, p.text.Len())
	if err := p.text.AddTable(t, modes.Mode(EntryPages), nil); err != nil {
		p.diag.Errorf("mswrite.pgtb", EntryPages, -1, err, "page table ignored")
	}
}

// splitZones cuts the leading running-head paragraphs off the text.
// Adjacent paragraphs of the same kind share one zone.
func (p *Parser) splitZones() error {
	type span struct {
		kind       plc.ZoneKind
		begin, end int64
	}
	var spans []span
	mainBegin := p.text.Begin
	for _, run := range p.paragraphs() {
		if run.Begin != mainBegin {
			break
		}
		pap, ok := p.paps.Get(run.Index)
		if !ok || !pap.RunningHead() {
			break
		}
		kind := plc.ZoneHeader
		if pap.Footer() {
			kind = plc.ZoneFooter
		}
		if n := len(spans); n > 0 && spans[n-1].kind == kind {
			spans[n-1].end = run.End
		} else {
			spans = append(spans, span{kind, run.Begin, run.End})
		}
		mainBegin = run.End
	}

	p.heads = p.heads[:0]
	for i, sp := range spans {
		z, err := p.text.Sub(fmt.Sprintf("%s%d", sp.kind, i), sp.kind, sp.begin, sp.end)
		if err != nil {
			return err
		}
		p.heads = append(p.heads, z)
	}
	main, err := p.text.Sub("main", plc.ZoneMain, mainBegin, p.text.End)
	if err != nil {
		return err
	}
	p.main = main
	return nil
}

func (p *Parser) replayer() *replay.Replayer {
	return &replay.Replayer{
		Text:             p.data,
		Fonts:            p.fonts,
		Paragraphs:       p.paras,
		Markers:          p.markers,
		DefaultFont:      p.defaultFont(),
		DefaultParagraph: parsePAP(defaultPAP()).Para,
		Charsets:         p.charsets,
		Controls:         controls(),
		CRLF:             true,
		Diag:             p.diag,
	}
}

func controls() replay.Controls {
	return replay.Controls{
		0x01: replay.CtrlPageNumber,
		0x09: replay.CtrlTab,
		0x0A: replay.CtrlEOL,
		0x0B: replay.CtrlLineBreak,
		0x0C: replay.CtrlPageBreak,
		0x0D: replay.CtrlIgnore,
		0x1F: replay.CtrlSoftHyphen,
	}
}

// Replay emits the main text inside one section, followed by the headers
// and footers as sub-documents.
func (p *Parser) Replay(s sink.Sink) error {
	r := p.replayer()
	s.OpenSection(p.section)
	if err := r.Replay(p.main, s); err != nil {
		return err
	}
	for _, z := range p.heads {
		kind := sink.SubHeader
		if z.Kind == plc.ZoneFooter {
			kind = sink.SubFooter
		}
		s.InsertNote(sink.SubDocument{
			Kind:  kind,
			Label: z.Name,
			Replay: func(s sink.Sink) error {
				return r.Replay(z, s)
			},
		})
	}
	s.CloseSection()
	return nil
}
