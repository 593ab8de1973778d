// Package mactext decodes classic Mac OS TextEdit documents, as written by
// TeachText and SimpleText: plain text in the data fork with the styles
// and pictures in the resource fork.
package mactext

import (
	"bytes"
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
	"github.com/roboco-io/mwaw2md/internal/rsrc"
	"github.com/roboco-io/mwaw2md/internal/sink"
	"github.com/roboco-io/mwaw2md/internal/textenc"
)

const (
	styleRecordSize = 20
	pictureBase     = 1000
	pictureAnchor   = 0xCA
)

var modes = plc.ModeRegistry{"styl": plc.PosRelative}

// 해석하지 않는 리소스
var skipped = []string{"MPSR", "ckid", "vers", "BBST", "SIZE", "wind"}

// Parser decodes one TextEdit document.
type Parser struct {
	opts parser.Options
	diag *diag.Collector

	text     []byte
	fork     *rsrc.Fork
	forkErr  error
	index    *entry.Index
	cursor   *binio.Cursor
	summary  decode.Summary
	charsets *textenc.Table

	families map[int]string
	fonts    *plc.Pool[sink.Font]
	markers  *plc.Pool[replay.Marker]
	pictures map[int][]byte
	styled   bool

	main *plc.Zone
}

// New creates a TextEdit parser. d may be nil.
func New(opts parser.Options, d *diag.Collector) *Parser {
	return &Parser{
		opts:     opts,
		diag:     d,
		families: make(map[int]string),
		fonts:    plc.NewPool[sink.Font](),
		markers:  plc.NewPool[replay.Marker](),
		pictures: make(map[int][]byte),
	}
}

func (p *Parser) Format() parser.Format { return parser.FormatMacText }

func (p *Parser) Index() *entry.Index { return p.index }

func (p *Parser) Summary() decode.Summary { return p.summary }

// CheckHeader accepts a file with a readable resource fork or with the
// TEXT/ttro Finder type. A text file has no signature of its own.
func (p *Parser) CheckHeader(f *container.File) error {
	if !f.HasResource() {
		if f.Type != "TEXT" && f.Type != "ttro" {
			return fmt.Errorf("%w: no resource fork and Finder type %q", parser.ErrBadMagic, f.Type)
		}
	} else {
		fork, err := rsrc.Parse(f.Resource, p.diag)
		if errors.Is(err, rsrc.ErrBadFork) {
			return fmt.Errorf("%w: %v", parser.ErrBadMagic, err)
		}
		p.fork, p.forkErr = fork, err
	}
	p.text = f.Data

	cs, err := textenc.ByName(p.opts.DefaultEncoding)
	if err != nil {
		p.diag.Errorf("mactext.encoding", "", -1, err, "using MacRoman")
		cs = nil
	}
	p.charsets = textenc.NewTable(cs)
	return nil
}

// CreateZones takes the resource map as the index. The data fork is the
// only text zone.
func (p *Parser) CreateZones() error {
	if p.forkErr != nil {
		return p.forkErr
	}
	if p.fork != nil {
		p.index, p.cursor = p.fork.Index, p.fork.Cursor
	} else {
		p.index, p.cursor = entry.NewIndex(0), binio.New(nil, binary.BigEndian)
	}
	main, err := plc.NewZone("main", plc.ZoneMain, 0, int64(len(p.text)))
	if err != nil {
		return err
	}
	p.main = main
	return nil
}

// DecodeAttributes reads the font names, the style table and the
// pictures, then anchors the pictures in the text.
func (p *Parser) DecodeAttributes() error {
	reg := decode.NewRegistry(p.diag)
	reg.Register("FOND", p.decodeFOND)
	reg.Register("styl", p.decodeStyl)
	reg.Register("PICT", p.decodePICT)
	reg.Skip(skipped...)
	p.summary = reg.DecodeAll(p.cursor, p.index)

	p.anchorPictures()
	return nil
}

func (p *Parser) decodeFOND(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	if e.Label != "" {
		p.families[e.ID] = e.Label
	}
	return decode.Skipped, nil
}

func (p *Parser) familyName(id int) string {
	if name, ok := p.families[id]; ok {
		return name
	}
	return familyNames[id]
}

func (p *Parser) decodeStyl(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	if p.styled {
		p.diag.Notef("mactext.styl", e.Name, e.Begin, "second style table %d ignored", e.ID)
		return decode.Skipped, nil
	}
	n, err := v.Uint16()
	if err != nil {
		return decode.Malformed, err
	}
	tbl := decode.RecordTable{HeaderSize: 2, Count: int(n), Stride: styleRecordSize}
	t := &plc.Table{Name: e.Name, Kind: plc.KindFont}
	err = decode.Each(v, e, tbl, func(i int, r *binio.Cursor) error {
		start, err := r.Uint32()
		if err != nil {
			return err
		}
		t.Positions = append(t.Positions, int64(start))
		t.Pointers = append(t.Pointers, r.Begin())
		return nil
	})
	if err != nil {
		return decode.Malformed, err
	}
	if len(t.Pointers) == 0 {
		return decode.Ok, nil
	}
	t.Positions = append(t.Positions, p.main.Len())

	resolve := func(ptr int64) (int, error) {
		return p.fonts.Intern(ptr, func() (sink.Font, error) {
			r, err := v.View(ptr, styleRecordSize)
			if err != nil {
				return sink.Font{}, err
			}
			return p.readStyle(r)
		})
	}
	if err := p.main.AddTable(t, modes.Mode(e.Name), resolve); err != nil {
		return decode.Malformed, err
	}
	p.styled = true
	return decode.Ok, nil
}

// readStyle decodes one ScrpStElement.
func (p *Parser) readStyle(r *binio.Cursor) (sink.Font, error) {
	var rec struct {
		Start          uint32
		Height, Ascent uint16
		Family         uint16
		Face, Pad      uint8
		Size           uint16
		R, G, B        uint16
	}
	if err := binary.Read(bytes.NewReader(r.Bytes()), binary.BigEndian, &rec); err != nil {
		return sink.Font{}, err
	}
	family := int(int16(rec.Family))
	if cs, ok := textenc.ForMacFamily(family); ok {
		p.charsets.Set(family, cs)
	}
	f := sink.Font{
		ID:        family,
		Name:      p.familyName(family),
		Size:      float64(rec.Size),
		Bold:      rec.Face&faceBold != 0,
		Italic:    rec.Face&faceItalic != 0,
		Underline: rec.Face&faceUnderline != 0,
		Outline:   rec.Face&faceOutline != 0,
		Shadow:    rec.Face&faceShadow != 0,
		Color:     sink.Color{R: uint8(rec.R >> 8), G: uint8(rec.G >> 8), B: uint8(rec.B >> 8)},
	}
	if cs, ok := textenc.ForFontName(f.Name); ok {
		p.charsets.Set(family, cs)
	}
	return f, nil
}

func (p *Parser) decodePICT(v *binio.Cursor, e *entry.Entry) (decode.Result, error) {
	p.pictures[e.ID] = v.Bytes()
	return decode.Ok, nil
}

// anchorPictures turns the n-th 0xCA byte into PICT 1000+n when that
// picture exists.
func (p *Parser) anchorPictures() {
	if len(p.pictures) == 0 {
		return
	}
	var bps []plc.Breakpoint
	n := 0
	for i, b := range p.text {
		if b != pictureAnchor {
			continue
		}
		data, ok := p.pictures[pictureBase+n]
		n++
		if !ok {
			continue
		}
		idx := p.markers.Add(replay.Marker{
			Kind:    replay.MarkerPicture,
			Consume: 1,
			Picture: sink.Picture{Data: data, MIME: "image/pict", Placement: sink.Placement{Anchor: sink.AnchorChar}},
		})
		bps = append(bps, plc.Breakpoint{Offset: int64(i), Kind: plc.KindMarker, Index: idx})
	}
	if err := p.main.Runs.Add(plc.KindMarker, bps); err != nil {
		p.diag.Errorf("mactext.pict", p.main.Name, -1, err, "pictures dropped")
	}
}

func defaultFont() sink.Font {
	return sink.Font{ID: 1, Name: familyNames[1], Size: 12}
}

// Replay emits the data fork as one section.
func (p *Parser) Replay(s sink.Sink) error {
	r := &replay.Replayer{
		Text:        p.text,
		Fonts:       p.fonts,
		Paragraphs:  plc.NewPool[sink.Paragraph](),
		Markers:     p.markers,
		DefaultFont: defaultFont(),
		Charsets:    p.charsets,
		Controls:    replay.MacControls(),
		Diag:        p.diag,
	}
	s.OpenSection(sink.Section{
		PageWidth: 612, PageHeight: 792,
		MarginTop: 72, MarginBottom: 72, MarginLeft: 72, MarginRight: 72,
		FirstPage: 1,
	})
	if err := r.Replay(p.main, s); err != nil {
		return err
	}
	s.CloseSection()
	return nil
}
