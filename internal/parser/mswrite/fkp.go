package mswrite

import (
	"errors"
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/decode"
	"github.com/roboco-io/mwaw2md/internal/plc"
	"github.com/roboco-io/mwaw2md/internal/sink"
	"github.com/roboco-io/mwaw2md/internal/units"
)

var errBadFPROP = errors.New("mswrite: FPROP outside its page")

// readFKP reads a formatting page. The FOD runs become a plc.Table whose
// pointers are the file offsets of the FPROPs.
func readFKP(v *binio.Cursor, name string, kind plc.Kind) (*plc.Table, error) {
	page := v.Begin()
	data := v.Bytes()
	if len(data) < PageSize {
		return nil, fmt.Errorf("%w: short page at %d", decode.ErrMalformedRecordTable, page)
	}
	cfod := int(data[PageSize-1])
	if cfod > maxFOD {
		return nil, fmt.Errorf("%w: %d FODs in one page", decode.ErrMalformedRecordTable, cfod)
	}

	fcFirst, err := v.Uint32()
	if err != nil {
		return nil, err
	}
	t := &plc.Table{
		Name:      name,
		Kind:      kind,
		Positions: make([]int64, 0, cfod+1),
		Pointers:  make([]int64, 0, cfod),
	}
	t.Positions = append(t.Positions, int64(fcFirst))
	for i := 0; i < cfod; i++ {
		fcLim, err := v.Uint32()
		if err != nil {
			return nil, err
		}
		bfprop, err := v.Uint16()
		if err != nil {
			return nil, err
		}
		t.Positions = append(t.Positions, int64(fcLim))
		switch {
		case bfprop == bfpropNil:
			t.Pointers = append(t.Pointers, plc.UseDefault)
		case 4+int(bfprop) >= PageSize-1:
			return nil, fmt.Errorf("%w: FOD %d bfprop %d", errBadFPROP, i, bfprop)
		default:
			t.Pointers = append(t.Pointers, page+4+int64(bfprop))
		}
	}
	return t, nil
}

// fprop returns the cch bytes of the FPROP at ptr laid over def starting
// at byte 1.
func fprop(v *binio.Cursor, ptr int64, def []byte) ([]byte, error) {
	defer v.Keep()()
	if err := v.Seek(ptr); err != nil {
		return nil, err
	}
	cch, err := v.Uint8()
	if err != nil {
		return nil, err
	}
	// FPROP은 FKP 페이지의 cfod 바이트를 넘을 수 없다
	if ptr+1+int64(cch) > v.Begin()+PageSize-1 {
		return nil, fmt.Errorf("%w: cch %d at %d", errBadFPROP, cch, ptr)
	}
	raw, err := v.ReadBytes(int(cch))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(def))
	copy(out, def)
	if len(raw) > len(out)-1 {
		raw = raw[:len(out)-1]
	}
	copy(out[1:], raw)
	return out, nil
}

var defaultCHP = []byte{1, 0, 24, 0, 0, 0}

// CHP is a decoded character property.
type CHP struct {
	FontIndex int
	HalfPts   int
	Bold      bool
	Italic    bool
	Underline bool
	Special   bool
	Position  int8
}

func parseCHP(b []byte) CHP {
	return CHP{
		FontIndex: int(b[1]>>2) | int(b[4]&0x07)<<6,
		HalfPts:   int(b[2]),
		Bold:      b[1]&chpBold != 0,
		Italic:    b[1]&chpItalic != 0,
		Underline: b[3]&chpUnderline != 0,
		Special:   b[3]&chpSpecial != 0,
		Position:  int8(b[5]),
	}
}

// Font converts the CHP for the sink; the name comes from the font table.
func (c CHP) Font(name string) sink.Font {
	f := sink.Font{
		ID:        c.FontIndex,
		Name:      name,
		Size:      units.HalfPointsToPoints(c.HalfPts),
		Bold:      c.Bold,
		Italic:    c.Italic,
		Underline: c.Underline,
	}
	switch {
	case c.Position > 0:
		f.Script = 1
	case c.Position < 0:
		f.Script = -1
	}
	return f
}

func defaultPAP() []byte {
	b := make([]byte, papSize)
	b[0] = 61
	b[10] = 240 // dyaLine
	return b
}

// PAP is a decoded paragraph property. RHC is kept apart from the sink
// paragraph because only the zone split looks at it.
type PAP struct {
	Para sink.Paragraph
	RHC  byte
}

// RunningHead reports whether the paragraph belongs to a header or footer.
func (p PAP) RunningHead() bool {
	return p.RHC&rhcOddEven != 0
}

// Footer reports whether a running head is printed at the bottom.
func (p PAP) Footer() bool {
	return p.RHC&rhcFooter != 0
}

// Graphics reports whether the paragraph holds a picture.
func (p PAP) Graphics() bool {
	return p.RHC&rhcGraphics != 0
}

func parsePAP(b []byte) PAP {
	u16 := func(off int) int { return int(uint16(b[off]) | uint16(b[off+1])<<8) }
	s16 := func(off int) int { return int(int16(uint16(b[off]) | uint16(b[off+1])<<8)) }

	p := PAP{RHC: b[16]}
	switch b[1] & 0x03 {
	case 1:
		p.Para.Justify = sink.JustifyCenter
	case 2:
		p.Para.Justify = sink.JustifyRight
	case 3:
		p.Para.Justify = sink.JustifyFull
	}
	p.Para.RightIndent = units.TwipsToPoints(s16(4))
	p.Para.LeftIndent = units.TwipsToPoints(s16(6))
	p.Para.FirstIndent = units.TwipsToPoints(s16(8))
	if line := u16(10); line > 0 {
		p.Para.Spacing = float64(line) / 240
	}
	for i := 0; i < maxTabs; i++ {
		off := 22 + i*4
		dxa := u16(off)
		if dxa == 0 {
			break
		}
		tab := sink.Tab{Position: units.TwipsToPoints(dxa)}
		if b[off+2]&0x07 == 3 {
			tab.Kind = sink.TabDecimal
		}
		p.Para.Tabs = append(p.Para.Tabs, tab)
	}
	return p
}
