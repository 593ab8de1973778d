package works

import (
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/plc"
	"github.com/roboco-io/mwaw2md/internal/sink"
	"github.com/roboco-io/mwaw2md/internal/units"
)

// 글자 속성 플래그
const (
	charBold = 1 << iota
	charItalic
	charUnderline
	charStrike
	charOutline
	charShadow
	charSuper
	charSub
)

const (
	charRecordSize = 1 + 2 + 2 + 2 + 3
	paraFixedSize  = 1 + 1 + 12 + 2 + 1
	tabSize        = 5
)

// readFDP reads cfod, the cfod+1 positions and the cfod pointers. The
// pointers are made absolute; 0 and 0xFFFF keep their special meaning.
func readFDP(v *binio.Cursor, name string, kind plc.Kind) (*plc.Table, error) {
	cfod, err := v.Uint16()
	if err != nil {
		return nil, err
	}
	if int64(cfod)*6+4 > v.Remaining() {
		return nil, fmt.Errorf("%w: %s declares %d runs in %d bytes", plc.ErrMalformedTable, name, cfod, v.Remaining())
	}
	t := &plc.Table{
		Name:      name,
		Kind:      kind,
		Positions: make([]int64, cfod+1),
		Pointers:  make([]int64, cfod),
	}
	for i := range t.Positions {
		pos, err := v.Uint32()
		if err != nil {
			return nil, err
		}
		t.Positions[i] = int64(pos)
	}
	for i := range t.Pointers {
		ptr, err := v.Uint16()
		if err != nil {
			return nil, err
		}
		switch ptr {
		case 0:
			t.Pointers[i] = plc.NoChange
		case 0xFFFF:
			t.Pointers[i] = plc.UseDefault
		default:
			t.Pointers[i] = v.Begin() + int64(ptr)
		}
	}
	return t, nil
}

// readCharRecord decodes the character record at the view position.
func readCharRecord(v *binio.Cursor, fonts map[int]string) (sink.Font, error) {
	n, err := v.Uint8()
	if err != nil {
		return sink.Font{}, err
	}
	if int(n) < charRecordSize {
		return sink.Font{}, fmt.Errorf("works: character record of %d bytes", n)
	}
	var fields [3]uint16 // font id, size, flags
	for i := range fields {
		if fields[i], err = v.Uint16(); err != nil {
			return sink.Font{}, err
		}
	}
	id, size, flags := fields[0], fields[1], fields[2]
	rgb, err := v.ReadBytes(3)
	if err != nil {
		return sink.Font{}, err
	}
	f := sink.Font{
		ID:        int(id),
		Name:      fonts[int(id)],
		Size:      float64(size),
		Bold:      flags&charBold != 0,
		Italic:    flags&charItalic != 0,
		Underline: flags&charUnderline != 0,
		Strike:    flags&charStrike != 0,
		Outline:   flags&charOutline != 0,
		Shadow:    flags&charShadow != 0,
		Color:     sink.Color{R: rgb[0], G: rgb[1], B: rgb[2]},
	}
	switch {
	case flags&charSuper != 0:
		f.Script = 1
	case flags&charSub != 0:
		f.Script = -1
	}
	return f, nil
}

// readParaRecord decodes the paragraph record at the view position.
func readParaRecord(v *binio.Cursor) (sink.Paragraph, error) {
	var p sink.Paragraph
	n, err := v.Uint8()
	if err != nil {
		return p, err
	}
	if int(n) < paraFixedSize {
		return p, fmt.Errorf("works: paragraph record of %d bytes", n)
	}
	jc, err := v.Uint8()
	if err != nil {
		return p, err
	}
	switch jc {
	case 1:
		p.Justify = sink.JustifyCenter
	case 2:
		p.Justify = sink.JustifyRight
	case 3:
		p.Justify = sink.JustifyFull
	}
	var fixed [3]float64
	for i := range fixed {
		raw, err := v.Int32()
		if err != nil {
			return p, err
		}
		fixed[i] = units.Fixed16ToPoints(raw)
	}
	p.LeftIndent, p.RightIndent, p.FirstIndent = fixed[0], fixed[1], fixed[2]
	spacing, err := v.Uint16()
	if err != nil {
		return p, err
	}
	if spacing > 0 {
		p.Spacing = float64(spacing) / 100
	}
	ntabs, err := v.Uint8()
	if err != nil {
		return p, err
	}
	if int(n) < paraFixedSize+int(ntabs)*tabSize {
		return p, fmt.Errorf("works: %d tabs overrun a %d byte paragraph record", ntabs, n)
	}
	for i := 0; i < int(ntabs); i++ {
		pos, err := v.Int32()
		if err != nil {
			return p, err
		}
		kind, err := v.Uint8()
		if err != nil {
			return p, err
		}
		tab := sink.Tab{Position: units.Fixed16ToPoints(pos)}
		if kind <= uint8(sink.TabDecimal) {
			tab.Kind = sink.TabKind(kind)
		}
		p.Tabs = append(p.Tabs, tab)
	}
	return p, nil
}
