package mswrite

import (
	"encoding/binary"
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/decode"
	"github.com/roboco-io/mwaw2md/internal/entry"
	"github.com/roboco-io/mwaw2md/internal/sink"
	"github.com/roboco-io/mwaw2md/internal/textenc"
	"github.com/roboco-io/mwaw2md/internal/units"
)

// FontName is one FFN of the font table.
type FontName struct {
	Family byte
	Name   string
}

// readFonts reads the FFNTB. An FFN with cbFfn 0xFFFF continues on the
// next page; cbFfn 0 ends the table early.
func readFonts(v *binio.Cursor, cs textenc.Charset) ([]FontName, error) {
	cffn, err := v.Uint16()
	if err != nil {
		return nil, err
	}
	fonts := make([]FontName, 0, cffn)
	for len(fonts) < int(cffn) {
		cb, err := v.Uint16()
		if err != nil {
			return fonts, err
		}
		switch cb {
		case 0:
			return fonts, nil
		case 0xFFFF:
			next := (v.Tell()/PageSize + 1) * PageSize
			if err := v.Seek(next); err != nil {
				return fonts, err
			}
			continue
		}
		rec, err := v.ReadBytes(int(cb))
		if err != nil {
			return fonts, err
		}
		name := rec[1:]
		for i, c := range name {
			if c == 0 {
				name = name[:i]
				break
			}
		}
		fonts = append(fonts, FontName{Family: rec[0], Name: textenc.String(cs, name)})
	}
	return fonts, nil
}

// readSETB returns the file offset of the first section's SEP, or -1.
func readSETB(v *binio.Cursor, e *entry.Entry) (int64, error) {
	csed, err := v.Uint16()
	if err != nil {
		return -1, err
	}
	tbl := decode.RecordTable{HeaderSize: 4, Count: int(csed), Stride: 10}
	at := int64(-1)
	err = decode.Each(v, e, tbl, func(i int, r *binio.Cursor) error {
		if _, err := r.Uint32(); err != nil { // cp
			return err
		}
		if _, err := r.Uint16(); err != nil { // fn
			return err
		}
		fc, err := r.Uint32()
		if err != nil {
			return err
		}
		if at < 0 && fc != 0xFFFFFFFF {
			at = int64(fc)
		}
		return nil
	})
	return at, err
}

var defaultSEP = func() []byte {
	b := make([]byte, sepSize)
	put := func(off int, v uint16) {
		b[off] = byte(v)
		b[off+1] = byte(v >> 8)
	}
	put(2, 15840)  // yaMac, 11in
	put(4, 12240)  // xaMac, 8.5in
	put(6, 0xFFFF) // pgnFirst
	put(8, 1440)   // yaTop
	put(10, 12960) // dyaText
	put(12, 1800)  // xaLeft
	put(14, 8640)  // dxaText
	put(18, 1080)  // yaHeader
	put(20, 14760) // yaFooter
	return b
}()

// readSEP decodes the section properties at the view position.
func readSEP(v *binio.Cursor) (sink.Section, error) {
	cch, err := v.Uint8()
	if err != nil {
		return sink.Section{}, err
	}
	raw, err := v.ReadBytes(int(cch))
	if err != nil {
		return sink.Section{}, err
	}
	b := make([]byte, sepSize)
	copy(b, defaultSEP)
	if len(raw) > sepSize-1 {
		raw = raw[:sepSize-1]
	}
	copy(b[1:], raw)

	u16 := func(off int) int { return int(uint16(b[off]) | uint16(b[off+1])<<8) }
	pt := func(off int) float64 { return units.TwipsToPoints(u16(off)) }

	sec := sink.Section{
		PageHeight: pt(2),
		PageWidth:  pt(4),
		MarginTop:  pt(8),
		MarginLeft: pt(12),
		FirstPage:  1,
	}
	sec.MarginBottom = sec.PageHeight - sec.MarginTop - pt(10)
	sec.MarginRight = sec.PageWidth - sec.MarginLeft - pt(14)
	if first := u16(6); first != 0xFFFF {
		sec.FirstPage = first
	}
	if sec.MarginBottom < 0 || sec.MarginRight < 0 {
		return sec, fmt.Errorf("mswrite: text area larger than page (%gx%g)", sec.PageWidth, sec.PageHeight)
	}
	return sec, nil
}

// defaultSection is the section of a document without a SEP.
func defaultSection() sink.Section {
	sec, _ := readSEP(binio.New([]byte{0}, binary.LittleEndian))
	return sec
}

// PageStart is one PGD of the page table.
type PageStart struct {
	Number int
	CP     int64 // relative to the start of the text
}

func readPGTB(v *binio.Cursor, e *entry.Entry) ([]PageStart, error) {
	cpgd, err := v.Uint16()
	if err != nil {
		return nil, err
	}
	tbl := decode.RecordTable{HeaderSize: 4, Count: int(cpgd), Stride: pgdSize}
	pages := make([]PageStart, 0, cpgd)
	err = decode.Each(v, e, tbl, func(i int, r *binio.Cursor) error {
		pgn, err := r.Uint16()
		if err != nil {
			return err
		}
		cp, err := r.Uint32()
		if err != nil {
			return err
		}
		pages = append(pages, PageStart{Number: int(pgn), CP: int64(cp)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}
