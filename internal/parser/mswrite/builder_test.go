package mswrite

import (
	"bytes"
	"encoding/binary"
)

// run is one FOD: the run ends lim bytes into the text, prop is the
// FPROP body (nil for the default properties).
type run struct {
	lim  int
	prop []byte
}

// testDoc assembles a Write file page by page.
type testDoc struct {
	text  []byte
	chp   []run
	pap   []run
	fonts []string
	sep   []byte
	pages []PageStart

	// raw overrides for broken tables
	pgtbCount int
	chpCfod   int
}

func page() []byte { return make([]byte, PageSize) }

func fkp(fcFirst int, runs []run, cfod int) []byte {
	p := page()
	le := binary.LittleEndian
	le.PutUint32(p[0:], uint32(fcFirst))

	props := 4 + fodSize*len(runs)
	seen := map[string]int{}
	for i, r := range runs {
		off := 4 + i*fodSize
		le.PutUint32(p[off:], uint32(PageSize+r.lim))
		if r.prop == nil {
			le.PutUint16(p[off+4:], bfpropNil)
			continue
		}
		at, ok := seen[string(r.prop)]
		if !ok {
			at = props
			p[at] = byte(len(r.prop))
			copy(p[at+1:], r.prop)
			props += 1 + len(r.prop)
			seen[string(r.prop)] = at
		}
		le.PutUint16(p[off+4:], uint16(at-4))
	}
	p[PageSize-1] = byte(len(runs))
	if cfod > 0 {
		p[PageSize-1] = byte(cfod)
	}
	return p
}

func (d *testDoc) bytes() []byte {
	le := binary.LittleEndian
	var out bytes.Buffer
	hdr := page()
	out.Write(hdr)
	out.Write(d.text)
	for out.Len()%PageSize != 0 {
		out.WriteByte(0)
	}
	fcMac := PageSize + len(d.text)
	pn := func() uint16 { return uint16(out.Len() / PageSize) }

	out.Write(fkp(PageSize, d.chp, d.chpCfod))
	pnPara := pn()
	out.Write(fkp(PageSize, d.pap, 0))
	pnFntb := pn()
	pnSep := pnFntb
	if d.sep != nil {
		p := page()
		p[0] = byte(len(d.sep))
		copy(p[1:], d.sep)
		out.Write(p)
	}
	pnSetb := pn()
	if d.sep != nil {
		p := page()
		le.PutUint16(p[0:], 1)
		le.PutUint16(p[2:], 1)
		le.PutUint32(p[4+6:], uint32(pnSep)*PageSize)
		out.Write(p)
	}
	pnPgtb := pn()
	if d.pages != nil || d.pgtbCount > 0 {
		p := page()
		n := len(d.pages)
		if d.pgtbCount > 0 {
			n = d.pgtbCount
		}
		le.PutUint16(p[0:], uint16(n))
		for i, pg := range d.pages {
			le.PutUint16(p[4+i*pgdSize:], uint16(pg.Number))
			le.PutUint32(p[4+i*pgdSize+2:], uint32(pg.CP))
		}
		out.Write(p)
	}
	pnFfnt := pn()
	if d.fonts != nil {
		p := page()
		le.PutUint16(p[0:], uint16(len(d.fonts)))
		at := 2
		for _, name := range d.fonts {
			le.PutUint16(p[at:], uint16(len(name)+2))
			p[at+2] = 0x20 // FF_SWISS
			copy(p[at+3:], name)
			at += 2 + len(name) + 2
		}
		out.Write(p)
	}
	pnMac := pn()

	b := out.Bytes()
	le.PutUint16(b[offIdent:], IdentWrite31)
	le.PutUint16(b[offTool:], ToolWord)
	le.PutUint32(b[offFcMac:], uint32(fcMac))
	le.PutUint16(b[offPnPara:], pnPara)
	le.PutUint16(b[offPnFntb:], pnFntb)
	le.PutUint16(b[offPnSep:], pnSep)
	le.PutUint16(b[offPnSetb:], pnSetb)
	le.PutUint16(b[offPnPgtb:], pnPgtb)
	le.PutUint16(b[offPnFfnt:], pnFfnt)
	le.PutUint16(b[offPnMac:], pnMac)
	return b
}

// chpProp builds a CHP FPROP for font ftc at hps half points.
func chpProp(ftc int, hps int, bold bool) []byte {
	b := byte(ftc << 2)
	if bold {
		b |= chpBold
	}
	return []byte{b, byte(hps), 0, byte(ftc >> 6)}
}

// papProp builds a PAP FPROP with the given justification and rhc.
func papProp(jc, rhc byte) []byte {
	p := make([]byte, 16)
	p[0] = jc
	le := binary.LittleEndian
	le.PutUint16(p[9:], 240)
	p[15] = rhc
	return p
}
