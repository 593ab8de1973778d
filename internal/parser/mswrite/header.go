package mswrite

import (
	"encoding/binary"
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/entry"
	"github.com/roboco-io/mwaw2md/internal/parser"
)

// Header는 Write 파일의 첫 페이지
type Header struct {
	Ident  uint16
	FcMac  uint32 // 텍스트 끝 (파일 오프셋)
	PnPara uint16 // 문단 FKP 시작 페이지
	PnFntb uint16 // 각주 테이블
	PnSep  uint16 // 구역 속성
	PnSetb uint16 // 구역 테이블
	PnPgtb uint16 // 페이지 테이블
	PnFfnt uint16 // 글꼴 이름 테이블
	PnMac  uint16 // 파일 페이지 수
}

// ParseHeader parses the 128-byte header page. A signature mismatch
// yields parser.ErrBadMagic; a text range outside the file is fatal.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < PageSize {
		return nil, fmt.Errorf("%w: %d bytes is smaller than the header page", parser.ErrBadMagic, len(data))
	}
	le := binary.LittleEndian

	h := &Header{Ident: le.Uint16(data[offIdent:])}
	if h.Ident != IdentWrite30 && h.Ident != IdentWrite31 {
		return nil, fmt.Errorf("%w: wIdent %#04x", parser.ErrBadMagic, h.Ident)
	}
	if le.Uint16(data[offDty:]) != 0 || le.Uint16(data[offTool:]) != ToolWord {
		return nil, fmt.Errorf("%w: not a Write document (dty %d, wTool %#04x)",
			parser.ErrBadMagic, le.Uint16(data[offDty:]), le.Uint16(data[offTool:]))
	}

	h.FcMac = le.Uint32(data[offFcMac:])
	h.PnPara = le.Uint16(data[offPnPara:])
	h.PnFntb = le.Uint16(data[offPnFntb:])
	h.PnSep = le.Uint16(data[offPnSep:])
	h.PnSetb = le.Uint16(data[offPnSetb:])
	h.PnPgtb = le.Uint16(data[offPnPgtb:])
	h.PnFfnt = le.Uint16(data[offPnFfnt:])
	h.PnMac = le.Uint16(data[offPnMac:])

	if h.FcMac < PageSize || int64(h.FcMac) > int64(len(data)) {
		return nil, fmt.Errorf("%w: text end %d outside file of %d bytes", binio.ErrUnexpectedEnd, h.FcMac, len(data))
	}
	return h, nil
}

// PnChar returns the first character FKP page, the page after the text.
func (h *Header) PnChar() uint16 {
	return uint16((h.FcMac + PageSize - 1) / PageSize)
}

// Version returns "3.0" or "3.1".
func (h *Header) Version() string {
	if h.Ident == IdentWrite31 {
		return "3.1"
	}
	return "3.0"
}

// BuildIndex lays the page ranges of the header out as entries. Page
// numbers that go backwards make the whole index unusable; ranges past
// the end of the file are rejected one by one by x.
func (h *Header) BuildIndex(x *entry.Index, reject func(e entry.Entry, err error)) error {
	order := []uint16{h.PnChar(), h.PnPara, h.PnFntb, h.PnSep, h.PnSetb, h.PnPgtb, h.PnFfnt, h.PnMac}
	for i := 1; i < len(order); i++ {
		if order[i] < order[i-1] {
			return fmt.Errorf("%w: page table out of order: %v", entry.ErrMalformedEntry, order)
		}
	}

	add := func(e entry.Entry) {
		if _, err := x.Insert(e); err != nil {
			reject(e, err)
		}
	}
	span := func(name string, from, to uint16) {
		if to > from {
			add(entry.Entry{Name: name, Begin: int64(from) * PageSize, Length: int64(to-from) * PageSize})
		}
	}

	if _, err := x.Insert(entry.Entry{Name: EntryText, Begin: PageSize, Length: int64(h.FcMac) - PageSize}); err != nil {
		return err
	}
	for pn := h.PnChar(); pn < h.PnPara; pn++ {
		add(entry.Entry{Name: EntryChar, ID: int(pn), Begin: int64(pn) * PageSize, Length: PageSize})
	}
	for pn := h.PnPara; pn < h.PnFntb; pn++ {
		add(entry.Entry{Name: EntryPara, ID: int(pn), Begin: int64(pn) * PageSize, Length: PageSize})
	}
	span(EntrySection, h.PnSep, h.PnSetb)
	span(EntrySetb, h.PnSetb, h.PnPgtb)
	span(EntryPages, h.PnPgtb, h.PnFfnt)
	span(EntryFonts, h.PnFfnt, h.PnMac)
	return nil
}
