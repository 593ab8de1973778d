package works

import (
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/decode"
	"github.com/roboco-io/mwaw2md/internal/entry"
)

// PLC is a position table with fixed-size data per position.
type PLC struct {
	Positions []int64
	// Offsets holds the stream offset of each data record.
	Offsets []int64
	Data    [][]byte
}

// readPLC reads count u16, dataSize u16, count+1 positions and count data
// records. Nothing is read when the table does not fit the entry.
func readPLC(v *binio.Cursor, e *entry.Entry) (*PLC, error) {
	count, err := v.Uint16()
	if err != nil {
		return nil, err
	}
	size, err := v.Uint16()
	if err != nil {
		return nil, err
	}
	tbl := decode.RecordTable{
		HeaderSize: 4 + 4*(int64(count)+1),
		Count:      int(count),
		Stride:     int64(size),
	}
	if err := tbl.Check(e.Length); err != nil {
		return nil, fmt.Errorf("%s: %w", e, err)
	}

	p := &PLC{Positions: make([]int64, count+1)}
	for i := range p.Positions {
		pos, err := v.Uint32()
		if err != nil {
			return nil, err
		}
		p.Positions[i] = int64(pos)
	}
	err = decode.Each(v, e, tbl, func(i int, r *binio.Cursor) error {
		p.Offsets = append(p.Offsets, r.Begin())
		p.Data = append(p.Data, r.Bytes())
		return nil
	})
	return p, err
}

// Token kinds of the TOKN table.
const (
	TokenPageNumber = 1
	TokenDate       = 2
	TokenTime       = 3
	TokenPicture    = 4
	TokenSheet      = 5
)

// Token is one TOKN record.
type Token struct {
	Kind int
	Ref  int
}

func parseToken(b []byte) (Token, error) {
	if len(b) < 4 {
		return Token{}, fmt.Errorf("works: token record of %d bytes", len(b))
	}
	return Token{
		Kind: int(b[0])<<8 | int(b[1]),
		Ref:  int(b[2])<<8 | int(b[3]),
	}, nil
}

// Footnote is one FTNT record: the note text inside the footnote zone.
type Footnote struct {
	Begin  int64
	Length int64
}

func parseFootnote(b []byte) (Footnote, error) {
	if len(b) < 8 {
		return Footnote{}, fmt.Errorf("works: footnote record of %d bytes", len(b))
	}
	u32 := func(b []byte) int64 {
		return int64(b[0])<<24 | int64(b[1])<<16 | int64(b[2])<<8 | int64(b[3])
	}
	return Footnote{Begin: u32(b), Length: u32(b[4:])}, nil
}
