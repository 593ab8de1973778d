// Package works decodes the word-processor zones of Works documents
// stored in an OLE2 compound file. All zones live in the "MN0" stream,
// which starts with a header and a flat index of named entries.
package works

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/diag"
	"github.com/roboco-io/mwaw2md/internal/entry"
	"github.com/roboco-io/mwaw2md/internal/parser"
)

// StreamName is the OLE2 stream holding the document.
const StreamName = "MN0"

const (
	headerSize = 12
	version    = 4
)

var magic = []byte("MN0\x00")

// Header is the start of the MN0 stream.
type Header struct {
	Version     uint16
	NumEntries  uint16
	IndexOffset uint32
}

// ParseHeader checks the signature and version of stream.
func ParseHeader(stream []byte) (*Header, error) {
	if len(stream) < headerSize || !bytes.HasPrefix(stream, magic) {
		return nil, fmt.Errorf("%w: no MN0 signature", parser.ErrBadMagic)
	}
	be := binary.BigEndian
	h := &Header{
		Version:     be.Uint16(stream[4:]),
		NumEntries:  be.Uint16(stream[6:]),
		IndexOffset: be.Uint32(stream[8:]),
	}
	if h.Version != version {
		return nil, fmt.Errorf("%w: unsupported MN0 version %d", parser.ErrBadMagic, h.Version)
	}
	return h, nil
}

// ReadIndex reads the entry index the header points at.
func (h *Header) ReadIndex(c *binio.Cursor, d *diag.Collector) (*entry.Index, error) {
	if err := c.Seek(int64(h.IndexOffset)); err != nil {
		return nil, fmt.Errorf("%w: index offset %d: %v", entry.ErrMalformedEntry, h.IndexOffset, err)
	}
	x := entry.NewIndex(c.Size())
	if err := entry.ReadFlat(c, int(h.NumEntries), entry.FlatLayout{IDFirst: true}, x, d); err != nil {
		return nil, err
	}
	return x, nil
}
