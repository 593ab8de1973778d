// Package rsrc reads the resource map of a classic Mac OS resource fork
// into an entry index, one entry per resource.
package rsrc

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/diag"
	"github.com/roboco-io/mwaw2md/internal/entry"
	"golang.org/x/text/encoding/charmap"
)

// ErrBadFork is returned when the fork header is not a resource map
// header at all.
var ErrBadFork = errors.New("rsrc: not a resource fork")

const (
	headerSize = 16
	// map header copy, next map handle, file ref, attributes, then the
	// type and name list offsets
	mapTypeListOffset = 24
	mapNameListOffset = 26
	mapMinSize        = 30
	typeRecordSize    = 8
	refRecordSize     = 12
)

// Fork is a parsed resource fork.
type Fork struct {
	Cursor *binio.Cursor
	Index  *entry.Index
}

type header struct {
	dataOff, mapOff, dataLen, mapLen uint32
}

func readHeader(c *binio.Cursor) (header, error) {
	var h header
	for _, f := range []*uint32{&h.dataOff, &h.mapOff, &h.dataLen, &h.mapLen} {
		v, err := c.Uint32()
		if err != nil {
			return h, err
		}
		*f = v
	}
	return h, nil
}

type typeRecord struct {
	tag           string
	nRefs, refOff uint16
}

func readType(m *binio.Cursor, pos int64) (typeRecord, error) {
	var t typeRecord
	if err := m.Seek(pos); err != nil {
		return t, err
	}
	tag, err := m.Tag()
	if err != nil {
		return t, err
	}
	t.tag = tag
	if t.nRefs, err = m.Uint16(); err != nil {
		return t, err
	}
	if t.refOff, err = m.Uint16(); err != nil {
		return t, err
	}
	return t, nil
}

type reference struct {
	id      int16
	nameOff uint16
	off     uint32
}

func readRef(m *binio.Cursor, pos int64) (reference, error) {
	var r reference
	if err := m.Seek(pos); err != nil {
		return r, err
	}
	var err error
	if r.id, err = m.Int16(); err != nil {
		return r, err
	}
	if r.nameOff, err = m.Uint16(); err != nil {
		return r, err
	}
	if err := m.Skip(1); err != nil { // attributes
		return r, err
	}
	if r.off, err = m.Uint24(); err != nil {
		return r, err
	}
	return r, nil
}

// Parse reads the resource map of data. A header that cannot describe a
// resource fork returns ErrBadFork. A map whose lists point outside the
// fork returns entry.ErrMalformedEntry. Single resources that fail their
// bounds check are noted in d and left out.
func Parse(data []byte, d *diag.Collector) (*Fork, error) {
	c := binio.New(data, binary.BigEndian)
	if c.Size() < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadFork, c.Size())
	}
	h, err := readHeader(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFork, err)
	}
	if !c.InRange(int64(h.dataOff), int64(h.dataLen)) || !c.InRange(int64(h.mapOff), int64(h.mapLen)) || h.mapLen < mapMinSize {
		return nil, fmt.Errorf("%w: data [%d,+%d) map [%d,+%d) in %d bytes",
			ErrBadFork, h.dataOff, h.dataLen, h.mapOff, h.mapLen, c.Size())
	}

	m, err := c.View(int64(h.mapOff), int64(h.mapLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFork, err)
	}
	if err := m.Seek(int64(h.mapOff) + mapTypeListOffset); err != nil {
		return nil, fmt.Errorf("%w: map header: %v", entry.ErrMalformedEntry, err)
	}
	typeListOff, err := m.Uint16()
	if err != nil {
		return nil, fmt.Errorf("%w: map header: %v", entry.ErrMalformedEntry, err)
	}
	nameListOff, err := m.Uint16()
	if err != nil {
		return nil, fmt.Errorf("%w: map header: %v", entry.ErrMalformedEntry, err)
	}
	typeList := int64(h.mapOff) + int64(typeListOff)
	nameList := int64(h.mapOff) + int64(nameListOff)

	if err := m.Seek(typeList); err != nil {
		return nil, fmt.Errorf("%w: type list: %v", entry.ErrMalformedEntry, err)
	}
	nTypes, err := m.Uint16()
	if err != nil {
		return nil, fmt.Errorf("%w: type count: %v", entry.ErrMalformedEntry, err)
	}
	numTypes := int(nTypes) + 1
	if nTypes == 0xFFFF {
		numTypes = 0
	}
	if int64(numTypes) > m.Remaining()/typeRecordSize {
		return nil, fmt.Errorf("%w: %d types do not fit in the map", entry.ErrMalformedEntry, numTypes)
	}

	data0, err := c.View(int64(h.dataOff), int64(h.dataLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFork, err)
	}
	x := entry.NewIndex(c.Size())
	for i := 0; i < numTypes; i++ {
		t, err := readType(m, typeList+2+int64(i)*typeRecordSize)
		if err != nil {
			return nil, fmt.Errorf("%w: type %d: %v", entry.ErrMalformedEntry, i, err)
		}

		refs := typeList + int64(t.refOff)
		count := int64(t.nRefs) + 1
		if !m.InRange(refs, count*refRecordSize) {
			return nil, fmt.Errorf("%w: references of %q outside the map", entry.ErrMalformedEntry, t.tag)
		}
		for j := int64(0); j < count; j++ {
			ref, err := readRef(m, refs+j*refRecordSize)
			if err != nil {
				return nil, fmt.Errorf("%w: reference %d of %q: %v", entry.ErrMalformedEntry, j, t.tag, err)
			}
			tag, id := t.tag, ref.id

			e := entry.Entry{Name: tag, ID: int(id)}
			if ref.nameOff != 0xFFFF {
				e.Label = readName(m, nameList+int64(ref.nameOff))
			}
			pos := int64(h.dataOff) + int64(ref.off)
			if err := data0.Seek(pos); err != nil {
				d.Errorf("rsrc.reject", tag, pos, err, "resource %d data outside the fork", id)
				continue
			}
			length, err := data0.Uint32()
			if err != nil {
				d.Errorf("rsrc.reject", tag, pos, err, "resource %d length unreadable", id)
				continue
			}
			e.Begin, e.Length = pos+4, int64(length)
			if e.End() > data0.End() {
				d.Errorf("rsrc.reject", tag, pos, entry.ErrMalformedEntry, "resource %d overruns the data area", id)
				continue
			}
			if _, err := x.Insert(e); err != nil {
				d.Errorf("rsrc.reject", tag, pos, err, "resource %d rejected", id)
			}
		}
	}
	return &Fork{Cursor: c, Index: x}, nil
}

func readName(m *binio.Cursor, pos int64) string {
	defer m.Keep()()
	if err := m.Seek(pos); err != nil {
		return ""
	}
	b, err := m.ReadPascalString(255)
	if err != nil {
		return ""
	}
	name, err := charmap.Macintosh.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(name)
}

// Bytes returns the content of e.
func (f *Fork) Bytes(e *entry.Entry) ([]byte, error) {
	v, err := f.Cursor.View(e.Begin, e.Length)
	if err != nil {
		return nil, err
	}
	return v.Bytes(), nil
}
