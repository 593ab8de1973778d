package works

import (
	"encoding/binary"

	"github.com/roboco-io/mwaw2md/internal/container"
)

type testEntry struct {
	name string
	id   uint16
	data []byte
}

// buildStream lays out an MN0 stream: header, entry bodies, then the
// index. Bodies are placed in order, so a TEXT entry's offset is known to
// the caller through offsetOf.
type streamBuilder struct {
	entries []testEntry
}

func (b *streamBuilder) add(name string, id uint16, data []byte) {
	b.entries = append(b.entries, testEntry{name, id, data})
}

// offsetOf returns where the body of entry i will start.
func (b *streamBuilder) offsetOf(i int) int64 {
	off := int64(headerSize)
	for _, e := range b.entries[:i] {
		off += int64(len(e.data))
	}
	return off
}

func (b *streamBuilder) bytes() []byte {
	be := binary.BigEndian
	out := append([]byte{}, magic...)
	out = be.AppendUint16(out, version)
	out = be.AppendUint16(out, uint16(len(b.entries)))
	out = be.AppendUint32(out, 0) // index offset, patched below

	var index []byte
	for _, e := range b.entries {
		index = append(index, e.name...)
		index = be.AppendUint16(index, e.id)
		index = be.AppendUint32(index, uint32(len(out)))
		index = be.AppendUint32(index, uint32(len(e.data)))
		out = append(out, e.data...)
	}
	be.PutUint32(out[8:], uint32(len(out)))
	return append(out, index...)
}

func (b *streamBuilder) file() *container.File {
	f := &container.File{Name: "test.wps"}
	f.SetStream(StreamName, b.bytes())
	return f
}

func u16(v ...uint16) []byte {
	var b []byte
	for _, x := range v {
		b = binary.BigEndian.AppendUint16(b, x)
	}
	return b
}

func u32(v ...uint32) []byte {
	var b []byte
	for _, x := range v {
		b = binary.BigEndian.AppendUint32(b, x)
	}
	return b
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// fdp builds an FDP body whose records follow the pointer array.
func fdp(positions []uint32, records [][]byte) []byte {
	n := len(records)
	head := 2 + 4*len(positions) + 2*n
	var ptrs []uint16
	var body []byte
	for _, r := range records {
		if r == nil {
			ptrs = append(ptrs, 0xFFFF)
			continue
		}
		ptrs = append(ptrs, uint16(head+len(body)))
		body = append(body, r...)
	}
	return cat(u16(uint16(n)), u32(positions...), u16(ptrs...), body)
}

func charRecord(font uint16, size uint16, flags uint16) []byte {
	return cat([]byte{charRecordSize}, u16(font, size, flags), []byte{0, 0, 0})
}

func plcBody(positions []uint32, dataSize uint16, data ...[]byte) []byte {
	return cat(u16(uint16(len(data)), dataSize), u32(positions...), cat(data...))
}

func fontTable(names ...string) []byte {
	out := u16(uint16(len(names)), 34)
	for i, n := range names {
		rec := make([]byte, 34)
		binary.BigEndian.PutUint16(rec, uint16(i))
		rec[2] = byte(len(n))
		copy(rec[3:], n)
		out = append(out, rec...)
	}
	return out
}
