package decode

import (
	"errors"
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/entry"
)

// ErrMalformedRecordTable is returned when a record table header declares
// more data than its entry holds.
var ErrMalformedRecordTable = errors.New("decode: malformed record table")

// RecordTable describes a header followed by Count records of Stride bytes.
type RecordTable struct {
	HeaderSize int64
	Count      int
	Stride     int64
}

// Size returns the number of bytes the table occupies.
func (t RecordTable) Size() int64 {
	return t.HeaderSize + int64(t.Count)*t.Stride
}

// Check verifies that the table fits in length bytes.
func (t RecordTable) Check(length int64) error {
	if t.Count < 0 || t.Stride < 0 || t.HeaderSize < 0 {
		return fmt.Errorf("%w: negative count %d or stride %d", ErrMalformedRecordTable, t.Count, t.Stride)
	}
	if t.HeaderSize > length {
		return fmt.Errorf("%w: header of %d bytes in %d", ErrMalformedRecordTable, t.HeaderSize, length)
	}
	if t.Stride > 0 && int64(t.Count) > (length-t.HeaderSize)/t.Stride {
		return fmt.Errorf("%w: %d records of %d bytes exceed %d", ErrMalformedRecordTable,
			t.Count, t.Stride, length-t.HeaderSize)
	}
	return nil
}

// Each calls fn for every record of tbl inside e. Each record view is
// bounded to Stride bytes and positioned at its first byte. Nothing is
// read when the table does not fit the entry.
func Each(v *binio.Cursor, e *entry.Entry, tbl RecordTable, fn func(i int, r *binio.Cursor) error) error {
	if err := tbl.Check(e.Length); err != nil {
		return fmt.Errorf("%s: %w", e, err)
	}
	for i := 0; i < tbl.Count; i++ {
		r, err := v.View(e.Begin+tbl.HeaderSize+int64(i)*tbl.Stride, tbl.Stride)
		if err != nil {
			return fmt.Errorf("%s record %d: %w", e, i, err)
		}
		if err := fn(i, r); err != nil {
			return fmt.Errorf("%s record %d: %w", e, i, err)
		}
	}
	return nil
}

// ReadCountStride reads a count and a stride field of the given widths at
// the position of v. A zero stride is rejected, and so is a count that
// cannot fit in the bytes after the header.
func ReadCountStride(v *binio.Cursor, countWidth, strideWidth int) (RecordTable, error) {
	start := v.Tell()
	count, err := v.ReadUint(countWidth)
	if err != nil {
		return RecordTable{}, fmt.Errorf("%w: count: %v", ErrMalformedRecordTable, err)
	}
	stride, err := v.ReadUint(strideWidth)
	if err != nil {
		return RecordTable{}, fmt.Errorf("%w: stride: %v", ErrMalformedRecordTable, err)
	}
	if stride == 0 && count > 0 {
		return RecordTable{}, fmt.Errorf("%w: zero stride", ErrMalformedRecordTable)
	}
	tbl := RecordTable{
		HeaderSize: v.Tell() - start,
		Count:      int(count),
		Stride:     int64(stride),
	}
	if err := tbl.Check(v.End() - start); err != nil {
		return RecordTable{}, err
	}
	return tbl, nil
}
