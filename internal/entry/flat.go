package entry

import (
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/diag"
)

// FlatLayout describes a flat array of fixed-size index records.
type FlatLayout struct {
	// Name is used for every record when the records carry no tag of
	// their own. When empty each record starts with a four byte tag.
	Name string

	// IDFirst places the 2-byte id before begin/length instead of after.
	IDFirst bool
}

// RecordSize returns the size of one index record in bytes.
func (l FlatLayout) RecordSize() int64 {
	size := int64(4 + 4 + 2)
	if l.Name == "" {
		size += 4
	}
	return size
}

// ReadFlat reads n index records starting at the cursor position and
// inserts them into x. The count is checked against the bytes left in c
// before anything is read: a count that cannot fit fails the whole table.
// Single records that fail validation are rejected, noted in d and
// skipped.
func ReadFlat(c *binio.Cursor, n int, layout FlatLayout, x *Index, d *diag.Collector) error {
	if n < 0 {
		return fmt.Errorf("%w: negative entry count %d", ErrMalformedEntry, n)
	}
	size := layout.RecordSize()
	if int64(n) > c.Remaining()/size {
		return fmt.Errorf("%w: %d index records of %d bytes do not fit in %d bytes",
			ErrMalformedEntry, n, size, c.Remaining())
	}

	for i := 0; i < n; i++ {
		start := c.Tell()
		e, err := readFlatRecord(c, layout)
		if err != nil {
			return fmt.Errorf("%w: index record %d: %v", ErrMalformedEntry, i, err)
		}
		if _, err := x.Insert(e); err != nil {
			d.Errorf("entry.reject", e.Name, start, err, "index record %d rejected", i)
			continue
		}
	}
	return nil
}

func readFlatRecord(c *binio.Cursor, layout FlatLayout) (Entry, error) {
	e := Entry{Name: layout.Name}
	if layout.Name == "" {
		tag, err := c.Tag()
		if err != nil {
			return e, err
		}
		e.Name = tag
	}
	if layout.IDFirst {
		id, err := c.Uint16()
		if err != nil {
			return e, err
		}
		e.ID = int(id)
	}
	begin, err := c.Uint32()
	if err != nil {
		return e, err
	}
	length, err := c.Uint32()
	if err != nil {
		return e, err
	}
	e.Begin = int64(begin)
	e.Length = int64(length)
	if !layout.IDFirst {
		id, err := c.Uint16()
		if err != nil {
			return e, err
		}
		e.ID = int(id)
	}
	return e, nil
}
