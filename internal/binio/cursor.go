// Package binio provides a bounded, seekable cursor over an in-memory byte
// stream. Every read is checked against the cursor's range and fails with
// ErrOutOfBounds instead of returning partial data.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a read or seek leaves the cursor range.
	ErrOutOfBounds = errors.New("binio: read out of bounds")

	// ErrUnexpectedEnd is returned when a stream is shorter than a
	// structurally required minimum.
	ErrUnexpectedEnd = errors.New("binio: unexpected end of stream")
)

// Cursor reads typed values from a byte range [begin, end) of an
// underlying buffer. Positions are always absolute offsets into the
// underlying buffer, so a view and its parent agree on coordinates.
type Cursor struct {
	data  []byte
	begin int64
	end   int64
	pos   int64
	order binary.ByteOrder
}

// New returns a cursor over the whole of data.
func New(data []byte, order binary.ByteOrder) *Cursor {
	if order == nil {
		order = binary.BigEndian
	}
	return &Cursor{
		data:  data,
		begin: 0,
		end:   int64(len(data)),
		order: order,
	}
}

// Order returns the default byte order of the cursor.
func (c *Cursor) Order() binary.ByteOrder {
	return c.order
}

// WithOrder returns a view over the same range using another byte order.
// The new cursor starts at the current position.
func (c *Cursor) WithOrder(order binary.ByteOrder) *Cursor {
	v := *c
	v.order = order
	return &v
}

// Begin returns the first offset of the cursor range.
func (c *Cursor) Begin() int64 { return c.begin }

// End returns the offset just past the cursor range.
func (c *Cursor) End() int64 { return c.end }

// Size returns the length of the cursor range.
func (c *Cursor) Size() int64 { return c.end - c.begin }

// Tell returns the current absolute position.
func (c *Cursor) Tell() int64 { return c.pos }

// Remaining returns the number of bytes between the position and the end.
func (c *Cursor) Remaining() int64 { return c.end - c.pos }

// AtEnd reports whether the position has reached the end of the range.
func (c *Cursor) AtEnd() bool { return c.pos >= c.end }

// InRange reports whether [begin, begin+length) lies inside the range.
func (c *Cursor) InRange(begin, length int64) bool {
	if begin < c.begin || length < 0 {
		return false
	}
	return begin <= c.end && length <= c.end-begin
}

// Seek moves to the absolute position pos. Seeking to End() is allowed.
func (c *Cursor) Seek(pos int64) error {
	if pos < c.begin || pos > c.end {
		return fmt.Errorf("%w: seek to %d outside [%d,%d]", ErrOutOfBounds, pos, c.begin, c.end)
	}
	c.pos = pos
	return nil
}

// Skip advances the position by n bytes.
func (c *Cursor) Skip(n int64) error {
	return c.Seek(c.pos + n)
}

// Keep saves the current position and returns a function that restores it.
// The intended use is
//
//	defer c.Keep()()
//
// at the top of any decoder that moves a shared cursor.
func (c *Cursor) Keep() func() {
	saved := c.pos
	return func() {
		c.pos = saved
	}
}

// View returns a cursor restricted to [begin, begin+length), positioned at
// begin. Reads past the end of the view fail even if the parent has more
// data.
func (c *Cursor) View(begin, length int64) (*Cursor, error) {
	if !c.InRange(begin, length) {
		return nil, fmt.Errorf("%w: view [%d,+%d) outside [%d,%d]", ErrOutOfBounds, begin, length, c.begin, c.end)
	}
	return &Cursor{
		data:  c.data,
		begin: begin,
		end:   begin + length,
		pos:   begin,
		order: c.order,
	}, nil
}

// Bytes returns the whole range without moving the position. The slice
// aliases the underlying buffer and must not be modified.
func (c *Cursor) Bytes() []byte {
	return c.data[c.begin:c.end]
}

// ReadBytes reads the next n bytes. The returned slice aliases the
// underlying buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || int64(n) > c.end-c.pos {
		return nil, fmt.Errorf("%w: need %d bytes at %d, have %d", ErrOutOfBounds, n, c.pos, c.end-c.pos)
	}
	b := c.data[c.pos : c.pos+int64(n)]
	c.pos += int64(n)
	return b, nil
}

// ReadUint reads an unsigned integer of 1 to 4 bytes in the cursor order.
func (c *Cursor) ReadUint(width int) (uint32, error) {
	if width < 1 || width > 4 {
		return 0, fmt.Errorf("binio: unsupported width %d", width)
	}
	b, err := c.ReadBytes(width)
	if err != nil {
		return 0, err
	}
	var v uint32
	if c.order == binary.LittleEndian {
		for i := width - 1; i >= 0; i-- {
			v = v<<8 | uint32(b[i])
		}
	} else {
		for i := 0; i < width; i++ {
			v = v<<8 | uint32(b[i])
		}
	}
	return v, nil
}

// ReadInt reads a sign-extended integer of 1 to 4 bytes.
func (c *Cursor) ReadInt(width int) (int32, error) {
	v, err := c.ReadUint(width)
	if err != nil {
		return 0, err
	}
	shift := uint(32 - 8*width)
	return int32(v<<shift) >> shift, nil
}

// Uint8 reads one byte.
func (c *Cursor) Uint8() (uint8, error) {
	v, err := c.ReadUint(1)
	return uint8(v), err
}

// Int8 reads one signed byte.
func (c *Cursor) Int8() (int8, error) {
	v, err := c.ReadInt(1)
	return int8(v), err
}

// Uint16 reads a 16-bit value in the cursor order.
func (c *Cursor) Uint16() (uint16, error) {
	v, err := c.ReadUint(2)
	return uint16(v), err
}

// Int16 reads a signed 16-bit value in the cursor order.
func (c *Cursor) Int16() (int16, error) {
	v, err := c.ReadInt(2)
	return int16(v), err
}

// Uint24 reads a 24-bit value in the cursor order.
func (c *Cursor) Uint24() (uint32, error) {
	return c.ReadUint(3)
}

// Uint32 reads a 32-bit value in the cursor order.
func (c *Cursor) Uint32() (uint32, error) {
	return c.ReadUint(4)
}

// Int32 reads a signed 32-bit value in the cursor order.
func (c *Cursor) Int32() (int32, error) {
	return c.ReadInt(4)
}

// Uint16LE reads a little-endian 16-bit value regardless of the cursor order.
func (c *Cursor) Uint16LE() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint16BE reads a big-endian 16-bit value regardless of the cursor order.
func (c *Cursor) Uint16BE() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Uint32LE reads a little-endian 32-bit value regardless of the cursor order.
func (c *Cursor) Uint32LE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint32BE reads a big-endian 32-bit value regardless of the cursor order.
func (c *Cursor) Uint32BE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Tag reads a four character type code such as "styl" or "FONT".
func (c *Cursor) Tag() (string, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadCString reads a NUL-terminated string of at most max bytes. The
// terminator is consumed but not returned. Hitting max without a
// terminator returns the bytes read so far.
func (c *Cursor) ReadCString(max int) ([]byte, error) {
	start := c.pos
	for i := 0; i < max; i++ {
		if c.pos >= c.end {
			c.pos = start
			return nil, fmt.Errorf("%w: unterminated string at %d", ErrOutOfBounds, start)
		}
		if c.data[c.pos] == 0 {
			s := c.data[start:c.pos]
			c.pos++
			return s, nil
		}
		c.pos++
	}
	return c.data[start:c.pos], nil
}

// ReadPascalString reads a length byte followed by that many bytes. A
// length above max is rejected.
func (c *Cursor) ReadPascalString(max int) ([]byte, error) {
	start := c.pos
	n, err := c.Uint8()
	if err != nil {
		return nil, err
	}
	if int(n) > max {
		c.pos = start
		return nil, fmt.Errorf("%w: string length %d exceeds %d", ErrOutOfBounds, n, max)
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		c.pos = start
		return nil, err
	}
	return b, nil
}
