package container

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
)

// ErrNotAppleDouble is returned for data without an AppleSingle or
// AppleDouble header.
var ErrNotAppleDouble = errors.New("container: not an AppleDouble file")

const (
	appleSingleMagic = 0x00051600
	appleDoubleMagic = 0x00051607

	adDataFork     = 1
	adResourceFork = 2
	adFinderInfo   = 9
)

// AppleDouble holds the forks found in an AppleSingle or AppleDouble file.
type AppleDouble struct {
	Data     []byte
	Resource []byte
	Type     string
	Creator  string
}

func isAppleSingle(data []byte) bool {
	return len(data) >= 4 && binary.BigEndian.Uint32(data) == appleSingleMagic
}

// ParseAppleDouble reads the entry table of an AppleSingle or AppleDouble
// file: magic, version, 16 filler bytes, an entry count and 12-byte
// entries (id, offset, length).
func ParseAppleDouble(data []byte) (*AppleDouble, error) {
	c := binio.New(data, binary.BigEndian)
	magic, err := c.Uint32()
	if err != nil || (magic != appleSingleMagic && magic != appleDoubleMagic) {
		return nil, ErrNotAppleDouble
	}
	if err := c.Skip(4 + 16); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAppleDouble, err)
	}
	n, err := c.Uint16()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAppleDouble, err)
	}
	if int64(n) > c.Remaining()/12 {
		return nil, fmt.Errorf("%w: %d entries do not fit", ErrNotAppleDouble, n)
	}

	ad := &AppleDouble{}
	for i := 0; i < int(n); i++ {
		var desc [3]uint32 // id, offset, length
		for j := range desc {
			if desc[j], err = c.Uint32(); err != nil {
				return nil, fmt.Errorf("%w: entry %d: %v", ErrNotAppleDouble, i, err)
			}
		}
		id, off, length := desc[0], desc[1], desc[2]
		v, err := c.View(int64(off), int64(length))
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrNotAppleDouble, id, err)
		}
		switch id {
		case adDataFork:
			ad.Data = v.Bytes()
		case adResourceFork:
			ad.Resource = v.Bytes()
		case adFinderInfo:
			if length < 8 {
				break
			}
			if ad.Type, err = v.Tag(); err != nil {
				return nil, fmt.Errorf("%w: finder info: %v", ErrNotAppleDouble, err)
			}
			if ad.Creator, err = v.Tag(); err != nil {
				return nil, fmt.Errorf("%w: finder info: %v", ErrNotAppleDouble, err)
			}
		}
	}
	return ad, nil
}
