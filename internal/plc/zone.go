package plc

import "fmt"

// ZoneKind is the role of a text zone.
type ZoneKind int

const (
	ZoneMain ZoneKind = iota
	ZoneHeader
	ZoneFooter
	ZoneFootnote
)

func (k ZoneKind) String() string {
	switch k {
	case ZoneMain:
		return "main"
	case ZoneHeader:
		return "header"
	case ZoneFooter:
		return "footer"
	case ZoneFootnote:
		return "footnote"
	default:
		return fmt.Sprintf("zone(%d)", int(k))
	}
}

// Zone is a contiguous range [Begin, End) of text bytes and the attribute
// runs that apply to it. Breakpoint offsets use the same origin as Begin.
type Zone struct {
	Name  string
	Kind  ZoneKind
	Begin int64
	End   int64
	Runs  *Index
}

// NewZone creates a zone with an empty index.
func NewZone(name string, kind ZoneKind, begin, end int64) (*Zone, error) {
	if begin < 0 || begin > end {
		return nil, fmt.Errorf("plc: zone %s has bad range [%d,%d)", name, begin, end)
	}
	return &Zone{Name: name, Kind: kind, Begin: begin, End: end, Runs: NewIndex()}, nil
}

// Len returns the number of text bytes in the zone.
func (z *Zone) Len() int64 {
	return z.End - z.Begin
}

// Sub cuts [begin, end) out of z as a new zone whose runs are sliced from
// z's. Unless end is the end of z, breakpoints at end belong to the text
// that follows and are left out.
func (z *Zone) Sub(name string, kind ZoneKind, begin, end int64) (*Zone, error) {
	if begin < z.Begin || end > z.End || begin > end {
		return nil, fmt.Errorf("plc: zone %s [%d,%d) outside %s [%d,%d)", name, begin, end, z.Name, z.Begin, z.End)
	}
	runs := z.Runs.Slice(begin, end)
	if end < z.End {
		runs.dropAt(end)
	}
	return &Zone{Name: name, Kind: kind, Begin: begin, End: end, Runs: runs}, nil
}

// AddTable converts t and merges its breakpoints into the zone.
func (z *Zone) AddTable(t *Table, mode PositionMode, resolve func(ptr int64) (int, error)) error {
	seq, err := t.Breakpoints(z, mode, resolve)
	if err != nil {
		return err
	}
	return z.Runs.Add(t.Kind, seq)
}
