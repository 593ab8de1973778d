package plc

import (
	"errors"
	"fmt"
)

var (
	// ErrNonMonotonicOffsets is returned when table positions regress or
	// run past the end of the text.
	ErrNonMonotonicOffsets = errors.New("plc: non-monotonic offsets")

	// ErrAttributeIndexOutOfRange is recorded when a breakpoint references
	// a pool slot that does not exist.
	ErrAttributeIndexOutOfRange = errors.New("plc: attribute index out of range")

	// ErrMalformedTable is returned when the position and pointer counts of
	// a table disagree.
	ErrMalformedTable = errors.New("plc: malformed table")
)

// Pointer values with a special meaning.
const (
	NoChange   int64 = 0
	UseDefault int64 = -1
)

// Table is one decoded FDP or PLC: cfod+1 raw positions and cfod pointers
// to attribute records.
type Table struct {
	Name      string
	Kind      Kind
	Positions []int64
	Pointers  []int64
}

// Breakpoints turns the table into breakpoints for zone. Positions are
// normalized with mode and must be non-decreasing and not past zone.End;
// otherwise nothing is resolved and ErrNonMonotonicOffsets is returned.
// Every pointer other than NoChange and UseDefault is passed to resolve,
// which is expected to de-duplicate shared records. Breakpoints outside
// [zone.Begin, zone.End] are dropped.
func (t *Table) Breakpoints(zone *Zone, mode PositionMode, resolve func(ptr int64) (int, error)) ([]Breakpoint, error) {
	if len(t.Positions) != len(t.Pointers)+1 {
		return nil, fmt.Errorf("%w: %s has %d positions for %d pointers",
			ErrMalformedTable, t.Name, len(t.Positions), len(t.Pointers))
	}
	pos, err := Normalize(t.Positions, mode, zone)
	if err != nil {
		return nil, err
	}
	for i, p := range pos {
		if i > 0 && p < pos[i-1] {
			return nil, fmt.Errorf("%w: %s position %d (%d) before %d", ErrNonMonotonicOffsets, t.Name, i, p, pos[i-1])
		}
		if p > zone.End {
			return nil, fmt.Errorf("%w: %s position %d (%d) past text end %d", ErrNonMonotonicOffsets, t.Name, i, p, zone.End)
		}
	}

	out := make([]Breakpoint, 0, len(t.Pointers))
	prev := Default
	for i, ptr := range t.Pointers {
		idx := prev
		switch ptr {
		case NoChange:
		case UseDefault:
			idx = Default
		default:
			idx, err = resolve(ptr)
			if err != nil {
				return nil, fmt.Errorf("%s pointer %d: %w", t.Name, i, err)
			}
		}
		prev = idx
		if pos[i] < zone.Begin || pos[i] > zone.End {
			continue
		}
		out = append(out, Breakpoint{Offset: pos[i], Kind: t.Kind, Index: idx})
	}
	return out, nil
}
