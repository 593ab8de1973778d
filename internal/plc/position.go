package plc

import "fmt"

// PositionMode is how a table encodes its text positions.
type PositionMode int

const (
	// PosAbsolute positions are stream offsets.
	PosAbsolute PositionMode = iota
	// PosRelative positions are offsets from the zone start.
	PosRelative
	// PosIncremental positions are deltas from the previous position; the
	// first position is the zone start.
	PosIncremental
	// PosUnknown positions are relative when the first one lies before the
	// zone start, absolute otherwise.
	PosUnknown
)

func (m PositionMode) String() string {
	switch m {
	case PosAbsolute:
		return "absolute"
	case PosRelative:
		return "relative"
	case PosIncremental:
		return "incremental"
	case PosUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ModeRegistry maps a table name to its position mode. Each format fills
// one in ahead of decoding.
type ModeRegistry map[string]PositionMode

// Mode returns the mode registered for name, PosUnknown if none.
func (r ModeRegistry) Mode(name string) PositionMode {
	if m, ok := r[name]; ok {
		return m
	}
	return PosUnknown
}

// Normalize maps raw table positions to stream offsets using the origin of
// zone. It is the only place positions change coordinates.
func Normalize(raw []int64, mode PositionMode, zone *Zone) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if mode == PosUnknown {
		// 먼저 나오는 위치가 영역 시작보다 작으면 상대 위치로 본다
		if raw[0] < zone.Begin {
			mode = PosRelative
		} else {
			mode = PosAbsolute
		}
	}

	out := make([]int64, len(raw))
	switch mode {
	case PosAbsolute:
		copy(out, raw)
	case PosRelative:
		for i, r := range raw {
			out[i] = zone.Begin + r
		}
	case PosIncremental:
		pos := zone.Begin
		for i, r := range raw {
			out[i] = pos
			pos += r
		}
	default:
		return nil, fmt.Errorf("plc: unsupported position mode %v", mode)
	}
	return out, nil
}
