package parser

import (
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/container"
	"github.com/roboco-io/mwaw2md/internal/diag"
	"github.com/roboco-io/mwaw2md/internal/sink"
)

// State is a decode phase.
type State int

const (
	StateUnopened State = iota
	StateHeaderChecked
	StateZonesIndexed
	StateAttributesDecoded
	StateReplayed
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateHeaderChecked:
		return "header-checked"
	case StateZonesIndexed:
		return "zones-indexed"
	case StateAttributesDecoded:
		return "attributes-decoded"
	case StateReplayed:
		return "replayed"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session runs one FormatParser over one file.
type Session struct {
	parser FormatParser
	diag   *diag.Collector
	state  State
	failed State
}

// NewSession creates a session for p. d receives the phase notes and may
// be nil.
func NewSession(p FormatParser, d *diag.Collector) *Session {
	return &Session{parser: p, diag: d}
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// FailedIn returns the phase that failed. It is only meaningful after Run
// returned an error.
func (s *Session) FailedIn() State {
	return s.failed
}

// Run takes the parser from Unopened to Done. StartDocument is sent before
// the first zone is replayed and EndDocument once the replay completed.
// Any failure leaves the session in StateFailed and returns a
// *DecodeError.
func (s *Session) Run(f *container.File, out sink.Sink) (State, error) {
	if s.state != StateUnopened {
		return s.state, fmt.Errorf("parser: session already run (state %s)", s.state)
	}

	steps := []struct {
		next State
		run  func() error
	}{
		{StateHeaderChecked, func() error { return s.parser.CheckHeader(f) }},
		{StateZonesIndexed, s.parser.CreateZones},
		{StateAttributesDecoded, s.parser.DecodeAttributes},
		{StateReplayed, func() error {
			out.StartDocument()
			return s.parser.Replay(out)
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return s.fail(err)
		}
		s.state = step.next
		s.diag.Logger().Debug("decode phase", "format", s.parser.Format().String(), "state", s.state.String())
	}

	out.EndDocument()
	s.state = StateDone
	return s.state, nil
}

func (s *Session) fail(err error) (State, error) {
	s.failed = s.state
	s.state = StateFailed
	if !IsBadMagic(err) {
		s.diag.Errorf("parser.failed", "", -1, err, "%s failed after %s", s.parser.Format(), s.failed)
	}
	return s.state, &DecodeError{Format: s.parser.Format(), State: s.failed, Err: err}
}
