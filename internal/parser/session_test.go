package parser

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/roboco-io/mwaw2md/internal/container"
	"github.com/roboco-io/mwaw2md/internal/decode"
	"github.com/roboco-io/mwaw2md/internal/diag"
	"github.com/roboco-io/mwaw2md/internal/entry"
	"github.com/roboco-io/mwaw2md/internal/sink"
)

type fakeParser struct {
	failAt State
	err    error
	calls  []string
}

func (p *fakeParser) step(name string, at State) error {
	p.calls = append(p.calls, name)
	if p.failAt == at {
		return p.err
	}
	return nil
}

func (p *fakeParser) Format() Format { return FormatMacText }
func (p *fakeParser) CheckHeader(*container.File) error {
	return p.step("header", StateUnopened)
}
func (p *fakeParser) CreateZones() error { return p.step("zones", StateHeaderChecked) }
func (p *fakeParser) DecodeAttributes() error { return p.step("attrs", StateZonesIndexed) }
func (p *fakeParser) Replay(s sink.Sink) error {
	s.InsertText('x')
	return p.step("replay", StateAttributesDecoded)
}
func (p *fakeParser) Index() *entry.Index { return entry.NewIndex(0) }
func (p *fakeParser) Summary() decode.Summary { return decode.Summary{} }

func TestSession_Done(t *testing.T) {
	p := &fakeParser{failAt: StateFailed}
	var rec sink.Recorder
	s := NewSession(p, diag.New(nil))

	state, err := s.Run(&container.File{}, &rec)
	if err != nil {
		t.Fatal(err)
	}
	if state != StateDone {
		t.Errorf("state = %s", state)
	}
	if diff := cmp.Diff([]string{"header", "zones", "attrs", "replay"}, p.calls); diff != "" {
		t.Errorf("phase order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"start", "text", "end"}, rec.Ops()); diff != "" {
		t.Errorf("sink events mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Run(&container.File{}, &rec); err == nil {
		t.Error("a session must not run twice")
	}
	if rec.Count("end") != 1 {
		t.Error("EndDocument must be sent exactly once")
	}
}

func TestSession_Failures(t *testing.T) {
	tests := []struct {
		name      string
		failAt    State
		err       error
		wantCalls int
		wantNote  bool
	}{
		{"bad magic", StateUnopened, fmt.Errorf("%w: not a write file", ErrBadMagic), 1, false},
		{"index", StateHeaderChecked, entry.ErrMalformedEntry, 2, true},
		{"replay", StateAttributesDecoded, errors.New("main text unreadable"), 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeParser{failAt: tt.failAt, err: tt.err}
			d := diag.New(nil)
			var rec sink.Recorder
			s := NewSession(p, d)

			state, err := s.Run(&container.File{}, &rec)
			if state != StateFailed || s.State() != StateFailed {
				t.Errorf("state = %s", state)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if de.State != tt.failAt || s.FailedIn() != tt.failAt {
				t.Errorf("failed in %s, want %s", de.State, tt.failAt)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("error does not unwrap to the cause: %v", err)
			}
			if len(p.calls) != tt.wantCalls {
				t.Errorf("calls = %v", p.calls)
			}
			if rec.Count("end") != 0 {
				t.Error("EndDocument must not be sent on failure")
			}
			if d.HasCode("parser.failed") != tt.wantNote {
				t.Errorf("parser.failed note = %v, want %v", d.HasCode("parser.failed"), tt.wantNote)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if StateAttributesDecoded.String() != "attributes-decoded" || State(99).String() != "state(99)" {
		t.Error("unexpected state names")
	}
}
