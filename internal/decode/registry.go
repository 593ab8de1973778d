// Package decode dispatches index entries to per-type decoders and reads
// fixed-stride record tables.
package decode

import (
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/diag"
	"github.com/roboco-io/mwaw2md/internal/entry"
)

// Result is the outcome of decoding one entry.
type Result int

const (
	// Ok means the entry was decoded and its pools updated.
	Ok Result = iota
	// Skipped means the entry is recognized but intentionally not translated.
	Skipped
	// Malformed means the entry contradicted its own structure. Only this
	// entry is abandoned.
	Malformed
	// Unknown means no decoder is registered for the entry name.
	Unknown
)

// String returns the lower-case name of the result.
func (r Result) String() string {
	switch r {
	case Ok:
		return "ok"
	case Skipped:
		return "skipped"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Func decodes one entry. v is a view bounded to the entry and positioned
// at its first byte.
type Func func(v *binio.Cursor, e *entry.Entry) (Result, error)

// Registry maps entry names to decoders.
type Registry struct {
	funcs map[string]Func
	order []string
	diag  *diag.Collector
}

// NewRegistry creates an empty registry reporting to d.
func NewRegistry(d *diag.Collector) *Registry {
	return &Registry{
		funcs: make(map[string]Func),
		diag:  d,
	}
}

// Register installs fn for name. Names are decoded in registration order
// by DecodeAll, so a decoder may rely on pools filled by earlier names.
func (r *Registry) Register(name string, fn Func) {
	if _, ok := r.funcs[name]; !ok {
		r.order = append(r.order, name)
	}
	r.funcs[name] = fn
}

// Skip registers name as known but not translated.
func (r *Registry) Skip(names ...string) {
	for _, name := range names {
		r.Register(name, func(*binio.Cursor, *entry.Entry) (Result, error) {
			return Skipped, nil
		})
	}
}

// Known reports whether a decoder is registered for name.
func (r *Registry) Known(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Decode runs the decoder for e against c. The position of c is restored
// before returning. Ok and Skipped mark the entry parsed. Any decoder
// error is turned into Malformed and recorded; it never aborts the caller.
func (r *Registry) Decode(c *binio.Cursor, e *entry.Entry) Result {
	fn, ok := r.funcs[e.Name]
	if !ok {
		return Unknown
	}
	defer c.Keep()()

	v, err := c.View(e.Begin, e.Length)
	if err != nil {
		r.diag.Errorf("decode.malformed", e.Name, e.Begin, err, "entry %s outside stream", e)
		return Malformed
	}

	res, err := fn(v, e)
	if err != nil || res == Malformed {
		if err == nil {
			err = fmt.Errorf("decoder reported malformed entry")
		}
		r.diag.Errorf("decode.malformed", e.Name, e.Begin, err, "entry %s dropped", e)
		return Malformed
	}
	e.MarkParsed()
	return res
}

// Outcome is the decode result of a single entry.
type Outcome struct {
	Entry  *entry.Entry
	Result Result
}

// Summary reports what DecodeAll did.
type Summary struct {
	Ok        int
	Skipped   int
	Malformed int
	Unknown   int
	Outcomes  []Outcome
}

// DecodeAll decodes every indexed entry with a registered name. Names are
// visited in registration order, entries of one name in index order.
// Entries already parsed are not decoded again and do not appear in the
// summary. Entries with unknown names are counted and left unparsed,
// except those the parser already consumed itself.
func (r *Registry) DecodeAll(c *binio.Cursor, x *entry.Index) Summary {
	var s Summary
	for _, name := range r.order {
		for _, e := range x.FindAll(name) {
			if e.Parsed() {
				continue
			}
			res := r.Decode(c, e)
			s.add(e, res)
		}
	}
	for _, e := range x.All() {
		if !r.Known(e.Name) && !e.Parsed() {
			s.add(e, Unknown)
		}
	}
	return s
}

func (s *Summary) add(e *entry.Entry, res Result) {
	switch res {
	case Ok:
		s.Ok++
	case Skipped:
		s.Skipped++
	case Malformed:
		s.Malformed++
	default:
		s.Unknown++
	}
	s.Outcomes = append(s.Outcomes, Outcome{Entry: e, Result: res})
}
