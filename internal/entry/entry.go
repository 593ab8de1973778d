// Package entry maps (type-name, id) pairs to validated byte ranges of a
// stream. It is the zone index every format parser builds first.
package entry

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedEntry is returned when an entry fails its bounds check or
// duplicates an existing (name, id) pair.
var ErrMalformedEntry = errors.New("entry: malformed entry")

// Entry is a named, typed byte range inside a stream.
type Entry struct {
	Name   string // type tag, e.g. "FONT", "styl"
	ID     int    // disambiguator between entries of the same name
	Begin  int64
	Length int64
	Label  string // optional resource name

	parsed bool
}

// End returns the offset just past the entry.
func (e *Entry) End() int64 {
	return e.Begin + e.Length
}

// Valid reports whether begin and length are non-negative.
func (e *Entry) Valid() bool {
	return e.Begin >= 0 && e.Length >= 0
}

// Parsed reports whether a decoder consumed the entry.
func (e *Entry) Parsed() bool {
	return e.parsed
}

// MarkParsed flags the entry as consumed.
func (e *Entry) MarkParsed() {
	e.parsed = true
}

// String returns "NAME#id[begin,+length]".
func (e *Entry) String() string {
	return fmt.Sprintf("%s#%d[%d,+%d]", e.Name, e.ID, e.Begin, e.Length)
}

type key struct {
	name string
	id   int
}

// Index is a multi-map from type name to entries. Every entry it holds was
// checked against the stream length given to NewIndex.
type Index struct {
	limit  int64
	byName map[string][]*Entry
	byKey  map[key]*Entry
	order  []*Entry
}

// NewIndex creates an empty index for a stream of streamLength bytes.
func NewIndex(streamLength int64) *Index {
	return &Index{
		limit:  streamLength,
		byName: make(map[string][]*Entry),
		byKey:  make(map[key]*Entry),
	}
}

// Limit returns the stream length entries are validated against.
func (x *Index) Limit() int64 {
	return x.limit
}

// Insert validates e and adds it to the index. On failure the index is not
// modified and the error wraps ErrMalformedEntry.
func (x *Index) Insert(e Entry) (*Entry, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: %s has negative range", ErrMalformedEntry, e.String())
	}
	if e.Begin > x.limit || e.Length > x.limit-e.Begin {
		return nil, fmt.Errorf("%w: %s exceeds stream length %d", ErrMalformedEntry, e.String(), x.limit)
	}
	k := key{e.Name, e.ID}
	if _, dup := x.byKey[k]; dup {
		return nil, fmt.Errorf("%w: duplicate %s#%d", ErrMalformedEntry, e.Name, e.ID)
	}

	stored := e
	stored.parsed = false
	p := &stored
	x.byKey[k] = p
	x.byName[e.Name] = append(x.byName[e.Name], p)
	x.order = append(x.order, p)
	return p, nil
}

// FindAll returns the entries registered under name in insertion order. An
// unknown name yields an empty slice.
func (x *Index) FindAll(name string) []*Entry {
	list := x.byName[name]
	out := make([]*Entry, len(list))
	copy(out, list)
	return out
}

// Find returns the entry with the given name and id.
func (x *Index) Find(name string, id int) (*Entry, bool) {
	e, ok := x.byKey[key{name, id}]
	return e, ok
}

// MarkParsed flags e as consumed. Calling it again has no effect.
func (x *Index) MarkParsed(e *Entry) {
	if e != nil {
		e.MarkParsed()
	}
}

// Unparsed returns the entries no decoder consumed, in insertion order.
func (x *Index) Unparsed() []*Entry {
	var out []*Entry
	for _, e := range x.order {
		if !e.parsed {
			out = append(out, e)
		}
	}
	return out
}

// All returns every entry in insertion order.
func (x *Index) All() []*Entry {
	out := make([]*Entry, len(x.order))
	copy(out, x.order)
	return out
}

// Names returns the distinct entry names, sorted.
func (x *Index) Names() []string {
	names := make([]string, 0, len(x.byName))
	for name := range x.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (x *Index) Len() int {
	return len(x.order)
}
