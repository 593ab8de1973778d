// Package diag collects the recoverable problems found while decoding one
// document. A Collector belongs to a single decode session and is never
// shared between documents.
package diag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Note is one recorded diagnostic.
type Note struct {
	Code   string // short machine-readable code, e.g. "fdp.skip"
	Zone   string // zone or table name, may be empty
	Offset int64  // stream offset the note refers to, -1 if none
	Msg    string
	Err    error
}

// String formats the note for the entries command.
func (n Note) String() string {
	s := n.Code
	if n.Zone != "" {
		s += " [" + n.Zone + "]"
	}
	if n.Offset >= 0 {
		s += fmt.Sprintf(" @%d", n.Offset)
	}
	if n.Msg != "" {
		s += ": " + n.Msg
	}
	if n.Err != nil {
		s += ": " + n.Err.Error()
	}
	return s
}

// Collector accumulates notes for one decode.
type Collector struct {
	logger *slog.Logger
	notes  []Note
	once   map[string]bool
}

// New creates a collector logging through logger. A nil logger discards
// log output but notes are still recorded.
func New(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Collector{
		logger: logger,
		once:   make(map[string]bool),
	}
}

// Logger returns the logger notes are written to.
func (c *Collector) Logger() *slog.Logger {
	if c == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// Add records a note. The collector may be nil, in which case the note is
// dropped.
func (c *Collector) Add(n Note) {
	if c == nil {
		return
	}
	c.notes = append(c.notes, n)
	c.log(slog.LevelDebug, n)
}

// Errorf records a note carrying err.
func (c *Collector) Errorf(code, zone string, offset int64, err error, format string, args ...any) {
	c.Add(Note{
		Code:   code,
		Zone:   zone,
		Offset: offset,
		Msg:    fmt.Sprintf(format, args...),
		Err:    err,
	})
}

// Notef records a note without an error.
func (c *Collector) Notef(code, zone string, offset int64, format string, args ...any) {
	c.Errorf(code, zone, offset, nil, format, args...)
}

// Once records the note only the first time key is seen in this session.
// It returns true when the note was recorded.
func (c *Collector) Once(key string, n Note) bool {
	if c == nil || c.once[key] {
		return false
	}
	c.once[key] = true
	c.notes = append(c.notes, n)
	c.log(slog.LevelWarn, n)
	return true
}

// Notes returns the recorded notes in order.
func (c *Collector) Notes() []Note {
	if c == nil {
		return nil
	}
	out := make([]Note, len(c.notes))
	copy(out, c.notes)
	return out
}

// Len returns the number of recorded notes.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.notes)
}

// Has reports whether any note wraps target.
func (c *Collector) Has(target error) bool {
	if c == nil {
		return false
	}
	for _, n := range c.notes {
		if n.Err != nil && errors.Is(n.Err, target) {
			return true
		}
	}
	return false
}

// HasCode reports whether a note with the given code was recorded.
func (c *Collector) HasCode(code string) bool {
	if c == nil {
		return false
	}
	for _, n := range c.notes {
		if n.Code == code {
			return true
		}
	}
	return false
}

func (c *Collector) log(level slog.Level, n Note) {
	if !c.logger.Enabled(context.Background(), level) {
		return
	}
	attrs := []slog.Attr{slog.String("code", n.Code)}
	if n.Zone != "" {
		attrs = append(attrs, slog.String("zone", n.Zone))
	}
	if n.Offset >= 0 {
		attrs = append(attrs, slog.Int64("offset", n.Offset))
	}
	if n.Err != nil {
		attrs = append(attrs, slog.Any("err", n.Err))
	}
	c.logger.LogAttrs(context.Background(), level, n.Msg, attrs...)
}
