// Package dispatch picks the format parser for an input file, runs it and
// reports what happened to every indexed entry.
package dispatch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roboco-io/mwaw2md/internal/container"
	"github.com/roboco-io/mwaw2md/internal/decode"
	"github.com/roboco-io/mwaw2md/internal/diag"
	"github.com/roboco-io/mwaw2md/internal/entry"
	"github.com/roboco-io/mwaw2md/internal/parser"
	"github.com/roboco-io/mwaw2md/internal/parser/mactext"
	"github.com/roboco-io/mwaw2md/internal/parser/mswrite"
	"github.com/roboco-io/mwaw2md/internal/parser/works"
	"github.com/roboco-io/mwaw2md/internal/sink"
)

// ErrUnsupported is returned when no format accepts the input. It wraps
// parser.ErrBadMagic.
var ErrUnsupported = fmt.Errorf("지원하지 않는 파일 형식입니다: %w", parser.ErrBadMagic)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type factory func(parser.Options, *diag.Collector) parser.FormatParser

// formats is the fallthrough order when detection gives no answer. The Mac
// text parser comes last because it accepts any file carrying a TEXT type.
var formats = []struct {
	format parser.Format
	new    factory
}{
	{parser.FormatMSWrite, func(o parser.Options, d *diag.Collector) parser.FormatParser { return mswrite.New(o, d) }},
	{parser.FormatWorks, func(o parser.Options, d *diag.Collector) parser.FormatParser { return works.New(o, d) }},
	{parser.FormatMacText, func(o parser.Options, d *diag.Collector) parser.FormatParser { return mactext.New(o, d) }},
}

// Formats returns the supported formats in fallthrough order.
func Formats() []parser.Format {
	out := make([]parser.Format, len(formats))
	for i, f := range formats {
		out[i] = f.format
	}
	return out
}

// EntryResult is the outcome for one indexed entry.
type EntryResult struct {
	Name   string `json:"name"`
	ID     int    `json:"id"`
	Begin  int64  `json:"begin"`
	Length int64  `json:"length"`
	// Result is a decode.Result name, "consumed" for entries the parser
	// read itself, or "unread".
	Result string `json:"result"`
}

// Report describes one decode.
type Report struct {
	Format   parser.Format
	State    parser.State
	Notes    []diag.Note
	Entries  []EntryResult
	Unparsed []string
}

// Decode tries the detected format first, then every other format in
// order. A format that rejects the header falls through to the next one;
// any other failure ends the decode. s only receives events from the
// format that accepted the header.
func Decode(f *container.File, s sink.Sink, opts parser.Options) (*Report, error) {
	if opts.Logger == nil {
		opts.Logger = discard
	}
	for _, format := range candidates(parser.DetectFormatFromFile(f)) {
		rep, err := DecodeAs(f, format, s, opts)
		if err != nil && rejected(err) {
			opts.Logger.Debug("format rejected", "format", format.String(), "error", err)
			continue
		}
		return rep, err
	}
	return &Report{Format: parser.FormatUnknown, State: parser.StateFailed}, fmt.Errorf("%s: %w", f.Name, ErrUnsupported)
}

// DecodeAs runs a single format without fallthrough.
func DecodeAs(f *container.File, format parser.Format, s sink.Sink, opts parser.Options) (*Report, error) {
	if opts.Logger == nil {
		opts.Logger = discard
	}
	newParser := lookup(format)
	if newParser == nil {
		return nil, fmt.Errorf("알 수 없는 형식: %s", format)
	}

	d := diag.New(opts.Logger)
	p := newParser(opts, d)
	state, err := parser.NewSession(p, d).Run(f, s)
	if err == nil {
		for _, e := range p.Index().Unparsed() {
			d.Notef("entry.unparsed", e.Name, e.Begin, "entry %s was not consumed", e)
		}
	}
	return newReport(p, state, d), err
}

func newReport(p parser.FormatParser, state parser.State, d *diag.Collector) *Report {
	rep := &Report{
		Format: p.Format(),
		State:  state,
		Notes:  d.Notes(),
	}
	x := p.Index()
	if x == nil {
		return rep
	}

	results := make(map[*entry.Entry]decode.Result)
	for _, o := range p.Summary().Outcomes {
		results[o.Entry] = o.Result
	}
	for _, e := range x.All() {
		r := EntryResult{Name: e.Name, ID: e.ID, Begin: e.Begin, Length: e.Length}
		res, ok := results[e]
		switch {
		case ok:
			r.Result = res.String()
		case e.Parsed():
			r.Result = "consumed"
		default:
			r.Result = "unread"
		}
		rep.Entries = append(rep.Entries, r)
	}
	for _, e := range x.Unparsed() {
		rep.Unparsed = append(rep.Unparsed, e.String())
	}
	return rep
}

// rejected reports whether err means the header was not this format's.
func rejected(err error) bool {
	var de *parser.DecodeError
	if errors.As(err, &de) {
		return de.State == parser.StateUnopened && parser.IsBadMagic(err)
	}
	return parser.IsBadMagic(err)
}

func candidates(first parser.Format) []parser.Format {
	out := make([]parser.Format, 0, len(formats))
	if lookup(first) != nil {
		out = append(out, first)
	}
	for _, f := range formats {
		if f.format != first {
			out = append(out, f.format)
		}
	}
	return out
}

func lookup(format parser.Format) factory {
	for _, f := range formats {
		if f.format == format {
			return f.new
		}
	}
	return nil
}
