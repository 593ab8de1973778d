// Package parser defines the contract every document format implements and
// drives a format through its decode phases.
package parser

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/roboco-io/mwaw2md/internal/container"
	"github.com/roboco-io/mwaw2md/internal/decode"
	"github.com/roboco-io/mwaw2md/internal/entry"
	"github.com/roboco-io/mwaw2md/internal/sink"
)

// FormatParser decodes one document kind. The methods are called once each,
// in order, by Session.Run.
type FormatParser interface {
	// Format identifies the document kind.
	Format() Format

	// CheckHeader validates the magic bytes and version. A file of another
	// kind yields an error wrapping ErrBadMagic.
	CheckHeader(f *container.File) error

	// CreateZones builds the entry index and locates the text zones.
	CreateZones() error

	// DecodeAttributes runs the entry decoders. Only failures that leave
	// no readable text are returned.
	DecodeAttributes() error

	// Replay sends the main zone, then the other zones, to s.
	Replay(s sink.Sink) error

	// Index returns the entry index built by CreateZones.
	Index() *entry.Index

	// Summary returns the per-entry decode results.
	Summary() decode.Summary
}

// Format represents a document format.
type Format int

const (
	FormatUnknown Format = iota
	FormatMSWrite        // Microsoft Write 3.x
	FormatMacText        // TextEdit / SimpleText
	FormatWorks          // Works word processor, OLE2 container
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatMSWrite:
		return "mswrite"
	case FormatMacText:
		return "mactext"
	case FormatWorks:
		return "works"
	default:
		return "unknown"
	}
}

// ParseFormat is the inverse of String.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "mswrite", "write", "wri":
		return FormatMSWrite
	case "mactext", "teachtext", "simpletext":
		return FormatMacText
	case "works", "wps":
		return FormatWorks
	default:
		return FormatUnknown
	}
}

// DetectFormat detects the document format from the file path.
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wri":
		return FormatMSWrite
	case ".wps":
		return FormatWorks
	default:
		return FormatUnknown
	}
}

var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// DetectFormatFromBytes detects the format by its magic bytes. A classic
// Mac text file has no magic in its data fork, so it is only detected
// through its Finder type.
func DetectFormatFromBytes(data []byte) Format {
	if len(data) >= 2 {
		// Write 3.0 / 3.1 signature (little-endian word)
		switch binary.LittleEndian.Uint16(data) {
		case 0xBE31, 0xBE32:
			return FormatMSWrite
		}
	}
	if bytes.HasPrefix(data, oleMagic) {
		return FormatWorks
	}
	return FormatUnknown
}

// DetectFormatFromFile looks at the magic bytes, then the Finder type,
// then the path extension.
func DetectFormatFromFile(f *container.File) Format {
	if format := DetectFormatFromBytes(f.Data); format != FormatUnknown {
		return format
	}
	switch f.Type {
	case "TEXT", "ttro":
		return FormatMacText
	}
	return DetectFormat(f.Name)
}

// Options contains parser configuration options.
type Options struct {
	DefaultEncoding string // fallback 8-bit code page
	PageTableBreaks bool   // MS Write: emit page breaks from the page table
	ExtractImages   bool   // Whether to extract embedded images
	ImageDir        string // Directory to save extracted images
	Logger          *slog.Logger
}

// DefaultOptions returns default parser options.
func DefaultOptions() Options {
	return Options{
		DefaultEncoding: "",
		PageTableBreaks: false,
		ExtractImages:   false,
		ImageDir:        "",
	}
}
