// Package textenc maps the 8-bit character codes of legacy documents to
// Unicode. Every document builds its own Table, since the code page of a
// character depends on the font active when it was typed.
package textenc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Charset decodes one byte to a rune. *charmap.Charmap satisfies it.
type Charset interface {
	DecodeByte(b byte) rune
}

// Map is a complete 256-entry code page. Zero entries are undefined.
type Map [256]rune

// DecodeByte returns the rune for b, utf8.RuneError if undefined.
func (m *Map) DecodeByte(b byte) rune {
	if r := m[b]; r != 0 {
		return r
	}
	return utf8.RuneError
}

var (
	// Symbol is the Symbol font code page.
	Symbol Charset = &symbolMap
	// Dingbats is the Zapf Dingbats code page.
	Dingbats Charset = &dingbatsMap
)

// Classic Mac OS font family numbers with a non-Roman code page.
const (
	MacFamilyZapfDingbats = 13
	MacFamilySymbol       = 23
)

// ByName returns the code page for a configuration name.
func ByName(name string) (Charset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "macintosh", "macroman", "mac":
		return charmap.Macintosh, nil
	case "windows-1252", "cp1252", "ansi":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("textenc: unknown encoding %q", name)
	}
}

// ForFontName returns the code page implied by a font name, if the font
// is not a text font.
func ForFontName(name string) (Charset, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "symbol":
		return Symbol, true
	case strings.Contains(n, "dingbats"):
		return Dingbats, true
	}
	return nil, false
}

// ForMacFamily returns the code page of a Mac font family number.
func ForMacFamily(id int) (Charset, bool) {
	switch id {
	case MacFamilySymbol:
		return Symbol, true
	case MacFamilyZapfDingbats:
		return Dingbats, true
	}
	return nil, false
}

// Table holds the per-font code pages of one document.
type Table struct {
	def   Charset
	fonts map[int]Charset
}

// NewTable creates a table using def for every font without an entry. A
// nil def means MacRoman.
func NewTable(def Charset) *Table {
	if def == nil {
		def = charmap.Macintosh
	}
	return &Table{def: def, fonts: make(map[int]Charset)}
}

// Set assigns cs to font id.
func (t *Table) Set(fontID int, cs Charset) {
	t.fonts[fontID] = cs
}

// SetByName assigns the code page implied by name to font id and reports
// whether it did.
func (t *Table) SetByName(fontID int, name string) bool {
	cs, ok := ForFontName(name)
	if ok {
		t.fonts[fontID] = cs
	}
	return ok
}

// Default returns the fallback code page.
func (t *Table) Default() Charset {
	return t.def
}

// Rune decodes b as typed in font fontID.
func (t *Table) Rune(fontID int, b byte) rune {
	if cs, ok := t.fonts[fontID]; ok {
		if r := cs.DecodeByte(b); r != utf8.RuneError {
			return r
		}
	}
	return t.def.DecodeByte(b)
}

// String decodes b with cs. Names in font and resource tables are short,
// so no transform.Reader is involved.
func String(cs Charset, b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(cs.DecodeByte(c))
	}
	return sb.String()
}
