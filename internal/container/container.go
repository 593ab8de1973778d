// Package container turns an input file into the named byte streams the
// format parsers read: a data fork, an optional classic Mac resource fork,
// and the streams of an OLE2 compound file.
package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattetti/filebuffer"
	"github.com/richardlehane/mscfb"
)

// ErrNoStream is returned when a named stream does not exist.
var ErrNoStream = errors.New("container: no such stream")

var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// File is one input document.
type File struct {
	Name string
	// Data is the data fork, or the raw compound file for OLE2 input.
	Data []byte
	// Resource is the resource fork, nil when the file has none.
	Resource []byte
	// Type and Creator are the Finder codes when known.
	Type    string
	Creator string

	streams map[string][]byte
}

// IsOLE reports whether the data fork is an OLE2 compound file.
func (f *File) IsOLE() bool {
	return f.streams != nil
}

// HasResource reports whether a resource fork was found.
func (f *File) HasResource() bool {
	return len(f.Resource) > 0
}

// Stream returns the OLE2 stream at path, e.g. "MN0" or "Dir/Entry".
func (f *File) Stream(path string) ([]byte, error) {
	b, ok := f.streams[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoStream, path)
	}
	return b, nil
}

// SetStream adds or replaces the stream at path, making f a compound
// file.
func (f *File) SetStream(path string, data []byte) {
	if f.streams == nil {
		f.streams = make(map[string][]byte)
	}
	f.streams[path] = data
}

// Streams returns the OLE2 stream paths, sorted.
func (f *File) Streams() []string {
	names := make([]string, 0, len(f.streams))
	for name := range f.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open reads the file at path together with its resource fork. The fork is
// looked up as the native named fork, then an AppleDouble "._" sidecar,
// then a "<path>.rsrc" file.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("파일을 읽을 수 없습니다: %w", err)
	}
	f, err := FromBytes(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	if err := f.findResource(path); err != nil {
		return nil, err
	}
	return f, nil
}

// Read reads a document from r, e.g. standard input. No resource fork is
// available this way unless the input is AppleSingle.
func Read(name string, r io.Reader) (*File, error) {
	fb, err := filebuffer.NewFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("입력을 읽을 수 없습니다: %w", err)
	}
	return FromBytes(name, fb.Buff.Bytes())
}

// FromBytes wraps data. An OLE2 compound file is split into its streams
// and an AppleSingle file into its forks.
func FromBytes(name string, data []byte) (*File, error) {
	f := &File{Name: name, Data: data}
	switch {
	case bytes.HasPrefix(data, oleMagic):
		streams, err := readOLE(data)
		if err != nil {
			return nil, err
		}
		f.streams = streams
	case isAppleSingle(data):
		ad, err := ParseAppleDouble(data)
		if err != nil {
			return nil, err
		}
		f.Data = ad.Data
		f.Resource = ad.Resource
		f.Type, f.Creator = ad.Type, ad.Creator
	}
	return f, nil
}

func readOLE(data []byte) (map[string][]byte, error) {
	doc, err := mscfb.New(filebuffer.New(data))
	if err != nil {
		return nil, fmt.Errorf("OLE2 문서 파싱 실패: %w", err)
	}
	streams := make(map[string][]byte)
	for _, entry := range doc.File {
		if entry.Size <= 0 {
			continue
		}
		buf := make([]byte, entry.Size)
		n, err := entry.ReadAt(buf, 0)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("OLE2 스트림 %s 읽기 실패: %w", entry.Name, err)
		}
		path := strings.Join(append(append([]string{}, entry.Path...), entry.Name), "/")
		streams[path] = buf[:n]
	}
	return streams, nil
}

func (f *File) findResource(path string) error {
	if b, err := os.ReadFile(filepath.Join(path, "..namedfork", "rsrc")); err == nil && len(b) > 0 {
		f.Resource = b
		return nil
	}

	sidecar := filepath.Join(filepath.Dir(path), "._"+filepath.Base(path))
	if b, err := os.ReadFile(sidecar); err == nil {
		ad, err := ParseAppleDouble(b)
		if err != nil {
			return fmt.Errorf("AppleDouble 파일 %s: %w", sidecar, err)
		}
		f.Resource = ad.Resource
		if ad.Type != "" {
			f.Type, f.Creator = ad.Type, ad.Creator
		}
		return nil
	}

	if b, err := os.ReadFile(path + ".rsrc"); err == nil {
		f.Resource = b
	}
	return nil
}
