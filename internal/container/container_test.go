package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func appleDouble(magic uint32, entries map[uint32][]byte) []byte {
	ids := []uint32{1, 2, 9}
	var present []uint32
	for _, id := range ids {
		if _, ok := entries[id]; ok {
			present = append(present, id)
		}
	}
	var b []byte
	b = binary.BigEndian.AppendUint32(b, magic)
	b = binary.BigEndian.AppendUint32(b, 0x00020000)
	b = append(b, make([]byte, 16)...)
	b = binary.BigEndian.AppendUint16(b, uint16(len(present)))
	off := uint32(len(b) + 12*len(present))
	var body []byte
	for _, id := range present {
		b = binary.BigEndian.AppendUint32(b, id)
		b = binary.BigEndian.AppendUint32(b, off+uint32(len(body)))
		b = binary.BigEndian.AppendUint32(b, uint32(len(entries[id])))
		body = append(body, entries[id]...)
	}
	return append(b, body...)
}

func TestParseAppleDouble(t *testing.T) {
	finder := append([]byte("ttxtttxt"), make([]byte, 24)...)
	data := appleDouble(appleDoubleMagic, map[uint32][]byte{2: []byte("RSRC"), 9: finder})

	ad, err := ParseAppleDouble(data)
	if err != nil {
		t.Fatal(err)
	}
	if string(ad.Resource) != "RSRC" {
		t.Errorf("resource = %q", ad.Resource)
	}
	if ad.Type != "ttxt" || ad.Creator != "ttxt" {
		t.Errorf("finder info = %q/%q", ad.Type, ad.Creator)
	}
}

func TestParseAppleDouble_Bad(t *testing.T) {
	if _, err := ParseAppleDouble([]byte("not a header")); !errors.Is(err, ErrNotAppleDouble) {
		t.Errorf("expected ErrNotAppleDouble, got %v", err)
	}

	data := appleDouble(appleDoubleMagic, map[uint32][]byte{2: []byte("RSRC")})
	binary.BigEndian.PutUint32(data[26+8:], 1000) // length past the end
	if _, err := ParseAppleDouble(data); !errors.Is(err, ErrNotAppleDouble) {
		t.Errorf("expected ErrNotAppleDouble for a bad entry, got %v", err)
	}
}

func TestFromBytes_AppleSingle(t *testing.T) {
	data := appleDouble(appleSingleMagic, map[uint32][]byte{1: []byte("hello"), 2: []byte("fork")})
	f, err := FromBytes("doc", data)
	if err != nil {
		t.Fatal(err)
	}
	if string(f.Data) != "hello" || string(f.Resource) != "fork" {
		t.Errorf("forks = %q / %q", f.Data, f.Resource)
	}
	if f.IsOLE() {
		t.Error("AppleSingle input is not OLE")
	}
}

func TestOpen_ResourceLookup(t *testing.T) {
	dir := t.TempDir()

	t.Run("sidecar", func(t *testing.T) {
		path := filepath.Join(dir, "note")
		if err := os.WriteFile(path, []byte("text"), 0644); err != nil {
			t.Fatal(err)
		}
		sidecar := appleDouble(appleDoubleMagic, map[uint32][]byte{2: []byte("SIDE")})
		if err := os.WriteFile(filepath.Join(dir, "._note"), sidecar, 0644); err != nil {
			t.Fatal(err)
		}
		f, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(f.Data) != "text" || string(f.Resource) != "SIDE" {
			t.Errorf("got data %q resource %q", f.Data, f.Resource)
		}
	})

	t.Run("rsrc file", func(t *testing.T) {
		path := filepath.Join(dir, "other")
		_ = os.WriteFile(path, []byte("text"), 0644)
		_ = os.WriteFile(path+".rsrc", []byte("FORK"), 0644)
		f, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		if !f.HasResource() || string(f.Resource) != "FORK" {
			t.Errorf("resource = %q", f.Resource)
		}
	})

	t.Run("none", func(t *testing.T) {
		path := filepath.Join(dir, "plain.wri")
		_ = os.WriteFile(path, []byte("text"), 0644)
		f, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		if f.HasResource() {
			t.Error("unexpected resource fork")
		}
	})

	if _, err := Open(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestRead(t *testing.T) {
	f, err := Read("-", bytes.NewReader([]byte("stdin text")))
	if err != nil {
		t.Fatal(err)
	}
	if string(f.Data) != "stdin text" {
		t.Errorf("data = %q", f.Data)
	}
	if _, err := f.Stream("MN0"); !errors.Is(err, ErrNoStream) {
		t.Errorf("expected ErrNoStream, got %v", err)
	}
}

func TestFromBytes_BadOLE(t *testing.T) {
	data := append(append([]byte{}, oleMagic...), make([]byte, 40)...)
	if _, err := FromBytes("broken.wps", data); err == nil {
		t.Error("expected an error for a truncated compound file")
	}
}

func TestSetStream(t *testing.T) {
	f := &File{Name: "doc.wps"}
	if f.IsOLE() {
		t.Fatal("a bare file is not a compound file")
	}
	f.SetStream("MN0", []byte("MN0\x00"))
	f.SetStream("Dir/Entry", nil)

	if !f.IsOLE() {
		t.Error("SetStream should make the file a compound file")
	}
	if b, err := f.Stream("MN0"); err != nil || string(b) != "MN0\x00" {
		t.Errorf("Stream(MN0) = %q, %v", b, err)
	}
	if got := f.Streams(); len(got) != 2 || got[0] != "Dir/Entry" {
		t.Errorf("Streams = %v", got)
	}
}
