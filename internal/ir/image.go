package ir

import (
	"fmt"
	"os"
	"path/filepath"
)

// ImageBlock represents an image reference in the document.
type ImageBlock struct {
	ID     string `json:"id"`               // internal image ID
	Path   string `json:"path,omitempty"`   // extracted file path
	Alt    string `json:"alt,omitempty"`    // alt text
	Width  int    `json:"width,omitempty"`  // width in points
	Height int    `json:"height,omitempty"` // height in points
	Format string `json:"format,omitempty"` // bmp, wmf, pict or bin
	Data   []byte `json:"-"`                // raw image data (not serialized)
}

// NewImage creates a new image block with the given ID.
func NewImage(id string) *ImageBlock {
	return &ImageBlock{
		ID: id,
	}
}

// SetDimensions sets the width and height of the image.
func (img *ImageBlock) SetDimensions(width, height int) {
	img.Width = width
	img.Height = height
}

// HasData returns true if the image has raw data loaded.
func (img *ImageBlock) HasData() bool {
	return len(img.Data) > 0
}

// FileName returns the name the image is extracted under.
func (img *ImageBlock) FileName() string {
	return img.ID + "." + img.Format
}

// formatFromMIME maps the picture MIME types the parsers produce to a
// file extension.
func formatFromMIME(mime string) string {
	switch mime {
	case "image/bmp":
		return "bmp"
	case "image/wmf":
		return "wmf"
	case "image/pict":
		return "pict"
	default:
		return "bin"
	}
}

// ExtractImages writes every image with data to dir and sets its Path.
func (d *Document) ExtractImages(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("이미지 디렉토리 생성 실패: %w", err)
	}
	n := 0
	for _, img := range d.Images() {
		if !img.HasData() {
			continue
		}
		outPath := filepath.Join(dir, img.FileName())
		if err := os.WriteFile(outPath, img.Data, 0644); err != nil {
			return n, fmt.Errorf("이미지 저장 실패 %s: %w", outPath, err)
		}
		img.Path = outPath
		n++
	}
	return n, nil
}
