package mswrite

import (
	"encoding/binary"
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/sink"
	"github.com/roboco-io/mwaw2md/internal/units"
)

// PictureHeader는 그림 문단의 40바이트 헤더
type PictureHeader struct {
	MM        uint16 // 0xE3: 비트맵, 그 외: 메타파일 매핑 모드
	XExt      uint16
	YExt      uint16
	DxaOffset uint16
	DxaSize   uint16
	DyaSize   uint16
	Bitmap    [14]byte // BITMAP 구조체 (비트맵일 때만)
	CbHeader  uint16
	CbSize    uint32
	ScaleX    uint16 // 1/1000 단위
	ScaleY    uint16
}

func readPictureHeader(c *binio.Cursor) (*PictureHeader, error) {
	raw, err := c.ReadBytes(pictureHeaderSize)
	if err != nil {
		return nil, err
	}
	le := binary.LittleEndian
	h := &PictureHeader{
		MM:        le.Uint16(raw[0:]),
		XExt:      le.Uint16(raw[2:]),
		YExt:      le.Uint16(raw[4:]),
		DxaOffset: le.Uint16(raw[8:]),
		DxaSize:   le.Uint16(raw[10:]),
		DyaSize:   le.Uint16(raw[12:]),
		CbHeader:  le.Uint16(raw[30:]),
		CbSize:    le.Uint32(raw[32:]),
		ScaleX:    le.Uint16(raw[36:]),
		ScaleY:    le.Uint16(raw[38:]),
	}
	copy(h.Bitmap[:], raw[16:30])
	if h.CbHeader < pictureHeaderSize {
		h.CbHeader = pictureHeaderSize
	}
	return h, nil
}

// Size returns the bytes the picture occupies in the text.
func (h *PictureHeader) Size() int64 {
	return int64(h.CbHeader) + int64(h.CbSize)
}

func scaled(v, scale uint16) int {
	if scale == 0 {
		return int(v)
	}
	return int(v) * int(scale) / 1000
}

// Placement returns the position and size in points.
func (h *PictureHeader) Placement() sink.Placement {
	return sink.Placement{
		Anchor: sink.AnchorParagraph,
		X:      units.TwipsToPoints(int(h.DxaOffset)),
		Width:  units.TwipsToPoints(scaled(h.DxaSize, h.ScaleX)),
		Height: units.TwipsToPoints(scaled(h.DyaSize, h.ScaleY)),
	}
}

// readPicture reads the picture starting at the cursor position. The data
// is wrapped so that it can be written out as a standalone file.
func readPicture(c *binio.Cursor, limit int64) (sink.Picture, int64, error) {
	start := c.Tell()
	h, err := readPictureHeader(c)
	if err != nil {
		return sink.Picture{}, 0, err
	}
	if h.Size() > limit {
		return sink.Picture{}, 0, fmt.Errorf("mswrite: picture of %d bytes in a %d byte paragraph", h.Size(), limit)
	}
	if err := c.Seek(start + int64(h.CbHeader)); err != nil {
		return sink.Picture{}, 0, err
	}
	data, err := c.ReadBytes(int(h.CbSize))
	if err != nil {
		return sink.Picture{}, 0, err
	}

	pic := sink.Picture{Placement: h.Placement()}
	if h.MM == mmBitmap {
		pic.Data, pic.MIME = bitmapFile(h.Bitmap[:], data)
	} else {
		pic.Data, pic.MIME = placeableWMF(h, data), "image/wmf"
	}
	return pic, h.Size(), nil
}

// bitmapFile turns a monochrome device-dependent bitmap into a BMP file.
// Other depths are returned as they are.
func bitmapFile(bm, bits []byte) ([]byte, string) {
	le := binary.LittleEndian
	width := int(le.Uint16(bm[2:]))
	height := int(le.Uint16(bm[4:]))
	stride := int(le.Uint16(bm[6:]))
	planes, depth := bm[8], bm[9]
	if planes != 1 || depth != 1 || width == 0 || height == 0 || stride*height > len(bits) {
		return bits, "application/octet-stream"
	}

	// BMP 행은 4바이트 정렬, 아래에서 위로
	row := (width + 31) / 32 * 4
	const headerSize = 14 + 40 + 8
	out := make([]byte, headerSize+row*height)
	out[0], out[1] = 'B', 'M'
	le.PutUint32(out[2:], uint32(len(out)))
	le.PutUint32(out[10:], headerSize)
	le.PutUint32(out[14:], 40)
	le.PutUint32(out[18:], uint32(width))
	le.PutUint32(out[22:], uint32(height))
	le.PutUint16(out[26:], 1)
	le.PutUint16(out[28:], 1)
	le.PutUint32(out[34:], uint32(row*height))
	// 팔레트: 0 = 검정, 1 = 흰색
	copy(out[58:], []byte{0xFF, 0xFF, 0xFF, 0})
	for y := 0; y < height; y++ {
		src := bits[y*stride : y*stride+min(stride, row)]
		dst := out[headerSize+(height-1-y)*row:]
		copy(dst[:row], src)
	}
	return out, "image/bmp"
}

// placeableWMF prefixes the metafile with the Aldus placeable header.
func placeableWMF(h *PictureHeader, data []byte) []byte {
	le := binary.LittleEndian
	hdr := make([]byte, 22)
	le.PutUint32(hdr[0:], 0x9AC6CDD7)
	le.PutUint16(hdr[10:], h.DxaSize)
	le.PutUint16(hdr[12:], h.DyaSize)
	le.PutUint16(hdr[14:], 1440)
	var sum uint16
	for i := 0; i < 20; i += 2 {
		sum ^= le.Uint16(hdr[i:])
	}
	le.PutUint16(hdr[20:], sum)
	return append(hdr, data...)
}
