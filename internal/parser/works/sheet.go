package works

import (
	"fmt"

	"github.com/roboco-io/mwaw2md/internal/binio"
	"github.com/roboco-io/mwaw2md/internal/decode"
	"github.com/roboco-io/mwaw2md/internal/entry"
	"github.com/roboco-io/mwaw2md/internal/sink"
	"github.com/roboco-io/mwaw2md/internal/textenc"
)

const (
	cellRecordSize = 32
	cellTextSize   = 27
)

// Sheet is an embedded spreadsheet range shown as a table.
type Sheet struct {
	ID     int
	Rows   int
	Cols   int
	Widths []float64
	Cells  map[[2]int]string
}

// readSheet reads rows, cols, the column widths and the cell table.
func readSheet(v *binio.Cursor, e *entry.Entry, cs textenc.Charset) (*Sheet, error) {
	rows, err := v.Uint16()
	if err != nil {
		return nil, err
	}
	cols, err := v.Uint16()
	if err != nil {
		return nil, err
	}
	if int64(cols)*2 > v.Remaining() {
		return nil, fmt.Errorf("%w: %d column widths", decode.ErrMalformedRecordTable, cols)
	}
	sh := &Sheet{ID: e.ID, Rows: int(rows), Cols: int(cols), Cells: make(map[[2]int]string)}
	for i := 0; i < int(cols); i++ {
		w, err := v.Uint16()
		if err != nil {
			return nil, err
		}
		sh.Widths = append(sh.Widths, float64(w))
	}

	start := v.Tell()
	tbl, err := decode.ReadCountStride(v, 2, 2)
	if err != nil {
		return nil, err
	}
	if tbl.Stride < cellRecordSize {
		return nil, fmt.Errorf("%w: cell stride %d", decode.ErrMalformedRecordTable, tbl.Stride)
	}
	cells := &entry.Entry{Name: e.Name, ID: e.ID, Begin: start, Length: e.End() - start}
	err = decode.Each(v, cells, tbl, func(i int, r *binio.Cursor) error {
		row, err := r.Uint16()
		if err != nil {
			return err
		}
		col, err := r.Uint16()
		if err != nil {
			return err
		}
		if int(row) >= sh.Rows || int(col) >= sh.Cols {
			return fmt.Errorf("cell (%d,%d) outside %dx%d", row, col, sh.Rows, sh.Cols)
		}
		n, err := r.Uint8()
		if err != nil {
			return err
		}
		if n > cellTextSize {
			return fmt.Errorf("cell text of %d bytes", n)
		}
		text, err := r.ReadBytes(int(n))
		if err != nil {
			return err
		}
		sh.Cells[[2]int{int(row), int(col)}] = textenc.String(cs, text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// Emit writes the sheet as a table.
func (sh *Sheet) Emit(s sink.Sink) error {
	s.OpenTable(fmt.Sprintf("sheet%d", sh.ID), sh.Widths)
	for r := 0; r < sh.Rows; r++ {
		for c := 0; c < sh.Cols; c++ {
			s.OpenCell(sink.Cell{Row: r, Col: c, RowSpan: 1, ColSpan: 1})
			for _, ch := range sh.Cells[[2]int{r, c}] {
				s.InsertText(ch)
			}
			s.CloseCell()
		}
	}
	s.CloseTable()
	return nil
}
