package ir

// TableBlock represents a table or spreadsheet in the document.
type TableBlock struct {
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Cells   [][]Cell  `json:"cells,omitempty"`
	Widths  []float64 `json:"widths,omitempty"`  // column widths in points
	Caption string    `json:"caption,omitempty"` // table name if any
}

// Cell represents a single cell in a table.
type Cell struct {
	Text    string `json:"text"`
	RowSpan int    `json:"row_span,omitempty"` // number of rows this cell spans
	ColSpan int    `json:"col_span,omitempty"` // number of columns this cell spans
}

// NewTable creates a new table with the specified dimensions.
func NewTable(rows, cols int) *TableBlock {
	cells := make([][]Cell, rows)
	for i := range cells {
		cells[i] = make([]Cell, cols)
		for j := range cells[i] {
			cells[i][j] = Cell{
				RowSpan: 1,
				ColSpan: 1,
			}
		}
	}
	return &TableBlock{
		Rows:  rows,
		Cols:  cols,
		Cells: cells,
	}
}

// SetCell sets the content of a specific cell.
func (t *TableBlock) SetCell(row, col int, text string) {
	if c := t.GetCell(row, col); c != nil {
		c.Text = text
	}
}

// GetCell returns the cell at the specified position.
func (t *TableBlock) GetCell(row, col int) *Cell {
	if row >= 0 && row < t.Rows && col >= 0 && col < t.Cols && t.Cells != nil {
		return &t.Cells[row][col]
	}
	return nil
}
