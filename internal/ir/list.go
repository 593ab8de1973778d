package ir

// ListBlock represents a numbered or bulleted list. Footnotes are kept as
// an ordered list at the document level.
type ListBlock struct {
	Ordered bool       `json:"ordered"` // true = numbered list, false = bullet list
	Items   []ListItem `json:"items"`
	Start   int        `json:"start,omitempty"` // starting number for ordered lists
}

// ListItem represents a single item in a list.
type ListItem struct {
	Text  string `json:"text"`
	Label string `json:"label,omitempty"` // mark shown in the text, if not a number
}

// NewList creates a new list block.
func NewList(ordered bool) *ListBlock {
	return &ListBlock{
		Ordered: ordered,
		Items:   make([]ListItem, 0),
		Start:   1,
	}
}

// NewOrderedList creates a new ordered (numbered) list.
func NewOrderedList() *ListBlock {
	return NewList(true)
}

// AddItem adds an item to the list.
func (l *ListBlock) AddItem(text, label string) {
	l.Items = append(l.Items, ListItem{
		Text:  text,
		Label: label,
	})
}

// IsEmpty returns true if the list has no items.
func (l *ListBlock) IsEmpty() bool {
	return l == nil || len(l.Items) == 0
}
