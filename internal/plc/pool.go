package plc

// Pool is an append-only sequence of decoded attribute records. Indices are
// stable once assigned.
type Pool[T any] struct {
	items []T
	cache map[int64]int
}

// NewPool creates an empty pool.
func NewPool[T any]() *Pool[T] {
	return &Pool[T]{cache: make(map[int64]int)}
}

// Add appends v and returns its index.
func (p *Pool[T]) Add(v T) int {
	p.items = append(p.items, v)
	return len(p.items) - 1
}

// Get returns the record at i. ok is false when i is outside the pool.
func (p *Pool[T]) Get(i int) (v T, ok bool) {
	if p == nil || i < 0 || i >= len(p.items) {
		return v, false
	}
	return p.items[i], true
}

// Len returns the number of records.
func (p *Pool[T]) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// Items returns a copy of the records.
func (p *Pool[T]) Items() []T {
	if p == nil {
		return nil
	}
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// Intern returns the index of the record stored at stream offset ptr,
// calling decode only the first time ptr is seen. A failed decode is not
// cached.
func (p *Pool[T]) Intern(ptr int64, decode func() (T, error)) (int, error) {
	if i, ok := p.cache[ptr]; ok {
		return i, nil
	}
	v, err := decode()
	if err != nil {
		return Default, err
	}
	i := p.Add(v)
	p.cache[ptr] = i
	return i, nil
}

// SideTable holds format-specific fields for pool records, keyed by the
// pool index of the record they extend.
type SideTable[E any] struct {
	m map[int]E
}

// NewSideTable creates an empty side table.
func NewSideTable[E any]() *SideTable[E] {
	return &SideTable[E]{m: make(map[int]E)}
}

// Set stores e for index i.
func (s *SideTable[E]) Set(i int, e E) {
	s.m[i] = e
}

// Get returns the extra fields of index i.
func (s *SideTable[E]) Get(i int) (e E, ok bool) {
	if s == nil {
		return e, false
	}
	e, ok = s.m[i]
	return e, ok
}

// Len returns the number of indices with extra fields.
func (s *SideTable[E]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}
