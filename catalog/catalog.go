/*
Package catalog implements the name index used by the viewer.

Names are stored in fixed-capacity chunks of Capacity entries. Chunks live in
an arena and are linked by index into a circular doubly linked list, so a
cursor stepping off either end of a chunk lands in its neighbour and stepping
off the last chunk lands back in the first. A catalog always holds at least
one chunk; a single chunk links to itself in both directions.
*/
package catalog

import (
	"errors"
	"io"
	"unicode/utf8"
)

const (
	// Capacity is the number of names held by a single chunk
	Capacity = 15

	// MaxNameLen is the longest name stored in bytes, longer names are
	// truncated on a rune boundary
	MaxNameLen = 242

	head = 0
)

var (
	// ErrEmpty is returned by Build when the iterator yields no entries.
	// There is no useful state without at least one entry so callers
	// should treat it as fatal.
	ErrEmpty = errors.New("catalog: no entries")

	// ErrNotRegular may be returned by an Iterator to signal that the
	// next entry is not a plain file. Build treats it the same as io.EOF.
	ErrNotRegular = errors.New("catalog: entry is not a regular file")
)

// IsFatal reports whether err leaves the caller with no catalog to work from.
func IsFatal(err error) bool {
	return errors.Is(err, ErrEmpty)
}

// Iterator yields entry names one at a time. It returns io.EOF or
// ErrNotRegular when there are no more usable entries.
type Iterator interface {
	Next() (string, error)
}

// Direction selects which way Advance moves a cursor.
type Direction int

const (
	// Previous moves towards the head, wrapping to the tail
	Previous Direction = -1
	// Next moves towards the tail, wrapping to the head
	Next Direction = 1
)

type chunk struct {
	prev, next int
	count      int
	names      [Capacity]string
}

// Cursor identifies a single name within a Catalog. The zero value points at
// the first name.
type Cursor struct {
	chunk int
	index int
}

// Chunk returns the arena index of the chunk the cursor is in.
func (c Cursor) Chunk() int {
	return c.chunk
}

// Index returns the slot within the chunk.
func (c Cursor) Index() int {
	return c.index
}

// Catalog is a ring of chunks holding entry names.
type Catalog struct {
	chunks []chunk
	length int
}

func newCatalog() *Catalog {
	return &Catalog{
		chunks: []chunk{{prev: head, next: head}},
	}
}

func truncate(name string) string {
	if len(name) <= MaxNameLen {
		return name
	}
	n := MaxNameLen
	for n > 0 && !utf8.RuneStart(name[n]) {
		n--
	}
	return name[:n]
}

func (c *Catalog) add(name string) {
	tail := c.chunks[head].prev
	if c.chunks[tail].count >= Capacity {
		// Splice the new chunk in between the tail and the head
		n := len(c.chunks)
		c.chunks = append(c.chunks, chunk{prev: tail, next: head})
		c.chunks[tail].next = n
		c.chunks[head].prev = n
		tail = n
	}

	t := &c.chunks[tail]
	t.names[t.count] = truncate(name)
	t.count++
	c.length++
}

// Build drains it into a new Catalog.
func Build(it Iterator) (*Catalog, error) {
	c := newCatalog()
	for {
		name, err := it.Next()
		if err != nil {
			if err == io.EOF || errors.Is(err, ErrNotRegular) {
				break
			}
			return nil, err
		}
		c.add(name)
	}

	if c.length == 0 {
		return nil, ErrEmpty
	}

	return c, nil
}

// Len returns the number of names in the catalog
func (c *Catalog) Len() int {
	return c.length
}

// Chunks returns the number of chunks allocated
func (c *Catalog) Chunks() int {
	return len(c.chunks)
}

// First returns a cursor pointing at the first name.
func (c *Catalog) First() Cursor {
	return Cursor{}
}

// Advance moves cur one step in direction d, wrapping across chunk
// boundaries. Any direction other than Previous or Next returns cur.
func (c *Catalog) Advance(cur Cursor, d Direction) Cursor {
	switch d {
	case Next:
		cur.index++
		if cur.index >= c.chunks[cur.chunk].count {
			cur.chunk = c.chunks[cur.chunk].next
			cur.index = 0
		}
	case Previous:
		cur.index--
		if cur.index < 0 {
			cur.chunk = c.chunks[cur.chunk].prev
			cur.index = c.chunks[cur.chunk].count - 1
		}
	}
	return cur
}

// Next is shorthand for Advance(cur, Next).
func (c *Catalog) Next(cur Cursor) Cursor {
	return c.Advance(cur, Next)
}

// Previous is shorthand for Advance(cur, Previous).
func (c *Catalog) Previous(cur Cursor) Cursor {
	return c.Advance(cur, Previous)
}

// Name returns the name at cur.
func (c *Catalog) Name(cur Cursor) string {
	return c.chunks[cur.chunk].names[cur.index]
}

// Names returns every name in ring order starting from the head.
func (c *Catalog) Names() []string {
	names := make([]string, 0, c.length)
	cur := c.First()
	for i := 0; i < c.length; i++ {
		names = append(names, c.Name(cur))
		cur = c.Next(cur)
	}
	return names
}

// SliceIterator yields names from a slice.
type SliceIterator struct {
	names []string
}

// NewSliceIterator returns an Iterator over names.
func NewSliceIterator(names []string) *SliceIterator {
	return &SliceIterator{names: names}
}

// Next returns the next name or io.EOF.
func (s *SliceIterator) Next() (string, error) {
	if len(s.names) == 0 {
		return "", io.EOF
	}
	name := s.names[0]
	s.names = s.names[1:]
	return name, nil
}
