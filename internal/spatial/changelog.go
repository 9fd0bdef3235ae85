package spatial

import "image"

// Change is the net family transition of one cell since the last time it was
// handed to the tree.
type Change struct {
	X, Y   int
	Before Class
	After  Class
}

type logEntry struct {
	Change
	live bool
}

// ChangeLog records pending per-cell family transitions in first-write order.
// Writing a cell that already has an entry updates After in place; an entry
// whose net effect becomes a no-op is dropped.
type ChangeLog struct {
	width   int
	entries []logEntry
	head    int
	pos     map[int]int
	live    int
}

// NewChangeLog creates an empty log for a grid of the given width.
func NewChangeLog(width int) *ChangeLog {
	if width <= 0 {
		width = 1
	}
	return &ChangeLog{width: width, pos: make(map[int]int)}
}

// Record notes that cell (x, y) changed from before to after.
func (l *ChangeLog) Record(x, y int, before, after Class) {
	key := y*l.width + x
	if p, ok := l.pos[key]; ok {
		e := &l.entries[p]
		e.After = after
		if e.Before == e.After {
			l.drop(key, p)
		}
		return
	}
	if before == after {
		return
	}
	l.entries = append(l.entries, logEntry{Change: Change{X: x, Y: y, Before: before, After: after}, live: true})
	l.pos[key] = len(l.entries) - 1
	l.live++
}

// Len reports the number of pending changes.
func (l *ChangeLog) Len() int { return l.live }

// Get returns the pending change for (x, y), if any.
func (l *ChangeLog) Get(x, y int) (Change, bool) {
	p, ok := l.pos[y*l.width+x]
	if !ok {
		return Change{}, false
	}
	return l.entries[p].Change, true
}

// Take removes and returns the pending change for (x, y), if any.
func (l *ChangeLog) Take(x, y int) (Change, bool) {
	key := y*l.width + x
	p, ok := l.pos[key]
	if !ok {
		return Change{}, false
	}
	c := l.entries[p].Change
	l.drop(key, p)
	return c, true
}

// Each calls fn for every pending change in log order without removing it.
func (l *ChangeLog) Each(fn func(Change)) {
	for _, e := range l.entries[l.head:] {
		if e.live {
			fn(e.Change)
		}
	}
}

// Drain removes up to limit changes in log order and passes each to fn. A
// negative limit drains everything. It returns the number of changes drained.
func (l *ChangeLog) Drain(limit int, fn func(Change)) int {
	n := 0
	for l.live > 0 && (limit < 0 || n < limit) {
		for !l.entries[l.head].live {
			l.head++
		}
		e := l.entries[l.head]
		l.drop(e.Y*l.width+e.X, l.head)
		fn(e.Change)
		n++
	}
	return n
}

// TakeIn removes and returns every pending change inside r. It scans whichever
// is smaller, the log or the rectangle.
func (l *ChangeLog) TakeIn(r image.Rectangle) []Change {
	if l.live == 0 || r.Empty() {
		return nil
	}
	var out []Change
	if l.live < r.Dx()*r.Dy() {
		for i := l.head; i < len(l.entries); i++ {
			e := l.entries[i]
			if e.live && (image.Point{X: e.X, Y: e.Y}).In(r) {
				out = append(out, e.Change)
			}
		}
		for _, c := range out {
			l.Take(c.X, c.Y)
		}
		return out
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if c, ok := l.Take(x, y); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// Clear drops every pending change.
func (l *ChangeLog) Clear() {
	l.entries = l.entries[:0]
	l.head = 0
	l.live = 0
	clear(l.pos)
}

func (l *ChangeLog) drop(key, p int) {
	l.entries[p].live = false
	delete(l.pos, key)
	l.live--
	for l.head < len(l.entries) && !l.entries[l.head].live {
		l.head++
	}
	if l.live == 0 {
		l.entries = l.entries[:0]
		l.head = 0
		return
	}
	if l.head > 64 && l.head*2 > len(l.entries) {
		l.compact()
	}
}

func (l *ChangeLog) compact() {
	n := 0
	for i := l.head; i < len(l.entries); i++ {
		e := l.entries[i]
		if !e.live {
			continue
		}
		l.entries[n] = e
		l.pos[e.Y*l.width+e.X] = n
		n++
	}
	l.entries = l.entries[:n]
	l.head = 0
}
