package spatial

import (
	"image"
	"testing"
)

func TestChangeLogKeepsFirstWriteOrder(t *testing.T) {
	l := NewChangeLog(10)
	l.Record(1, 1, 0, 2)
	l.Record(2, 2, 0, 3)
	l.Record(1, 1, 2, 4)
	if l.Len() != 2 {
		t.Fatalf("expected 2 pending changes, got %d", l.Len())
	}
	c, ok := l.Get(1, 1)
	if !ok || c.Before != 0 || c.After != 4 {
		t.Fatalf("expected merged change 0->4, got %+v", c)
	}

	var got []Change
	n := l.Drain(-1, func(c Change) { got = append(got, c) })
	if n != 2 || got[0].X != 1 || got[1].X != 2 {
		t.Fatalf("unexpected drain order %+v", got)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty log after drain")
	}
}

func TestChangeLogDropsNoOps(t *testing.T) {
	l := NewChangeLog(4)
	l.Record(0, 0, 1, 1)
	if l.Len() != 0 {
		t.Fatalf("no-op write should not be logged")
	}
	l.Record(3, 2, 0, 1)
	l.Record(3, 2, 1, 0)
	if l.Len() != 0 {
		t.Fatalf("write reverted to its original class should be dropped")
	}
	if _, ok := l.Get(3, 2); ok {
		t.Fatalf("dropped change still visible")
	}
}

func TestChangeLogDrainLimit(t *testing.T) {
	l := NewChangeLog(100)
	for i := 0; i < 10; i++ {
		l.Record(i, 0, 0, 1)
	}
	var xs []int
	if n := l.Drain(3, func(c Change) { xs = append(xs, c.X) }); n != 3 {
		t.Fatalf("expected 3 drained, got %d", n)
	}
	if len(xs) != 3 || xs[0] != 0 || xs[2] != 2 {
		t.Fatalf("unexpected drained cells %v", xs)
	}
	if n := l.Drain(0, func(Change) {}); n != 0 {
		t.Fatalf("zero limit should drain nothing, got %d", n)
	}
	if l.Len() != 7 {
		t.Fatalf("expected 7 remaining, got %d", l.Len())
	}
}

func TestChangeLogTakeIn(t *testing.T) {
	l := NewChangeLog(16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			l.Record(x, y, 0, 1)
		}
	}
	got := l.TakeIn(image.Rect(4, 4, 6, 7))
	if len(got) != 6 {
		t.Fatalf("expected 6 changes in rect, got %d", len(got))
	}
	for _, c := range got {
		if c.X < 4 || c.X >= 6 || c.Y < 4 || c.Y >= 7 {
			t.Fatalf("change %+v outside rect", c)
		}
	}
	if l.Len() != 256-6 {
		t.Fatalf("expected %d remaining, got %d", 256-6, l.Len())
	}

	l.Clear()
	l.Record(9, 9, 0, 2)
	got = l.TakeIn(image.Rect(0, 0, 16, 16))
	if len(got) != 1 || got[0].X != 9 {
		t.Fatalf("expected sparse scan to find the single change, got %+v", got)
	}
	if got := l.TakeIn(image.Rect(0, 0, 16, 16)); got != nil {
		t.Fatalf("expected nothing left, got %+v", got)
	}
}

func TestChangeLogCompactsAfterManyDrains(t *testing.T) {
	l := NewChangeLog(1000)
	for i := 0; i < 500; i++ {
		l.Record(i, 0, 0, 1)
	}
	l.Drain(400, func(Change) {})
	l.Record(0, 1, 0, 2)
	var last Change
	l.Drain(-1, func(c Change) { last = c })
	if last.Y != 1 {
		t.Fatalf("expected newest change to drain last, got %+v", last)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty log")
	}
}

func TestChangeLogEachLeavesEntries(t *testing.T) {
	l := NewChangeLog(8)
	l.Record(5, 0, 0, 1)
	l.Record(1, 3, 0, 2)
	l.Record(2, 2, 0, 3)
	l.Drain(1, func(Change) {})

	var xs []int
	l.Each(func(c Change) { xs = append(xs, c.X) })
	if len(xs) != 2 || xs[0] != 1 || xs[1] != 2 {
		t.Fatalf("unexpected visit order %v", xs)
	}
	if l.Len() != 2 {
		t.Fatalf("Each should not remove entries, %d left", l.Len())
	}
}
