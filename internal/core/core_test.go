package core

import (
	"math"
	"testing"
	"time"
)

func TestFixedStepCapsBacklog(t *testing.T) {
	now := time.Unix(0, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return now }

	if !fs.ShouldStep() {
		t.Fatalf("expected an immediate first tick")
	}
	if fs.ShouldStep() {
		t.Fatalf("no time has passed, expected no tick")
	}

	now = now.Add(10 * time.Second)
	ticks := 0
	for fs.ShouldStep() {
		ticks++
	}
	if ticks != 5 {
		t.Fatalf("expected the backlog to be capped at 1+4 ticks, got %d", ticks)
	}
	if fs.Interval() != 100*time.Millisecond {
		t.Fatalf("unexpected interval %v", fs.Interval())
	}
}

func TestRNGIsDeterministic(t *testing.T) {
	a, b := NewRNG(42), NewRNG(42)
	for i := 0; i < 16; i++ {
		if a.Float64() != b.Float64() || a.IntN(7) != b.IntN(7) {
			t.Fatalf("generators diverged at draw %d", i)
		}
	}
	if NewRNG(1).IntN(0) != 0 {
		t.Fatalf("IntN(0) should return 0")
	}
}

func TestByteGridBounds(t *testing.T) {
	g := NewByteGrid(3, 2)
	g.Set(2, 1, 9)
	g.Set(3, 0, 7)
	if g.At(2, 1) != 9 || g.Cells()[g.Index(2, 1)] != 9 {
		t.Fatalf("expected stored value at (2,1)")
	}
	if g.At(3, 0) != 0 || g.InBounds(3, 0) || g.InBounds(-1, 0) {
		t.Fatalf("out of range access should be rejected")
	}
	g.Clear()
	if g.At(2, 1) != 0 {
		t.Fatalf("expected Clear to zero the grid")
	}
}

func TestNamesSorted(t *testing.T) {
	Register("zz-test", func(map[string]string) Sim { return nil })
	Register("aa-test", func(map[string]string) Sim { return nil })
	defer delete(sims, "zz-test")
	defer delete(sims, "aa-test")
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}

func TestParameterControlNextClamps(t *testing.T) {
	radius := ParameterControl{Key: "brush_radius", Type: ParamTypeInt, Step: 0.4, Bounds: Within(0, 3)}
	if v := radius.Next(2, 1); v != 3 {
		t.Fatalf("expected int step of 1, got %v", v)
	}
	if v := radius.Next(3, 1); v != 3 {
		t.Fatalf("expected upper bound to hold, got %v", v)
	}
	if v := radius.Next(0, -1); v != 0 {
		t.Fatalf("expected lower bound to hold, got %v", v)
	}

	drift := ParameterControl{Key: "gas_drift", Type: ParamTypeFloat, Bounds: AtLeast(0)}
	if v := drift.Next(1, 1); math.Abs(v-1.05) > 1e-9 {
		t.Fatalf("expected default float step, got %v", v)
	}
	if v := drift.Next(0.01, -1); v != 0 {
		t.Fatalf("expected clamp at zero, got %v", v)
	}
	if v := (Range{}).Clamp(-7); v != -7 {
		t.Fatalf("expected unbounded range to pass values through, got %v", v)
	}
}

func TestSnapshotFind(t *testing.T) {
	snap := ParameterSnapshot{Groups: []ParameterGroup{
		{Name: "Physics", Params: []Parameter{{Key: "gravity", Value: "0.10"}}},
		{Name: "Brush", Params: []Parameter{{Key: "brush_radius", Value: "4"}}},
	}}
	p, ok := snap.Find("brush_radius")
	if !ok || p.Value != "4" {
		t.Fatalf("expected brush_radius=4, got %+v ok=%v", p, ok)
	}
	if _, ok := snap.Find("missing"); ok {
		t.Fatalf("expected missing key to be absent")
	}
}
