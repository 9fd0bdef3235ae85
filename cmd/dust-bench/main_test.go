package main

import (
	"testing"

	"dustfall/internal/sims/dust"
)

func TestParseStroke(t *testing.T) {
	st, err := parseStroke("sand:10,4,3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if st.material != "sand" || st.x != 10 || st.y != 4 || st.r != 3 || st.every != 0 {
		t.Fatalf("unexpected stroke %+v", st)
	}
	st, err = parseStroke("water:1,2,0,5")
	if err != nil || st.every != 5 {
		t.Fatalf("expected repeat interval 5, got %+v (%v)", st, err)
	}
	for _, bad := range []string{"sand", "sand:1,2", "sand:1,x,3", "sand:1,2,3,4,5"} {
		if _, err := parseStroke(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestDefaultScriptPaints(t *testing.T) {
	cfg := dust.DefaultConfig()
	cfg.Width, cfg.Height = 64, 64
	w := dust.NewWithConfig(cfg)
	before := w.Grid().Count()
	for _, st := range defaultScript(cfg) {
		if err := w.PaintCircle(st.x, st.y, st.r, st.material); err != nil {
			t.Fatalf("paint %+v: %v", st, err)
		}
	}
	if w.Grid().Count() <= before {
		t.Fatalf("expected the script to add particles")
	}
}
