package dust

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestFromMapOverridesAndGuards(t *testing.T) {
	cfg := FromMap(map[string]string{
		"w":                      "64",
		"h":                      "-3",
		"seed":                   "99",
		"gravity":                "0.25",
		"floor_fraction":         "1.5",
		"flush_limit":            "-1",
		"tree_max_depth":         "3",
		"liquid_rest_dispersion": "12",
		"gas_max_speed":          "oops",
	})
	def := DefaultConfig()
	if cfg.Width != 64 || cfg.Height != def.Height {
		t.Fatalf("unexpected size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Seed != 99 || cfg.Gravity != 0.25 || cfg.FlushLimit != -1 || cfg.TreeMaxDepth != 3 {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.FloorFraction != def.FloorFraction {
		t.Fatalf("expected out-of-range floor fraction to be ignored, got %v", cfg.FloorFraction)
	}
	if cfg.Materials.Liquid.RestDispersion != 12 {
		t.Fatalf("expected liquid rest dispersion 12, got %v", cfg.Materials.Liquid.RestDispersion)
	}
	if cfg.Materials.Gas.MaxSpeed != def.Materials.Gas.MaxSpeed {
		t.Fatalf("expected unparsable gas speed to be ignored")
	}
}

func TestApplyReportsUnknownKeys(t *testing.T) {
	cfg := DefaultConfig()
	unknown := cfg.Apply(map[string]string{"w": "10", "lava": "1"})
	if len(unknown) != 1 || unknown[0] != "lava" {
		t.Fatalf("expected lava to be reported unknown, got %v", unknown)
	}
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dust.yaml")
	raw := []byte("width: 80\nheight: 60\ngravity: 0.2\nmaterials:\n  sand:\n    dispersion_factor: 7\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Width != 80 || cfg.Height != 60 || cfg.Gravity != 0.2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Materials.Sand.DispersionFactor != 7 {
		t.Fatalf("expected sand factor 7, got %v", cfg.Materials.Sand.DispersionFactor)
	}
	if cfg.Materials.Gravel.DispersionFactor != DefaultMaterials().Gravel.DispersionFactor {
		t.Fatalf("expected gravel defaults to survive a partial materials block")
	}
	if cfg.Seed != DefaultConfig().Seed {
		t.Fatalf("expected default seed, got %d", cfg.Seed)
	}

	fromMap := FromMap(map[string]string{"config": path, "w": "20"})
	if fromMap.Width != 20 || fromMap.Height != 60 {
		t.Fatalf("expected map keys to override the file, got %dx%d", fromMap.Width, fromMap.Height)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("width: [1, 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected malformed yaml to fail")
	}
}

func TestBindParsesFlags(t *testing.T) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet("dust", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-w", "50", "-flush", "-1", "-depth", "5"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Width != 50 || cfg.FlushLimit != -1 || cfg.TreeMaxDepth != 5 {
		t.Fatalf("unexpected config after flags %+v", cfg)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("round trip of %v failed: %v %v", k, got, err)
		}
	}
	if k, err := ParseKind(" Liquid "); err != nil || k != KindLiquid {
		t.Fatalf("expected alias to parse, got %v %v", k, err)
	}
	if _, err := ParseKind("lava"); !errors.Is(err, ErrUnknownMaterial) {
		t.Fatalf("expected ErrUnknownMaterial, got %v", err)
	}
}
