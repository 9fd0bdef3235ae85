package main

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"

	"dustfall/internal/core"
)

func TestHalfBlockColors(t *testing.T) {
	style := halfBlock(color.RGBA{R: 10, G: 20, B: 30, A: 255}, color.RGBA{})
	fg, bg, _ := style.Decompose()
	if fg != tcell.NewRGBColor(10, 20, 30) {
		t.Fatalf("unexpected foreground %v", fg)
	}
	if bg != tcell.ColorBlack {
		t.Fatalf("transparent pixel should render black, got %v", bg)
	}
}

func TestPixelAtOutside(t *testing.T) {
	px := []byte{1, 2, 3, 4}
	size := core.Size{W: 1, H: 1}
	if got := pixelAt(px, size, 0, 0); got != (color.RGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Fatalf("unexpected pixel %v", got)
	}
	if got := pixelAt(px, size, 0, 1); got != (color.RGBA{}) {
		t.Fatalf("expected zero color below the grid, got %v", got)
	}
}
