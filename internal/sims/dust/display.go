package dust

import "image/color"

var familyPalette = []color.RGBA{
	FamilyNothing: {A: 255},
	FamilySolid:   KindSolid.baseColor(),
	FamilySand:    KindSand.baseColor(),
	FamilyLiquid:  KindLiquid.baseColor(),
	FamilyGas:     KindGas.baseColor(),
}

// Palette maps the family values returned by Cells to display colors.
func (w *World) Palette() []color.RGBA {
	return familyPalette
}
