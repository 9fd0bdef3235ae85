package render

import "image/color"

// PutPixel writes c at (x, y) of an RGBA buffer whose rows are stride pixels
// wide. Writes outside the buffer are ignored.
func PutPixel(buf []byte, stride, x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= stride {
		return
	}
	base := (y*stride + x) * 4
	if base+3 >= len(buf) {
		return
	}
	buf[base+0] = c.R
	buf[base+1] = c.G
	buf[base+2] = c.B
	buf[base+3] = c.A
}

// FillPalette converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func FillPalette(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:min(len(buf), len(cells)*4)])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
