package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

// FillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func FillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		for i := range cells {
			base := i * 4
			buf[base+0] = 0
			buf[base+1] = 0
			buf[base+2] = 0
			buf[base+3] = 0
		}
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

// Snapshot paints cells into a w x h image. Row 0 of the grid is the bottom
// row of the image so that +y points up on screen.
func Snapshot(cells []uint8, palette []color.RGBA, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 || len(cells) < w*h {
		return img
	}
	for y := 0; y < h; y++ {
		src := cells[y*w : (y+1)*w]
		dst := img.Pix[(h-1-y)*img.Stride:]
		FillPaletteRGBA(dst, src, palette)
	}
	return img
}

// WritePNG encodes a snapshot of cells to out.
func WritePNG(out io.Writer, cells []uint8, palette []color.RGBA, w, h int) error {
	return png.Encode(out, Snapshot(cells, palette, w, h))
}
