//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter uploads palette-indexed cells into an offscreen image and
// scales it onto the screen.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter allocates a painter for a w x h grid.
func NewGridPainter(w, h int) *GridPainter {
	return &GridPainter{
		w:   w,
		h:   h,
		img: ebiten.NewImage(w, h),
		buf: make([]byte, 4*w*h),
	}
}

// Blit paints cells onto screen at the given integer scale. Grid row 0 lands
// at the bottom of the view.
func (p *GridPainter) Blit(screen *ebiten.Image, cells []uint8, palette []color.RGBA, scale int) {
	if len(cells) < p.w*p.h {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	for y := 0; y < p.h; y++ {
		FillPaletteRGBA(p.buf[(p.h-1-y)*p.w*4:], cells[y*p.w:(y+1)*p.w], palette)
	}
	p.img.WritePixels(p.buf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(p.img, op)
}
