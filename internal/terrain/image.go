package terrain

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// Load decodes the image at path and resamples it to w x h heights.
func Load(path string, w, h int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode heightmap %s: %w", path, err)
	}
	return FromImage(img, w, h)
}

// FromImage resamples img to w x h and returns the red channel normalized to
// [0, 1]. Image rows run top-down while grid rows run bottom-up, so the
// image's last row becomes grid row 0.
func FromImage(img image.Image, w, h int) ([]float64, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("heightmap size %dx%d must be positive", w, h)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("heightmap image is empty")
	}
	dst := image.NewRGBA64(image.Rect(0, 0, w, h))
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	}
	out := make([]float64, w*h)
	for row := 0; row < h; row++ {
		y := h - 1 - row
		for x := 0; x < w; x++ {
			out[y*w+x] = float64(dst.RGBA64At(x, row).R) / 0xffff
		}
	}
	return out, nil
}
