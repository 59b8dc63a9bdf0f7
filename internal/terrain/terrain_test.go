package terrain

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoiseIsNormalizedAndDeterministic(t *testing.T) {
	a := Noise(32, 24, 7, nil)
	b := Noise(32, 24, 7, nil)
	c := Noise(32, 24, 8, nil)

	require.Len(t, a, 32*24)
	assert.Equal(t, a, b, "same seed must produce the same heights")
	assert.NotEqual(t, a, c, "different seeds should differ")

	lo, hi := 1.0, 0.0
	for _, v := range a {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	assert.InDelta(t, 0, lo, 1e-12)
	assert.InDelta(t, 1, hi, 1e-12)
}

func TestNoiseRejectsEmptySize(t *testing.T) {
	assert.Nil(t, Noise(0, 4, 1, nil))
	assert.Nil(t, Flat(3, 0, 0.5))
}

func TestNormalizeConstantInput(t *testing.T) {
	values := []float64{3, 3, 3}
	Normalize(values)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, values)
}

func TestFromImageFlipsRowsAndReadsRed(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 0, G: 255, A: 255})
	img.Set(0, 1, color.RGBA{R: 51, A: 255})
	img.Set(1, 1, color.RGBA{R: 102, A: 255})

	heights, err := FromImage(img, 2, 2)
	require.NoError(t, err)
	// Grid row 0 is the image's bottom row.
	assert.InDelta(t, 0.2, heights[0], 1e-6)
	assert.InDelta(t, 0.4, heights[1], 1e-6)
	assert.InDelta(t, 1.0, heights[2], 1e-6)
	assert.InDelta(t, 0.0, heights[3], 1e-6)
}

func TestFromImageResamples(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	heights, err := FromImage(img, 4, 8)
	require.NoError(t, err)
	require.Len(t, heights, 32)
	for _, v := range heights {
		assert.InDelta(t, 128.0/255.0, v, 0.01)
	}

	_, err = FromImage(img, 0, 8)
	assert.Error(t, err)
}

func TestLoadPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "height.png")
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	heights, err := Load(path, 8, 8)
	require.NoError(t, err)
	for _, v := range heights {
		assert.InDelta(t, 1.0, v, 1e-9)
	}

	_, err = Load(filepath.Join(dir, "missing.png"), 8, 8)
	assert.Error(t, err)
}
