package palette

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(r image.Rectangle, c color.Color) *image.NRGBA {
	m := image.NewNRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, c)
		}
	}
	return m
}

func TestDominantSolid(t *testing.T) {
	c := color.NRGBA{0x12, 0x34, 0x56, 0xff}
	p := Dominant(solid(image.Rect(0, 0, 8, 8), c), 4)
	if assert.NotEmpty(t, p) {
		assert.Equal(t, "#123456ff", Hex(p[0]))
	}
}

func TestDominantLimit(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			m.Set(x, y, color.NRGBA{uint8(x * 16), uint8(y * 16), 0, 0xff})
		}
	}
	assert.LessOrEqual(t, len(Dominant(m, 8)), 8)
	assert.LessOrEqual(t, len(Dominant(m, 0)), 1)
}

func TestReduce(t *testing.T) {
	m := solid(image.Rect(4, 4, 12, 10), color.NRGBA{0xff, 0, 0, 0xff})
	pm := Reduce(m, 2)
	assert.Equal(t, image.Rect(0, 0, 8, 6), pm.Bounds())
	assert.Equal(t, "#ff0000ff", Hex(pm.At(0, 0)))
}

func TestFormat(t *testing.T) {
	p := color.Palette{
		color.NRGBA{0, 0, 0, 0xff},
		color.NRGBA{0xff, 0xff, 0xff, 0x80},
	}
	assert.Equal(t, "#000000ff #ffffff80", Format(p))
	assert.Equal(t, "", Format(nil))
}
