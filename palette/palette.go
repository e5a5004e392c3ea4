/*
Package palette summarises the colors of a decoded frame using median cut
quantization.
*/
package palette

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"
)

// Dominant returns up to n colors representative of m.
func Dominant(m image.Image, n int) color.Palette {
	if n < 1 {
		n = 1
	}
	q := quantize.MedianCutQuantizer{}
	return q.Quantize(make(color.Palette, 0, n), m)
}

// Reduce returns a copy of m drawn with at most n colors.
func Reduce(m image.Image, n int) *image.Paletted {
	b := m.Bounds()
	pm := image.NewPaletted(b, Dominant(m, n))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	return pm
}

// Hex formats c as #rrggbbaa.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// Format returns p as a space separated list of hex colors.
func Format(p color.Palette) string {
	s := make([]string, len(p))
	for i, c := range p {
		s[i] = Hex(c)
	}
	return strings.Join(s, " ")
}
