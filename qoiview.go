/*
Package qoiview is a library for browsing a read-only store of QOI images one
frame at a time within a fixed size display buffer.
*/
package qoiview

import (
	"fmt"
	"image"
	"io"
	"log"
	"time"

	"github.com/bodgit/qoiview/catalog"
	"github.com/bodgit/qoiview/metrics"
	"github.com/bodgit/qoiview/qoi"
	"github.com/bodgit/qoiview/store"
)

// DisplayMode is the fixed output resolution the viewer decodes into.
type DisplayMode struct {
	Width  int
	Height int
}

// DefaultMode is 320x240.
var DefaultMode = DisplayMode{Width: 320, Height: 240}

// BufferSize returns the size in bytes of one RGBA frame.
func (m DisplayMode) BufferSize() int {
	return m.Width * m.Height * qoi.BytesPerPixel
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithMetrics records every decode in r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(v *Viewer) {
		v.metrics = r
	}
}

// Viewer steps through the images in a store. Each decode goes into a back
// buffer which is only copied to the front buffer once it succeeds, so a
// failed decode never leaves a partial frame on display.
type Viewer struct {
	catalog *catalog.Catalog
	cursor  catalog.Cursor
	decoder *qoi.Decoder
	front   []byte
	back    []byte
	info    qoi.Result
	overlay bool
	metrics *metrics.Recorder
	logger  *log.Logger
}

// New catalogs s and decodes the first image. Not being able to show the
// first image is an error.
func New(s store.Store, mode DisplayMode, logger *log.Logger, opts ...Option) (*Viewer, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	it, err := s.Entries()
	if err != nil {
		return nil, err
	}
	c, err := catalog.Build(it)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		catalog: c,
		cursor:  c.First(),
		decoder: qoi.NewDecoder(s, logger),
		front:   make([]byte, mode.BufferSize()),
		back:    make([]byte, mode.BufferSize()),
		info:    qoi.NewResult(),
		logger:  logger,
	}
	for _, o := range opts {
		o(v)
	}

	logger.Printf("Catalogued %d images in %d chunks\n", c.Len(), c.Chunks())

	if err := v.show(); err != nil {
		return nil, err
	}

	logger.Printf("First pixel of %s: %d %d %d %d\n", v.info.Name, v.front[0], v.front[1], v.front[2], v.front[3])

	return v, nil
}

func (v *Viewer) show() error {
	res, err := v.decoder.Decode(v.catalog.Name(v.cursor), v.back)
	res.Overlay = v.overlay
	// A buffer too small for the image is not a per-image outcome
	if v.metrics != nil && !qoi.IsFatal(err) {
		v.metrics.Observe(res)
	}
	if err != nil {
		return err
	}

	copy(v.front, v.back)
	v.info = res

	return nil
}

// Move steps the cursor in direction d and decodes the image there. The
// cursor moves even if the decode fails so the next call steps past it.
func (v *Viewer) Move(d catalog.Direction) error {
	v.cursor = v.catalog.Advance(v.cursor, d)
	return v.show()
}

// Next moves to the next image.
func (v *Viewer) Next() error {
	return v.Move(catalog.Next)
}

// Previous moves to the previous image.
func (v *Viewer) Previous() error {
	return v.Move(catalog.Previous)
}

// Catalog returns the catalog being browsed.
func (v *Viewer) Catalog() *catalog.Catalog {
	return v.catalog
}

// Cursor returns the current catalog position.
func (v *Viewer) Cursor() catalog.Cursor {
	return v.cursor
}

// Current returns the name at the cursor.
func (v *Viewer) Current() string {
	return v.catalog.Name(v.cursor)
}

// Info returns the result of the last successful decode.
func (v *Viewer) Info() qoi.Result {
	return v.info
}

// Frame returns the front buffer. It is only valid until the next call to
// Move.
func (v *Viewer) Frame() []byte {
	return v.front
}

// Image returns the front buffer as an image sized to the last successful
// decode. It shares memory with the front buffer.
func (v *Viewer) Image() *image.NRGBA {
	w, h := v.info.Width, v.info.Height
	return &image.NRGBA{
		Pix:    v.front[:w*h*qoi.BytesPerPixel],
		Stride: w * qoi.BytesPerPixel,
		Rect:   image.Rect(0, 0, w, h),
	}
}

// ToggleOverlay flips the debug overlay and returns the new state.
func (v *Viewer) ToggleOverlay() bool {
	v.overlay = !v.overlay
	v.info.Overlay = v.overlay
	return v.overlay
}

// Overlay returns the debug text for the current frame, or an empty string
// if the overlay is off.
func (v *Viewer) Overlay() string {
	if !v.overlay {
		return ""
	}
	return fmt.Sprintf("%s %dx%d c%d %.2f ms", v.info.Name, v.info.Width, v.info.Height, v.info.Channels, float64(v.info.Elapsed)/float64(time.Millisecond))
}
