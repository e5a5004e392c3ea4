/*
Package qoi implements a decoder for the Quite OK Image format.

A file is a 14 byte header (the magic "qoif", big endian 32-bit width and
height, channel count and colorspace) followed by a stream of variable length
chunks and finally eight bytes of padding, seven zeroes and a one. Each chunk
produces one or more pixels from the previous pixel, a 64 entry cache of
recently seen colors, or literal values.

The decoder writes into a fixed size RGBA buffer supplied by the caller and
refuses, before touching it, any image that would not fit.
*/
package qoi

import (
	"encoding/binary"
	"errors"
	"image/color"
)

const (
	magic      = "qoif"
	headerSize = 14
	cacheSize  = 64

	// BytesPerPixel is the number of bytes written to the output buffer
	// per pixel regardless of the number of channels in the source.
	BytesPerPixel = 4

	// MaxNameLen is the longest source name kept in a Result
	MaxNameLen = 242
)

var padding = [8]byte{0, 0, 0, 0, 0, 0, 0, 1}

const (
	opIndex = 0x00 // 00xxxxxx
	opDiff  = 0x40 // 01xxxxxx
	opLuma  = 0x80 // 10xxxxxx
	opRun   = 0xc0 // 11xxxxxx
	opRGB   = 0xfe
	opRGBA  = 0xff

	maskOp = 0xc0
	maxRun = 62
)

var (
	errNotEnough  = errors.New("qoi: not enough image data")
	errBadMagic   = errors.New("qoi: invalid magic")
	errBadSize    = errors.New("qoi: invalid dimensions")
	errBadFormat  = errors.New("qoi: invalid channels or colorspace")
	errTruncated  = errors.New("qoi: chunk stream ended early")
	errUnreadable = errors.New("qoi: short read")
)

// Header holds the fixed size file header.
type Header struct {
	Width      uint32
	Height     uint32
	Channels   uint8
	Colorspace uint8
}

// Pixels returns the number of pixels described by the header.
func (h Header) Pixels() uint64 {
	return uint64(h.Width) * uint64(h.Height)
}

// DecodeHeader parses the header from the start of b.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < headerSize {
		return Header{}, errNotEnough
	}
	if string(b[:4]) != magic {
		return Header{}, errBadMagic
	}
	h := Header{
		Width:      binary.BigEndian.Uint32(b[4:]),
		Height:     binary.BigEndian.Uint32(b[8:]),
		Channels:   b[12],
		Colorspace: b[13],
	}
	if h.Width == 0 || h.Height == 0 {
		return Header{}, errBadSize
	}
	if (h.Channels != 3 && h.Channels != 4) || h.Colorspace > 1 {
		return Header{}, errBadFormat
	}
	return h, nil
}

func hash(c color.NRGBA) int {
	return (int(c.R)*3 + int(c.G)*5 + int(c.B)*7 + int(c.A)*11) % cacheSize
}

// decoder walks the chunk stream of a single image.
type decoder struct {
	data  []byte
	pos   int
	end   int
	run   int
	prev  color.NRGBA
	cache [cacheSize]color.NRGBA
}

func newDecoder(data []byte) *decoder {
	return &decoder{
		data: data,
		pos:  headerSize,
		end:  len(data) - len(padding),
		prev: color.NRGBA{0, 0, 0, 0xff},
	}
}

func (d *decoder) read(n int) ([]byte, error) {
	if d.pos+n > d.end {
		return nil, errTruncated
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// next returns the next pixel in the stream.
func (d *decoder) next() (color.NRGBA, error) {
	if d.run > 0 {
		d.run--
		return d.prev, nil
	}

	b, err := d.read(1)
	if err != nil {
		return color.NRGBA{}, err
	}

	px := d.prev
	switch op := b[0]; {
	case op == opRGB:
		v, err := d.read(3)
		if err != nil {
			return color.NRGBA{}, err
		}
		px.R, px.G, px.B = v[0], v[1], v[2]
	case op == opRGBA:
		v, err := d.read(4)
		if err != nil {
			return color.NRGBA{}, err
		}
		px = color.NRGBA{v[0], v[1], v[2], v[3]}
	case op&maskOp == opIndex:
		px = d.cache[op]
	case op&maskOp == opDiff:
		px.R += (op>>4)&0x03 - 2
		px.G += (op>>2)&0x03 - 2
		px.B += op&0x03 - 2
	case op&maskOp == opLuma:
		v, err := d.read(1)
		if err != nil {
			return color.NRGBA{}, err
		}
		dg := op&0x3f - 32
		px.R += dg + (v[0]>>4)&0x0f - 8
		px.G += dg
		px.B += dg + v[0]&0x0f - 8
	default:
		// Runs repeat the previous pixel and leave the cache alone
		d.run = int(op & 0x3f)
		return d.prev, nil
	}

	d.cache[hash(px)] = px
	d.prev = px
	return px, nil
}

// decodeInto writes n pixels as RGBA into dst; the caller guarantees dst
// holds at least n*BytesPerPixel bytes.
func (d *decoder) decodeInto(dst []byte, n uint64) error {
	var seek int
	for i := uint64(0); i < n; i++ {
		px, err := d.next()
		if err != nil {
			return err
		}
		dst[seek+0] = px.R
		dst[seek+1] = px.G
		dst[seek+2] = px.B
		dst[seek+3] = px.A
		seek += BytesPerPixel
	}
	return nil
}
