package qoi

import (
	"image"
	"image/color"
	"io"
)

// maxPixels bounds images decoded through the image package, where there is
// no caller supplied buffer to check against.
const maxPixels = 400_000_000

func init() {
	image.RegisterFormat("qoi", magic, Decode, DecodeConfig)
}

func readAll(r io.Reader) ([]byte, Header, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, Header{}, err
	}
	if len(b) < headerSize+len(padding) {
		return nil, Header{}, errNotEnough
	}
	h, err := DecodeHeader(b)
	if err != nil {
		return nil, Header{}, err
	}
	if h.Pixels() > maxPixels {
		return nil, Header{}, errBadSize
	}
	// A chunk covers at most maxRun pixels so a stream shorter than this
	// can't fill the image
	if body := uint64(len(b) - headerSize - len(padding)); body < (h.Pixels()+maxRun-1)/maxRun {
		return nil, Header{}, errTruncated
	}
	return b, h, nil
}

// Decode reads a QOI image from r and returns it as an *image.NRGBA.
func Decode(r io.Reader) (image.Image, error) {
	b, h, err := readAll(r)
	if err != nil {
		return nil, err
	}

	m := image.NewNRGBA(image.Rect(0, 0, int(h.Width), int(h.Height)))
	if err := newDecoder(b).decodeInto(m.Pix, h.Pixels()); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeConfig returns the color model and dimensions of a QOI image without
// decoding the chunk stream.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var b [headerSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return image.Config{}, err
	}
	h, err := DecodeHeader(b[:])
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
