package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec is the compression applied to blobs inside a pack. QOI is already
// compressed but still shrinks noticeably under a general purpose codec.
type Codec uint8

const (
	None Codec = iota
	Zstd
	LZ4
)

var codecNames = [...]string{
	None: "none",
	Zstd: "zstd",
	LZ4:  "lz4",
}

func (c Codec) String() string {
	if int(c) < len(codecNames) {
		return codecNames[c]
	}
	return fmt.Sprintf("codec(%d)", uint8(c))
}

// ParseCodec returns the Codec with the given name.
func ParseCodec(s string) (Codec, error) {
	for i, n := range codecNames {
		if strings.EqualFold(s, n) {
			return Codec(i), nil
		}
	}
	return None, fmt.Errorf("store: unknown codec %q", s)
}

var errSizeMismatch = errors.New("store: decompressed size mismatch")

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression), zstd.WithEncoderConcurrency(1))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

// compress returns data compressed with c, along with the codec actually
// used; blobs that do not shrink are stored as-is.
func compress(c Codec, data []byte) (Codec, []byte, error) {
	switch c {
	case None:
		return None, data, nil
	case Zstd:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		out := enc.EncodeAll(data, nil)
		if len(out) >= len(data) {
			return None, data, nil
		}
		return Zstd, out, nil
	case LZ4:
		out := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, out, nil)
		if err != nil {
			return None, nil, err
		}
		if n == 0 || n >= len(data) {
			// Incompressible
			return None, data, nil
		}
		return LZ4, out[:n], nil
	default:
		return None, nil, fmt.Errorf("store: unknown codec %d", c)
	}
}

func decompress(c Codec, data []byte, size int) ([]byte, error) {
	switch c {
	case None:
		if len(data) != size {
			return nil, errSizeMismatch
		}
		return data, nil
	case Zstd:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(data, make([]byte, 0, size))
		if err != nil {
			return nil, err
		}
		if len(out) != size {
			return nil, errSizeMismatch
		}
		return out, nil
	case LZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, err
		}
		if n != size {
			return nil, errSizeMismatch
		}
		return out, nil
	default:
		return nil, fmt.Errorf("store: unknown codec %d", c)
	}
}
