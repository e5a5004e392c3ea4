package qoi

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// Source opens compressed images by name.
type Source interface {
	Open(name string) (io.ReadSeekCloser, error)
}

// Result describes the outcome of a decode.
type Result struct {
	Width    int
	Height   int
	Channels int
	Status   Status
	Elapsed  time.Duration
	Name     string

	// Overlay is owned by the caller and never changed by the decoder
	Overlay bool
}

// NewResult returns a Result for which nothing has been decoded yet.
func NewResult() Result {
	return Result{Status: NotInitialized}
}

// Decoder decodes images from a Source into caller supplied buffers. A
// Decoder must not be used by more than one goroutine at a time.
type Decoder struct {
	src    Source
	logger *log.Logger
}

// NewDecoder returns a Decoder reading from src. A nil logger discards
// output.
func NewDecoder(src Source, logger *log.Logger) *Decoder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Decoder{
		src:    src,
		logger: logger,
	}
}

var scratchPool = sync.Pool{
	New: func() interface{} {
		return new([]byte)
	},
}

func acquire(n int) *[]byte {
	b := scratchPool.Get().(*[]byte)
	if cap(*b) < n {
		*b = make([]byte, n)
	}
	*b = (*b)[:n]
	return b
}

func release(b *[]byte) {
	scratchPool.Put(b)
}

func truncateName(name string) string {
	if len(name) > MaxNameLen {
		return name[:MaxNameLen]
	}
	return name
}

// readSource loads the whole named source into a scratch buffer. The caller
// must release the buffer.
func (d *Decoder) readSource(name string) (*[]byte, error) {
	f, err := d.src.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	b := acquire(int(size))
	if _, err := io.ReadFull(f, *b); err != nil {
		release(b)
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: %v", errUnreadable, err)
	}
	return b, nil
}

// Decode decodes the named image into buf as consecutive RGBA bytes.
//
// Problems with the image itself are reported as an *Error and in the
// Status of the returned Result. An image larger than buf returns an error
// wrapping ErrBufferTooSmall, in which case buf is left untouched.
func (d *Decoder) Decode(name string, buf []byte) (Result, error) {
	r := NewResult()
	r.Name = truncateName(name)

	fail := func(s Status, err error) (Result, error) {
		r.Status = s
		return r, &Error{Status: s, Name: r.Name, Err: err}
	}

	if buf == nil {
		return fail(NullBuffer, nil)
	}
	if name == "" {
		return fail(MissingName, nil)
	}

	start := time.Now()

	b, err := d.readSource(name)
	if err != nil {
		return fail(SourceUnavailable, err)
	}
	defer release(b)
	data := *b

	if len(data) < headerSize+len(padding) {
		return fail(MalformedStream, errNotEnough)
	}
	h, err := DecodeHeader(data)
	if err != nil {
		return fail(MalformedStream, err)
	}

	if need := h.Pixels() * BytesPerPixel; need > uint64(len(buf)) {
		return r, fmt.Errorf("%w: %s is %dx%d, needs %d bytes, have %d", ErrBufferTooSmall, r.Name, h.Width, h.Height, need, len(buf))
	}

	r.Width = int(h.Width)
	r.Height = int(h.Height)
	r.Channels = int(h.Channels)

	if err := newDecoder(data).decodeInto(buf, h.Pixels()); err != nil {
		return fail(MalformedStream, err)
	}

	r.Elapsed = time.Since(start)
	r.Status = OK

	d.logger.Printf("decoded %s in %.3f ms\n", r.Name, float64(r.Elapsed)/float64(time.Millisecond))

	return r, nil
}
