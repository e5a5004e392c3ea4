package qoi

import (
	"errors"
	"fmt"
)

// Status is the outcome of a call to (*Decoder).Decode.
type Status int

const (
	// NotInitialized is the state of a Result nothing has been decoded into
	NotInitialized Status = iota - 1
	OK
	NullBuffer
	MalformedStream
	SourceUnavailable
	MissingName
)

var statusNames = map[Status]string{
	NotInitialized:    "not initialized",
	OK:                "ok",
	NullBuffer:        "null buffer",
	MalformedStream:   "malformed stream",
	SourceUnavailable: "source unavailable",
	MissingName:       "missing name",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ErrBufferTooSmall is returned when an image does not fit the output
// buffer. The buffer size is fixed by the display mode so this is not
// something the caller can recover from by retrying.
var ErrBufferTooSmall = errors.New("qoi: image does not fit output buffer")

// IsFatal reports whether err is an unrecoverable configuration error rather
// than a problem with a single image.
func IsFatal(err error) bool {
	return errors.Is(err, ErrBufferTooSmall)
}

// Error is a recoverable decode failure.
type Error struct {
	Status Status
	Name   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("qoi: %s: %s", e.Name, e.Status)
	}
	return fmt.Sprintf("qoi: %s: %s: %v", e.Name, e.Status, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf returns the Status carried by err, OK for a nil error and
// NotInitialized for anything that is not an *Error.
func StatusOf(err error) Status {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return NotInitialized
}
