// Package sse decodes Server-Sent Events from a byte stream.
package sse

import (
	"errors"
	"io"
)

const defaultReadSize = 4096

// Reader pulls Events from an io.Reader. It decodes UTF-8 incrementally and
// frames events across read boundaries.
type Reader struct {
	r      io.Reader
	dec    *Decoder
	parser Parser
	buf    []byte
	queue  []Event
	err    error // sticky read error, reported after queued events drain
}

// NewReader returns a Reader that reads up to readSize bytes per call.
// A non-positive readSize uses a 4 KiB buffer.
func NewReader(r io.Reader, readSize int) *Reader {
	if readSize <= 0 {
		readSize = defaultReadSize
	}
	return &Reader{
		r:   r,
		dec: NewDecoder(),
		buf: make([]byte, readSize),
	}
}

// Next returns the next frame. It returns io.EOF when the underlying reader
// is exhausted and all complete frames have been returned; any incomplete
// trailing event is dropped. Other read errors are returned unchanged.
func (r *Reader) Next() (Event, error) {
	for len(r.queue) == 0 {
		if r.err != nil {
			return Event{}, r.err
		}
		r.fill()
	}
	evt := r.queue[0]
	r.queue = r.queue[1:]
	return evt, nil
}

// Truncated reports whether the stream ended with an incomplete event.
// It is meaningful only after Next has returned io.EOF.
func (r *Reader) Truncated() bool {
	return r.parser.Pending() || r.dec.Buffered() > 0
}

func (r *Reader) fill() {
	n, err := r.r.Read(r.buf)
	if n > 0 {
		r.queue = append(r.queue, r.parser.Feed(r.dec.Decode(r.buf[:n]))...)
	}
	if err == nil {
		return
	}
	if errors.Is(err, io.EOF) {
		r.queue = append(r.queue, r.parser.Feed(r.dec.Flush())...)
		err = io.EOF
	}
	r.err = err
}
