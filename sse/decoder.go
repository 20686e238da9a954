package sse

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder converts UTF-8 byte chunks to text while keeping state across
// chunks. A multi-byte sequence split at the end of a chunk is held back until
// the next chunk completes it. A leading byte order mark is dropped and
// invalid bytes decode to U+FFFD.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	dst     []byte
}

// NewDecoder returns a Decoder positioned at the start of a stream.
func NewDecoder() *Decoder {
	return &Decoder{
		t:   unicode.UTF8BOM.NewDecoder(),
		dst: make([]byte, 4096),
	}
}

// Decode returns the text completed by chunk.
func (d *Decoder) Decode(chunk []byte) string {
	return d.transform(chunk, false)
}

// Flush returns whatever is still buffered at end of stream. An incomplete
// trailing sequence becomes U+FFFD.
func (d *Decoder) Flush() string {
	return d.transform(nil, true)
}

// Buffered reports the number of bytes held back for the next chunk.
func (d *Decoder) Buffered() int { return len(d.pending) }

func (d *Decoder) transform(chunk []byte, atEOF bool) string {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
		d.pending = nil
	}
	var out strings.Builder
	for {
		nDst, nSrc, err := d.t.Transform(d.dst, src, atEOF)
		out.Write(d.dst[:nDst])
		src = src[nSrc:]
		switch err {
		case transform.ErrShortDst:
			d.dst = make([]byte, 2*len(d.dst)+utf8.UTFMax)
			continue
		case transform.ErrShortSrc:
			d.pending = append([]byte(nil), src...)
		}
		return out.String()
	}
}
