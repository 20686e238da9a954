package sse_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahazafark/virtual-ai-assistant/sse"
)

// chunkReader returns the configured chunks one per Read call.
type chunkReader struct {
	chunks [][]byte
	err    error // returned after the last chunk; io.EOF when nil
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func collect(t *testing.T, r *sse.Reader) []sse.Event {
	t.Helper()
	var events []sse.Event
	for {
		evt, err := r.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
}

const stream = "data: {\"text\":\"Grüße\"}\r\n\r\n: ping\n\nevent: done\ndata: [DONE]\n\n"

func TestReader_ChunkBoundaryInvariance(t *testing.T) {
	t.Parallel()

	want := collect(t, sse.NewReader(strings.NewReader(stream), 0))
	require.Len(t, want, 3)

	raw := []byte(stream)
	for i := 1; i < len(raw); i++ {
		for j := i; j < len(raw); j += 7 {
			r := &chunkReader{chunks: [][]byte{
				append([]byte(nil), raw[:i]...),
				append([]byte(nil), raw[i:j]...),
				append([]byte(nil), raw[j:]...),
			}}
			got := collect(t, sse.NewReader(r, 0))
			assert.Equal(t, want, got, "splits at %d and %d", i, j)
		}
	}
}

func TestReader_OneByteReads(t *testing.T) {
	t.Parallel()

	want := collect(t, sse.NewReader(strings.NewReader(stream), 0))
	got := collect(t, sse.NewReader(iotest.OneByteReader(strings.NewReader(stream)), 0))
	assert.Equal(t, want, got)
}

func TestReader_DropsIncompleteTrailingEvent(t *testing.T) {
	t.Parallel()

	r := sse.NewReader(strings.NewReader("data: one\n\ndata: two"), 0)
	events := collect(t, r)
	require.Len(t, events, 1)
	assert.Equal(t, "one", events[0].Data)
	assert.True(t, r.Truncated())
}

func TestReader_EmptyStream(t *testing.T) {
	t.Parallel()

	r := sse.NewReader(strings.NewReader(""), 0)
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
	assert.False(t, r.Truncated())
}

func TestReader_ReadErrorAfterEvents(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	r := sse.NewReader(&chunkReader{
		chunks: [][]byte{[]byte("data: a\n\n")},
		err:    boom,
	}, 0)

	evt, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", evt.Data)

	_, err = r.Next()
	assert.ErrorIs(t, err, boom)
	// Errors are sticky.
	_, err = r.Next()
	assert.ErrorIs(t, err, boom)
}
