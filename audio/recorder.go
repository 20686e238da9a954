package audio

import (
	"context"
	"fmt"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

var _ assistant.Recorder = (*Recorder)(nil)

const (
	defaultMaxRecording = 16 << 20
	defaultMimeType     = "audio/wav"
)

// Recorder captures one utterance from a command's stdout. The command is
// expected to stop by itself, for example on silence.
type Recorder struct {
	argv     []string
	mimeType string
	maxBytes int
}

// RecorderOption configures a [Recorder].
type RecorderOption func(*Recorder)

// WithMimeType sets the MIME type of the recorded audio. Default is audio/wav.
func WithMimeType(mt string) RecorderOption {
	return func(r *Recorder) { r.mimeType = mt }
}

// WithMaxBytes caps the recording size.
func WithMaxBytes(n int) RecorderOption {
	return func(r *Recorder) { r.maxBytes = n }
}

// NewRecorder returns a Recorder running argv.
func NewRecorder(argv []string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		argv:     argv,
		mimeType: defaultMimeType,
		maxBytes: defaultMaxRecording,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Record runs the command to completion and returns its stdout.
func (r *Recorder) Record(ctx context.Context) (assistant.Audio, error) {
	cmd, err := command(ctx, r.argv)
	if err != nil {
		return assistant.Audio{}, err
	}
	out := &limitedBuffer{max: r.maxBytes}
	stderr := newTailBuffer(stderrLimit)
	cmd.Stdout = out
	cmd.Stderr = stderr
	if err := runErr(ctx, "record", cmd.Run(), stderr); err != nil {
		return assistant.Audio{}, err
	}
	if out.overflow {
		return assistant.Audio{}, fmt.Errorf("audio: record: recording exceeds %d bytes", r.maxBytes)
	}
	return assistant.Audio{Data: out.buf, MimeType: r.mimeType}, nil
}
