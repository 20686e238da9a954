// Package voice composes speech synthesis, playback and recognition into
// the speaking and listening behaviour of the assistant.
package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rivo/uniseg"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

var _ assistant.Speaker = (*Speaker)(nil)

// defaultChunkSize is the target length of text synthesized per request.
const defaultChunkSize = 400

var errStopped = errors.New("speech stopped")

// Speaker synthesizes text sentence group by sentence group and plays each
// as soon as it is ready. The next group is synthesized while the current
// one plays. Only one utterance plays at a time.
type Speaker struct {
	synth     assistant.Synthesizer
	player    assistant.Player
	logger    *slog.Logger
	chunkSize int
	filter    func(string) string

	mu     sync.Mutex
	cancel context.CancelCauseFunc
	gen    uint64
}

// SpeakerOption configures a [Speaker].
type SpeakerOption func(*Speaker)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SpeakerOption {
	return func(s *Speaker) { s.logger = l }
}

// WithChunkSize sets the target number of bytes synthesized per request.
func WithChunkSize(n int) SpeakerOption {
	return func(s *Speaker) { s.chunkSize = n }
}

// WithFilter sets the function that turns reply text into speakable text,
// such as a markdown stripper. By default text is spoken as given.
func WithFilter(fn func(string) string) SpeakerOption {
	return func(s *Speaker) { s.filter = fn }
}

// NewSpeaker creates a [Speaker].
func NewSpeaker(synth assistant.Synthesizer, player assistant.Player, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		synth:     synth,
		player:    player,
		logger:    slog.New(slog.DiscardHandler),
		chunkSize: defaultChunkSize,
		filter:    func(s string) string { return s },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Speak stops any current playback and speaks text. It blocks until the
// text has been played, Stop is called or ctx is cancelled; the latter two
// return context.Canceled.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	chunks := Chunks(s.filter(text), s.chunkSize)
	if len(chunks) == 0 {
		return nil
	}

	ctx, gen := s.begin(ctx)
	defer s.end(gen)

	type clip struct {
		audio assistant.Audio
		err   error
	}
	clips := make(chan clip, 1)
	go func() {
		defer close(clips)
		for _, c := range chunks {
			a, err := s.synth.Synthesize(ctx, c)
			select {
			case clips <- clip{a, err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for c := range clips {
		if ctx.Err() != nil {
			break
		}
		if c.err != nil {
			return stopErr(ctx, fmt.Errorf("voice: synthesize: %w", c.err))
		}
		if err := s.player.Play(ctx, c.audio); err != nil {
			return stopErr(ctx, fmt.Errorf("voice: play: %w", err))
		}
	}
	return stopErr(ctx, nil)
}

// stopErr reports context.Canceled when ctx ended, err otherwise.
func stopErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return context.Canceled
	}
	return err
}

func (s *Speaker) begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancelCause(parent)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel(errStopped)
	}
	s.gen++
	s.cancel = cancel
	return ctx, s.gen
}

func (s *Speaker) end(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.cancel != nil {
		s.cancel(nil)
		s.cancel = nil
	}
}

// Stop halts current playback, if any.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel(errStopped)
		s.cancel = nil
		s.logger.Debug("speech stopped")
	}
}

// Speaking reports whether an utterance is in progress.
func (s *Speaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Chunks splits text at sentence boundaries into pieces of about size
// bytes. A single sentence longer than size forms its own chunk.
func Chunks(text string, size int) []string {
	var (
		chunks []string
		cur    strings.Builder
		state  = -1
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}
	for text != "" {
		var sentence string
		sentence, text, state = uniseg.FirstSentenceInString(text, state)
		if cur.Len() > 0 && cur.Len()+len(sentence) > size {
			flush()
		}
		cur.WriteString(sentence)
	}
	flush()
	return chunks
}
