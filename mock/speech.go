package mock

import (
	"context"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// Interface compliance checks.
var (
	_ assistant.Synthesizer = (*Synthesizer)(nil)
	_ assistant.Player      = (*Player)(nil)
	_ assistant.Recorder    = (*Recorder)(nil)
	_ assistant.Transcriber = (*Transcriber)(nil)
	_ assistant.Recognizer  = (*Recognizer)(nil)
)

// Synthesizer is a test double for assistant.Synthesizer.
type Synthesizer struct {
	SynthesizeFn func(ctx context.Context, text string) (assistant.Audio, error)
}

// Synthesize delegates to SynthesizeFn.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (assistant.Audio, error) {
	return s.SynthesizeFn(ctx, text)
}

// Player is a test double for assistant.Player.
type Player struct {
	PlayFn func(ctx context.Context, a assistant.Audio) error
}

// Play delegates to PlayFn.
func (p *Player) Play(ctx context.Context, a assistant.Audio) error {
	return p.PlayFn(ctx, a)
}

// Recorder is a test double for assistant.Recorder.
type Recorder struct {
	RecordFn func(ctx context.Context) (assistant.Audio, error)
}

// Record delegates to RecordFn.
func (r *Recorder) Record(ctx context.Context) (assistant.Audio, error) {
	return r.RecordFn(ctx)
}

// Transcriber is a test double for assistant.Transcriber.
type Transcriber struct {
	TranscribeFn func(ctx context.Context, a assistant.Audio) (string, error)
}

// Transcribe delegates to TranscribeFn.
func (t *Transcriber) Transcribe(ctx context.Context, a assistant.Audio) (string, error) {
	return t.TranscribeFn(ctx, a)
}

// Recognizer is a test double for assistant.Recognizer.
type Recognizer struct {
	RecognizeFn func(ctx context.Context) (string, error)
}

// Recognize delegates to RecognizeFn.
func (r *Recognizer) Recognize(ctx context.Context) (string, error) {
	return r.RecognizeFn(ctx)
}

// Speaker is a test double for assistant.Speaker. StopFn and SpeakingFn are
// nil-safe.
type Speaker struct {
	SpeakFn    func(ctx context.Context, text string) error
	StopFn     func()
	SpeakingFn func() bool
}

var _ assistant.Speaker = (*Speaker)(nil)

// Speak delegates to SpeakFn.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	return s.SpeakFn(ctx, text)
}

// Stop delegates to StopFn when set.
func (s *Speaker) Stop() {
	if s.StopFn != nil {
		s.StopFn()
	}
}

// Speaking delegates to SpeakingFn. Returns false when SpeakingFn is not set.
func (s *Speaker) Speaking() bool {
	if s.SpeakingFn == nil {
		return false
	}
	return s.SpeakingFn()
}
