package assistant

import "context"

// Audio is an encoded audio clip.
type Audio struct {
	Data     []byte
	MimeType string
}

// Synthesizer renders text to audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Audio, error)
}

// Player plays audio. Play blocks until playback finishes; cancelling ctx
// stops playback early.
type Player interface {
	Play(ctx context.Context, a Audio) error
}

// Recorder captures one utterance from the microphone.
type Recorder interface {
	Record(ctx context.Context) (Audio, error)
}

// Transcriber converts recorded speech to text.
type Transcriber interface {
	Transcribe(ctx context.Context, a Audio) (string, error)
}

// Recognizer returns the final transcript of one spoken utterance.
// Cancelling ctx stops listening.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// Speaker speaks text aloud. Speak stops any current playback first and
// blocks until playback finishes, Stop is called or ctx is cancelled.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Stop()
	Speaking() bool
}
