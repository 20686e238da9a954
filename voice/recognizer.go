package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

var _ assistant.Recognizer = (*Recognizer)(nil)

// Recognizer records one utterance and transcribes it.
type Recognizer struct {
	rec assistant.Recorder
	tr  assistant.Transcriber
}

// NewRecognizer creates a [Recognizer].
func NewRecognizer(rec assistant.Recorder, tr assistant.Transcriber) *Recognizer {
	return &Recognizer{rec: rec, tr: tr}
}

// Recognize returns the final transcript. Failures other than cancellation
// are reported as "Error occurred in recognition: <cause>"; an empty
// transcript wraps [assistant.ErrNoSpeech].
func (r *Recognizer) Recognize(ctx context.Context) (string, error) {
	a, err := r.rec.Record(ctx)
	if err != nil {
		return "", recognitionErr(ctx, err)
	}
	text, err := r.tr.Transcribe(ctx, a)
	if err != nil {
		return "", recognitionErr(ctx, err)
	}
	if text = strings.TrimSpace(text); text == "" {
		return "", recognitionErr(ctx, assistant.ErrNoSpeech)
	}
	return text, nil
}

func recognitionErr(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	return fmt.Errorf("Error occurred in recognition: %w", err)
}
