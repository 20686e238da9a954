// Package lorem implements an offline assistant.Transport that streams
// generated lorem ipsum text in the OpenAI chat-completions SSE format.
package lorem

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	loremgen "github.com/bozaro/golorem"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

var _ assistant.Transport = (*Transport)(nil)

// Transport streams lorem ipsum replies without a network connection.
type Transport struct {
	mu        sync.Mutex
	generator *loremgen.Lorem

	words int
	delay time.Duration
}

// Option configures a [Transport].
type Option func(*Transport)

// WithWords sets the approximate number of words per reply.
func WithWords(n int) Option {
	return func(t *Transport) { t.words = n }
}

// WithDelay sets the pause before each streamed word.
func WithDelay(d time.Duration) Option {
	return func(t *Transport) { t.delay = d }
}

// New creates a [Transport] producing about 60 words at 10 words a second.
func New(opts ...Option) *Transport {
	t := &Transport{
		generator: loremgen.New(),
		words:     60,
		delay:     100 * time.Millisecond,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Open starts streaming a reply. Cancelling ctx fails pending reads with
// a KindCancelled error.
func (t *Transport) Open(ctx context.Context, _ assistant.StreamRequest) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, assistant.CancelledError(err)
	}
	words := strings.Fields(t.text())

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(t.stream(ctx, pw, words))
	}()
	return pr, nil
}

func (t *Transport) stream(ctx context.Context, w io.Writer, words []string) error {
	for i, word := range words {
		if i > 0 {
			word = " " + word
		}
		if err := t.wait(ctx); err != nil {
			return err
		}
		if _, err := w.Write(Frame(word)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "data: [DONE]\n\n")
	return err
}

func (t *Transport) wait(ctx context.Context) error {
	if t.delay <= 0 {
		if err := ctx.Err(); err != nil {
			return assistant.CancelledError(context.Cause(ctx))
		}
		return nil
	}
	timer := time.NewTimer(t.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return assistant.CancelledError(context.Cause(ctx))
	}
}

// text generates sentences until the word target is reached.
func (t *Transport) text() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var (
		b     strings.Builder
		count int
	)
	for count < t.words {
		s := t.generator.Sentence(5, 15)
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		count += len(strings.Fields(s))
	}
	return b.String()
}

type chunk struct {
	Choices []choice `json:"choices"`
}

type choice struct {
	Delta delta `json:"delta"`
}

type delta struct {
	Content string `json:"content"`
}

// Frame encodes content as one chat-completions SSE event.
func Frame(content string) []byte {
	data, _ := json.Marshal(chunk{Choices: []choice{{Delta: delta{Content: content}}}})
	out := make([]byte, 0, len(data)+8)
	out = append(out, "data: "...)
	out = append(out, data...)
	return append(out, "\n\n"...)
}
