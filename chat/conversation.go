package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// ErrVoiceUnavailable is returned by Listen when no recognizer is configured.
var ErrVoiceUnavailable = errors.New("voice input is not available")

// Conversation drives one chat session: it records messages in the store,
// forwards them to the processor and speaks replies.
type Conversation struct {
	proc       assistant.Processor
	store      assistant.ConversationStore
	speaker    assistant.Speaker
	recognizer assistant.Recognizer
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64
	speech bool
	wg     sync.WaitGroup
}

// ConversationOption configures a [Conversation].
type ConversationOption func(*Conversation)

// WithSpeaker enables spoken replies through s.
func WithSpeaker(s assistant.Speaker) ConversationOption {
	return func(c *Conversation) {
		c.speaker = s
		c.speech = s != nil
	}
}

// WithRecognizer enables voice input.
func WithRecognizer(r assistant.Recognizer) ConversationOption {
	return func(c *Conversation) { c.recognizer = r }
}

// WithSpeechEnabled sets the initial speech state. It has no effect without
// a speaker.
func WithSpeechEnabled(on bool) ConversationOption {
	return func(c *Conversation) { c.speech = on }
}

// WithConversationLogger sets the logger.
func WithConversationLogger(l *slog.Logger) ConversationOption {
	return func(c *Conversation) { c.logger = l }
}

// NewConversation creates a [Conversation].
func NewConversation(proc assistant.Processor, store assistant.ConversationStore, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		proc:   proc,
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	if c.speaker == nil {
		c.speech = false
	}
	return c
}

// Send records text as a user message and processes it under the active
// persona. Blank input is ignored. A Send still in flight is cancelled.
//
// A failed reply is recorded as an "Error: ..." assistant message. A
// cancelled reply records nothing. The returned error reports store
// failures only; the outcome of the reply is in the Result.
func (c *Conversation) Send(ctx context.Context, text string, onEvent func(assistant.Event)) (assistant.Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return assistant.Result{}, nil
	}

	persona, err := c.store.ActivePersona(ctx)
	if err != nil {
		return assistant.Result{}, fmt.Errorf("chat: active persona: %w", err)
	}

	ctx, done := c.begin(ctx)
	defer done()

	if err := c.store.Append(ctx, assistant.NewMessage(assistant.RoleUser, text, persona)); err != nil {
		return assistant.Result{}, fmt.Errorf("chat: append user message: %w", err)
	}

	res := c.proc.ProcessMessage(ctx, text, persona, onEvent)
	switch {
	case res.Cancelled():
		return res, nil
	case res.Err != nil:
		msg := assistant.NewMessage(assistant.RoleAssistant, "Error: "+res.Err.Error(), persona)
		if err := c.store.Append(context.WithoutCancel(ctx), msg); err != nil {
			return res, fmt.Errorf("chat: append error message: %w", err)
		}
		return res, nil
	}

	if res.Text != "" {
		msg := assistant.NewMessage(assistant.RoleAssistant, res.Text, persona)
		if err := c.store.Append(context.WithoutCancel(ctx), msg); err != nil {
			return res, fmt.Errorf("chat: append reply: %w", err)
		}
		c.speak(res.Text)
	}
	return res, nil
}

// begin registers a new in-flight request, cancelling the previous one.
func (c *Conversation) begin(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	c.cancel = func() { cancel(context.Canceled) }
	c.mu.Unlock()

	return ctx, func() {
		c.mu.Lock()
		if c.seq == seq {
			c.cancel = nil
		}
		c.mu.Unlock()
		cancel(nil)
	}
}

// Cancel stops the request in flight, if any. It reports whether there was
// one.
func (c *Conversation) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return false
	}
	c.cancel()
	c.cancel = nil
	return true
}

// Busy reports whether a request is in flight.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

func (c *Conversation) speak(text string) {
	c.mu.Lock()
	on := c.speech
	c.mu.Unlock()
	if !on {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.speaker.Speak(context.Background(), text); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn("speech failed", "error", err)
		}
	}()
}

// Wait blocks until background speech started by Send has finished.
func (c *Conversation) Wait() {
	c.wg.Wait()
}

// SpeechEnabled reports whether replies are spoken.
func (c *Conversation) SpeechEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speech
}

// Speaking reports whether a reply is being spoken.
func (c *Conversation) Speaking() bool {
	return c.speaker != nil && c.speaker.Speaking()
}

// ToggleSpeech flips spoken replies on or off and returns the new state.
// Turning speech off stops current playback. Without a speaker it is a
// no-op that returns false.
func (c *Conversation) ToggleSpeech() bool {
	if c.speaker == nil {
		return false
	}
	c.mu.Lock()
	c.speech = !c.speech
	on := c.speech
	c.mu.Unlock()

	if !on {
		c.speaker.Stop()
	}
	return on
}

// Messages returns the conversation log.
func (c *Conversation) Messages(ctx context.Context) ([]assistant.Message, error) {
	msgs, err := c.store.Messages(ctx)
	if err != nil {
		return nil, fmt.Errorf("chat: messages: %w", err)
	}
	return msgs, nil
}

// Clear deletes all messages. The active persona is kept.
func (c *Conversation) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("chat: clear: %w", err)
	}
	return nil
}

// ActivePersona returns the persona new messages are sent under.
func (c *Conversation) ActivePersona(ctx context.Context) (assistant.PersonaID, error) {
	id, err := c.store.ActivePersona(ctx)
	if err != nil {
		return "", fmt.Errorf("chat: active persona: %w", err)
	}
	return id, nil
}

// SetPersona switches the active persona.
func (c *Conversation) SetPersona(ctx context.Context, id assistant.PersonaID) error {
	if err := c.store.SetActivePersona(ctx, id); err != nil {
		return fmt.Errorf("chat: set persona: %w", err)
	}
	return nil
}

// Listen captures one spoken utterance and returns its transcript. A
// recognition failure is recorded as an "Error: ..." assistant message and
// returned. Cancelling ctx stops listening without recording anything.
func (c *Conversation) Listen(ctx context.Context) (string, error) {
	if c.recognizer == nil {
		return "", ErrVoiceUnavailable
	}
	text, err := c.recognizer.Recognize(ctx)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return "", err
	}

	persona, perr := c.store.ActivePersona(ctx)
	if perr != nil {
		persona = assistant.PersonaGeneral
	}
	msg := assistant.NewMessage(assistant.RoleAssistant, "Error: "+err.Error(), persona)
	if aerr := c.store.Append(ctx, msg); aerr != nil {
		return "", errors.Join(err, fmt.Errorf("chat: append error message: %w", aerr))
	}
	return "", err
}
