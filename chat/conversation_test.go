package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assistant "github.com/tahazafark/virtual-ai-assistant"
	"github.com/tahazafark/virtual-ai-assistant/chat"
	"github.com/tahazafark/virtual-ai-assistant/mock"
)

func replyWith(res assistant.Result) *mock.Processor {
	return &mock.Processor{
		ProcessMessageFn: func(ctx context.Context, text string, persona assistant.PersonaID, onEvent func(assistant.Event)) assistant.Result {
			return res
		},
	}
}

func contents(msgs []assistant.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = string(m.Role) + ":" + m.Content
	}
	return out
}

func TestConversation_Send(t *testing.T) {
	t.Parallel()

	t.Run("records exchange and speaks reply", func(t *testing.T) {
		t.Parallel()
		store, snapshot := memStore()
		require.NoError(t, store.SetActivePersona(context.Background(), assistant.PersonaTask))
		spoken := make(chan string, 1)
		speaker := &mock.Speaker{SpeakFn: func(ctx context.Context, text string) error {
			spoken <- text
			return nil
		}}
		var gotPersona assistant.PersonaID
		proc := &mock.Processor{
			ProcessMessageFn: func(ctx context.Context, text string, persona assistant.PersonaID, onEvent func(assistant.Event)) assistant.Result {
				gotPersona = persona
				assert.Equal(t, "remind me", text)
				return assistant.Result{Text: "Done."}
			},
		}
		c := chat.NewConversation(proc, store, chat.WithSpeaker(speaker))

		res, err := c.Send(context.Background(), "  remind me \n", nil)
		require.NoError(t, err)
		c.Wait()

		assert.Equal(t, "Done.", res.Text)
		assert.Equal(t, assistant.PersonaTask, gotPersona)
		msgs := snapshot()
		assert.Equal(t, []string{"user:remind me", "assistant:Done."}, contents(msgs))
		assert.Equal(t, assistant.PersonaTask, msgs[1].Persona)
		assert.Equal(t, "Done.", <-spoken)
		assert.False(t, c.Busy())
	})

	t.Run("blank input is ignored", func(t *testing.T) {
		t.Parallel()
		c := chat.NewConversation(&mock.Processor{}, &mock.ConversationStore{})

		res, err := c.Send(context.Background(), " \t ", nil)

		require.NoError(t, err)
		assert.True(t, res.OK())
	})

	t.Run("error reply is recorded", func(t *testing.T) {
		t.Parallel()
		store, snapshot := memStore()
		c := chat.NewConversation(replyWith(assistant.Result{Err: assistant.HTTPStatusError(429, "rate limited")}), store)

		res, err := c.Send(context.Background(), "hi", nil)

		require.NoError(t, err)
		assert.Equal(t, assistant.KindHTTPStatus, res.Kind())
		assert.Equal(t, []string{"user:hi", "assistant:Error: rate limited"}, contents(snapshot()))
	})

	t.Run("auth error text", func(t *testing.T) {
		t.Parallel()
		store, snapshot := memStore()
		c := chat.NewConversation(replyWith(assistant.Result{Err: assistant.AuthMissingError("DeepSeek")}), store)

		_, err := c.Send(context.Background(), "hi", nil)

		require.NoError(t, err)
		assert.Equal(t, "assistant:Error: DeepSeek API key not found. Please check your environment variables.", contents(snapshot())[1])
	})

	t.Run("cancelled reply records nothing", func(t *testing.T) {
		t.Parallel()
		store, snapshot := memStore()
		speaker := &mock.Speaker{}
		c := chat.NewConversation(replyWith(assistant.Result{Err: assistant.CancelledError(context.Canceled)}), store, chat.WithSpeaker(speaker))

		res, err := c.Send(context.Background(), "hi", nil)

		require.NoError(t, err)
		assert.True(t, res.Cancelled())
		assert.Equal(t, []string{"user:hi"}, contents(snapshot()))
	})

	t.Run("speech disabled", func(t *testing.T) {
		t.Parallel()
		store, _ := memStore()
		speaker := &mock.Speaker{}
		c := chat.NewConversation(replyWith(assistant.Result{Text: "quiet"}), store,
			chat.WithSpeaker(speaker), chat.WithSpeechEnabled(false))

		_, err := c.Send(context.Background(), "hi", nil)
		require.NoError(t, err)
		c.Wait()
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		store, _ := memStore()
		store.AppendFn = func(context.Context, assistant.Message) error { return errors.New("disk full") }
		c := chat.NewConversation(&mock.Processor{}, store)

		_, err := c.Send(context.Background(), "hi", nil)

		assert.ErrorContains(t, err, "disk full")
	})
}

// blockingProcessor blocks until its context is cancelled.
func blockingProcessor(started chan<- struct{}) *mock.Processor {
	return &mock.Processor{
		ProcessMessageFn: func(ctx context.Context, text string, persona assistant.PersonaID, onEvent func(assistant.Event)) assistant.Result {
			if text != "second" {
				started <- struct{}{}
				<-ctx.Done()
				return assistant.Result{Err: assistant.CancelledError(context.Cause(ctx))}
			}
			return assistant.Result{Text: "answer"}
		},
	}
}

func TestConversation_NewSendCancelsPrevious(t *testing.T) {
	t.Parallel()

	store, snapshot := memStore()
	started := make(chan struct{})
	c := chat.NewConversation(blockingProcessor(started), store)

	firstDone := make(chan assistant.Result, 1)
	go func() {
		res, _ := c.Send(context.Background(), "first", nil)
		firstDone <- res
	}()
	<-started
	assert.True(t, c.Busy())

	second, err := c.Send(context.Background(), "second", nil)
	require.NoError(t, err)

	var first assistant.Result
	select {
	case first = <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("first Send was not cancelled")
	}
	assert.True(t, first.Cancelled())
	assert.Equal(t, "answer", second.Text)
	assert.Equal(t, []string{"user:first", "user:second", "assistant:answer"}, contents(snapshot()))
}

func TestConversation_Cancel(t *testing.T) {
	t.Parallel()

	store, snapshot := memStore()
	started := make(chan struct{})
	c := chat.NewConversation(blockingProcessor(started), store)
	assert.False(t, c.Cancel())

	done := make(chan assistant.Result, 1)
	go func() {
		res, _ := c.Send(context.Background(), "first", nil)
		done <- res
	}()
	<-started

	assert.True(t, c.Cancel())
	res := <-done
	assert.Equal(t, assistant.KindCancelled, res.Kind())
	assert.Equal(t, []string{"user:first"}, contents(snapshot()))
	assert.False(t, c.Busy())
}

func TestConversation_ToggleSpeech(t *testing.T) {
	t.Parallel()

	t.Run("disabling stops playback", func(t *testing.T) {
		t.Parallel()
		stopped := 0
		speaker := &mock.Speaker{StopFn: func() { stopped++ }}
		c := chat.NewConversation(&mock.Processor{}, &mock.ConversationStore{}, chat.WithSpeaker(speaker))
		require.True(t, c.SpeechEnabled())

		assert.False(t, c.ToggleSpeech())
		assert.Equal(t, 1, stopped)
		assert.True(t, c.ToggleSpeech())
		assert.Equal(t, 1, stopped)
	})

	t.Run("without speaker", func(t *testing.T) {
		t.Parallel()
		c := chat.NewConversation(&mock.Processor{}, &mock.ConversationStore{})
		assert.False(t, c.SpeechEnabled())
		assert.False(t, c.ToggleSpeech())
		assert.False(t, c.Speaking())
	})
}

func TestConversation_ClearAndPersona(t *testing.T) {
	t.Parallel()

	store, snapshot := memStore()
	c := chat.NewConversation(replyWith(assistant.Result{Text: "hey"}), store)
	ctx := context.Background()

	require.NoError(t, c.SetPersona(ctx, assistant.PersonaVoice))
	_, err := c.Send(ctx, "hi", nil)
	require.NoError(t, err)
	msgs, err := c.Messages(ctx)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	require.NoError(t, c.Clear(ctx))
	assert.Empty(t, snapshot())
	id, err := c.ActivePersona(ctx)
	require.NoError(t, err)
	assert.Equal(t, assistant.PersonaVoice, id)
}

func TestConversation_Listen(t *testing.T) {
	t.Parallel()

	t.Run("returns transcript", func(t *testing.T) {
		t.Parallel()
		rec := &mock.Recognizer{RecognizeFn: func(context.Context) (string, error) { return "what time is it", nil }}
		c := chat.NewConversation(&mock.Processor{}, &mock.ConversationStore{}, chat.WithRecognizer(rec))

		text, err := c.Listen(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "what time is it", text)
	})

	t.Run("failure is recorded", func(t *testing.T) {
		t.Parallel()
		store, snapshot := memStore()
		rec := &mock.Recognizer{RecognizeFn: func(context.Context) (string, error) {
			return "", errors.New("Error occurred in recognition: audio-capture")
		}}
		c := chat.NewConversation(&mock.Processor{}, store, chat.WithRecognizer(rec))

		_, err := c.Listen(context.Background())

		require.Error(t, err)
		assert.Equal(t, []string{"assistant:Error: Error occurred in recognition: audio-capture"}, contents(snapshot()))
	})

	t.Run("cancel records nothing", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		rec := &mock.Recognizer{RecognizeFn: func(ctx context.Context) (string, error) {
			cancel()
			return "", ctx.Err()
		}}
		c := chat.NewConversation(&mock.Processor{}, &mock.ConversationStore{}, chat.WithRecognizer(rec))

		_, err := c.Listen(ctx)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unavailable", func(t *testing.T) {
		t.Parallel()
		c := chat.NewConversation(&mock.Processor{}, &mock.ConversationStore{})
		_, err := c.Listen(context.Background())
		assert.ErrorIs(t, err, chat.ErrVoiceUnavailable)
	})
}
