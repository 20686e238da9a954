// Package stream assembles streamed delta events into a single Result.
package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	assistant "github.com/tahazafark/virtual-ai-assistant"
	"github.com/tahazafark/virtual-ai-assistant/sse"
)

// maxLoggedData bounds how much of a malformed payload is logged.
const maxLoggedData = 256

// Aggregator turns an event stream body into an [assistant.Result]. It holds
// no per-request state, so one Aggregator may serve concurrent pipelines.
type Aggregator struct {
	decode   assistant.DeltaDecoder
	logger   *slog.Logger
	readSize int
}

// Option configures an [Aggregator].
type Option func(*Aggregator)

// WithLogger sets the logger used for skipped events.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// WithReadSize sets the buffer size for each body read.
func WithReadSize(n int) Option {
	return func(a *Aggregator) { a.readSize = n }
}

// New creates an [Aggregator] that extracts fragments with decode.
func New(decode assistant.DeltaDecoder, opts ...Option) *Aggregator {
	a := &Aggregator{
		decode: decode,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Run opens req on t and consumes the response. Open failures are returned
// in the Result; the body is always closed.
func (a *Aggregator) Run(ctx context.Context, t assistant.Transport, req assistant.StreamRequest, onEvent func(assistant.Event)) assistant.Result {
	body, err := t.Open(ctx, req)
	if err != nil {
		return failed(ctx, err)
	}
	defer body.Close()
	return a.Consume(ctx, body, onEvent)
}

// Consume reads body to completion and returns the concatenated content.
// onEvent, when non-nil, receives every applied fragment and every skipped
// event before Consume returns; it is never called once ctx is done.
//
// Malformed events are skipped. A read failure, or a decoder error wrapping
// assistant.ErrStreamAborted, returns only the error; the partial text is
// discarded. Cancellation returns a KindCancelled error and
// no event read after cancellation is applied.
func (a *Aggregator) Consume(ctx context.Context, body io.Reader, onEvent func(assistant.Event)) assistant.Result {
	if onEvent == nil {
		onEvent = func(assistant.Event) {}
	}
	r := sse.NewReader(body, a.readSize)

	var buf strings.Builder
	events := 0
	for {
		evt, err := r.Next()
		if ctx.Err() != nil {
			a.logger.Debug("stream cancelled", "events", events, "discarded_bytes", buf.Len())
			return assistant.Result{Err: assistant.CancelledError(context.Cause(ctx))}
		}
		if errors.Is(err, io.EOF) {
			if r.Truncated() {
				a.logger.Debug("discarding incomplete trailing event")
			}
			return assistant.Result{Text: buf.String()}
		}
		if err != nil {
			a.logger.Warn("stream failed", "events", events, "discarded_bytes", buf.Len(), "error", err)
			return failed(ctx, err)
		}
		if evt.Kind != sse.KindMessage {
			continue
		}
		events++

		delta, err := a.decode(evt.Data)
		if errors.Is(err, assistant.ErrStreamAborted) {
			a.logger.Warn("stream aborted by provider", "events", events, "discarded_bytes", buf.Len(), "error", err)
			return assistant.Result{Err: assistant.TransportFaultError(err)}
		}
		if err != nil {
			a.logger.Warn("skipping malformed event", "error", err, "data", truncate(evt.Data))
			onEvent(assistant.EventMalformed{Data: evt.Data, Err: err})
			continue
		}
		if delta == "" {
			continue
		}
		buf.WriteString(delta)
		onEvent(assistant.EventTextDelta{Delta: delta})
	}
}

// failed converts any error into a Result error, keeping *assistant.Error
// values intact so their message reaches the caller.
func failed(ctx context.Context, err error) assistant.Result {
	if ctx.Err() != nil {
		return assistant.Result{Err: assistant.CancelledError(context.Cause(ctx))}
	}
	var aerr *assistant.Error
	if errors.As(err, &aerr) {
		return assistant.Result{Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return assistant.Result{Err: assistant.CancelledError(err)}
	}
	return assistant.Result{Err: assistant.TransportFaultError(err)}
}

func truncate(s string) string {
	if len(s) <= maxLoggedData {
		return s
	}
	return s[:maxLoggedData] + "..."
}
