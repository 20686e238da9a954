package assistant

import (
	"context"
	"io"
)

// Transport opens a streaming HTTP call and exposes the raw response body.
// Open fails before yielding any byte with an *Error of kind
// KindAuthMissing, KindHTTPStatus, KindUnreadableBody, KindTransportFault or
// KindCancelled. Cancelling ctx aborts the call and unblocks pending reads.
type Transport interface {
	Open(ctx context.Context, req StreamRequest) (io.ReadCloser, error)
}

// DeltaDecoder extracts the content fragment from one SSE event payload.
// A decode error marks the event as malformed; the caller skips it.
type DeltaDecoder func(data string) (string, error)

// RequestBuilder turns a persona prompt and user text into a StreamRequest
// for a specific provider.
type RequestBuilder interface {
	BuildRequest(systemPrompt, userText string) (StreamRequest, error)
}

// Processor answers a single user message for a persona. It never returns
// a Go error: all failures are reported through Result.Err.
type Processor interface {
	ProcessMessage(ctx context.Context, userText string, persona PersonaID, onEvent func(Event)) Result
}
