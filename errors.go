package assistant

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request, message or persona failed validation.
	ErrValidation = errors.New("validation error")

	// ErrAuthMissing indicates no API credential is configured.
	ErrAuthMissing = errors.New("auth missing")

	// ErrHTTPStatus indicates the provider rejected the request.
	ErrHTTPStatus = errors.New("http status")

	// ErrUnreadableBody indicates the response exposed no readable body.
	ErrUnreadableBody = errors.New("unreadable body")

	// ErrMalformedEvent indicates a single SSE event payload could not be decoded.
	ErrMalformedEvent = errors.New("malformed event")

	// ErrStreamAborted indicates the provider ended the stream with an error
	// event. Decoders return it to fail the whole aggregation.
	ErrStreamAborted = errors.New("stream aborted")

	// ErrTransportFault indicates a network failure while streaming.
	ErrTransportFault = errors.New("transport fault")

	// ErrCancelled indicates the caller cancelled the request.
	ErrCancelled = errors.New("cancelled")

	// ErrFirstByteTimeout indicates no body byte arrived within the first-byte timeout.
	ErrFirstByteTimeout = errors.New("first byte timeout")

	// ErrIdleTimeout indicates the gap between chunks exceeded the idle timeout.
	ErrIdleTimeout = errors.New("idle timeout")

	// ErrNoSpeech indicates voice recognition finished without a transcript.
	ErrNoSpeech = errors.New("no speech detected")
)

// ErrorKind classifies failures of the streaming pipeline.
type ErrorKind int

const (
	KindNone           ErrorKind = iota // Success.
	KindAuthMissing                     // No credential configured.
	KindHTTPStatus                      // Non-success HTTP status.
	KindUnreadableBody                  // Response had no body.
	KindMalformedEvent                  // Event payload failed to decode. Recovered locally.
	KindTransportFault                  // Network failure or timeout mid-stream.
	KindCancelled                       // Caller-initiated stop.
)

var kindNames = [...]string{
	KindNone:           "none",
	KindAuthMissing:    "auth_missing",
	KindHTTPStatus:     "http_status",
	KindUnreadableBody: "unreadable_body",
	KindMalformedEvent: "malformed_event",
	KindTransportFault: "transport_fault",
	KindCancelled:      "cancelled",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kindNames[k]
}

// sentinel returns the sentinel error matched by errors.Is for this kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindAuthMissing:
		return ErrAuthMissing
	case KindHTTPStatus:
		return ErrHTTPStatus
	case KindUnreadableBody:
		return ErrUnreadableBody
	case KindMalformedEvent:
		return ErrMalformedEvent
	case KindTransportFault:
		return ErrTransportFault
	case KindCancelled:
		return ErrCancelled
	}
	return nil
}

// Error is the structured error carried by a failed Result.
// StatusCode is set only for KindHTTPStatus.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// AuthMissingError returns the error reported when no credential is
// configured for provider. An empty provider yields a generic message.
func AuthMissingError(provider string) *Error {
	name := "API key"
	if provider != "" {
		name = provider + " API key"
	}
	return &Error{
		Kind:    KindAuthMissing,
		Message: name + " not found. Please check your environment variables.",
	}
}

// HTTPStatusError returns an error for a rejected request. An empty message
// falls back to the generic status text.
func HTTPStatusError(code int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("HTTP error! status: %d", code)
	}
	return &Error{Kind: KindHTTPStatus, StatusCode: code, Message: message}
}

// UnreadableBodyError returns the error reported when a response has no body.
func UnreadableBodyError() *Error {
	return &Error{Kind: KindUnreadableBody, Message: "Response body is not readable"}
}

// TransportFaultError wraps a network failure.
func TransportFaultError(err error) *Error {
	return &Error{Kind: KindTransportFault, Err: err}
}

// CancelledError wraps a cancellation cause.
func CancelledError(err error) *Error {
	return &Error{Kind: KindCancelled, Err: err}
}

// KindOf returns the ErrorKind of err. A nil error is KindNone. Errors that
// carry no *Error are cancellations when they wrap context.Canceled and
// transport faults otherwise.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	return KindTransportFault
}
