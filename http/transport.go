// Package http implements the streaming transport over net/http.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// Interface compliance check.
var _ assistant.Transport = (*Transport)(nil)

// maxErrorBody caps how much of a non-success response is read for its
// error message.
const maxErrorBody = 64 << 10

// Transport implements [assistant.Transport]. Each Open issues exactly one
// request; retries are left to the caller.
type Transport struct {
	client *http.Client
	logger *slog.Logger
}

// Option configures a [Transport].
type Option func(*Transport)

// WithHTTPClient sets a custom HTTP client. Useful for testing with httptest.
func WithHTTPClient(hc *http.Client) Option {
	return func(t *Transport) { t.client = hc }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// New creates a [Transport].
func New(opts ...Option) *Transport {
	t := &Transport{
		client: NewHTTPClient(30 * time.Second),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// NewHTTPClient returns a client with dial and TLS handshake limits but no
// overall timeout, since streamed responses may legitimately run long. Stream
// deadlines are enforced per request by the transport watchdog.
func NewHTTPClient(connTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

// Open sends req and returns the streaming response body. Reads from the body
// return *assistant.Error values of kind KindTransportFault or KindCancelled
// on failure; io.EOF marks the natural end of stream.
func (t *Transport) Open(ctx context.Context, req assistant.StreamRequest) (io.ReadCloser, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	if !assistant.HasCredential(req.Header) {
		return nil, assistant.AuthMissingError(req.Provider)
	}

	reqCtx, cancel := context.WithCancelCause(ctx)
	wd := newWatchdog(cancel, req.FirstByteTimeout, req.IdleTimeout)

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		wd.stop()
		cancel(nil)
		return nil, fmt.Errorf("http: %w", err)
	}
	httpReq.Header = req.Header.Clone()
	if httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		wd.stop()
		cancel(nil)
		return nil, classify(ctx, reqCtx, err)
	}
	t.logger.Debug("stream opened",
		"url", req.URL,
		"status", resp.StatusCode,
		"latency", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel(nil)
		defer wd.stop()
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		wd.stop()
		cancel(nil)
		return nil, assistant.UnreadableBodyError()
	}

	return &body{
		rc:     resp.Body,
		parent: ctx,
		ctx:    reqCtx,
		wd:     wd,
		cancel: cancel,
	}, nil
}

// parseHTTPError builds the error for a non-success response. The message is
// taken from an {"error":{"message":...}} body when present.
func parseHTTPError(resp *http.Response) *assistant.Error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return assistant.HTTPStatusError(resp.StatusCode, "")
	}
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &apiErr); err != nil {
		return assistant.HTTPStatusError(resp.StatusCode, "")
	}
	return assistant.HTTPStatusError(resp.StatusCode, apiErr.Error.Message)
}

// classify maps a request or read failure to the pipeline taxonomy. Caller
// cancellation wins over watchdog timeouts, which win over the raw error.
func classify(parent, reqCtx context.Context, err error) error {
	if parent.Err() != nil {
		return assistant.CancelledError(context.Cause(parent))
	}
	if cause := context.Cause(reqCtx); errors.Is(cause, assistant.ErrFirstByteTimeout) || errors.Is(cause, assistant.ErrIdleTimeout) {
		return assistant.TransportFaultError(cause)
	}
	return assistant.TransportFaultError(err)
}

// body wraps the response body so that reads feed the watchdog and failures
// are classified.
type body struct {
	rc     io.ReadCloser
	parent context.Context
	ctx    context.Context
	wd     *watchdog
	cancel context.CancelCauseFunc
	once   sync.Once
}

func (b *body) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if n > 0 {
		b.wd.kick()
	}
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		b.wd.stop()
		return n, io.EOF
	default:
		return n, classify(b.parent, b.ctx, err)
	}
}

func (b *body) Close() error {
	b.once.Do(func() {
		b.wd.stop()
		b.cancel(nil)
	})
	return b.rc.Close()
}
