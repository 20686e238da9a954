package assistant

import (
	"net/http"
	"strings"
	"time"
)

// StreamRequest describes one streaming call. It is immutable once built:
// transports must not modify Header or Body.
type StreamRequest struct {
	URL    string
	Header http.Header
	Body   []byte

	// Provider names the backend in user-facing errors, e.g. "DeepSeek".
	Provider string

	// FirstByteTimeout bounds the time from request start to the first body
	// byte. Zero disables it.
	FirstByteTimeout time.Duration
	// IdleTimeout bounds the gap between successive chunks. Zero disables it.
	IdleTimeout time.Duration
}

// HasCredential reports whether h carries a non-empty API credential, either
// as an Authorization header or as X-Api-Key.
func HasCredential(h http.Header) bool {
	if strings.TrimSpace(h.Get("X-Api-Key")) != "" {
		return true
	}
	auth := strings.TrimSpace(h.Get("Authorization"))
	if auth == "" {
		return false
	}
	if token, ok := strings.CutPrefix(auth, "Bearer"); ok {
		return strings.TrimSpace(token) != ""
	}
	return true
}
