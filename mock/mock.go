// Package mock provides test doubles for assistant interfaces using function
// fields. Methods panic when their function field is nil unless documented
// otherwise, so missing setup fails loudly.
package mock

import (
	"context"
	"io"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// Interface compliance checks.
var (
	_ assistant.Transport         = (*Transport)(nil)
	_ assistant.RequestBuilder    = (*RequestBuilder)(nil)
	_ assistant.Processor         = (*Processor)(nil)
	_ assistant.ConversationStore = (*ConversationStore)(nil)
	_ io.ReadCloser               = (*Body)(nil)
)

// Transport is a test double for assistant.Transport.
type Transport struct {
	OpenFn func(ctx context.Context, req assistant.StreamRequest) (io.ReadCloser, error)
}

// Open delegates to OpenFn.
func (t *Transport) Open(ctx context.Context, req assistant.StreamRequest) (io.ReadCloser, error) {
	return t.OpenFn(ctx, req)
}

// Body is a test double for a streaming response body. CloseFn is nil-safe
// because callers always defer Close.
type Body struct {
	ReadFn  func(p []byte) (int, error)
	CloseFn func() error
}

// Read delegates to ReadFn.
func (b *Body) Read(p []byte) (int, error) {
	return b.ReadFn(p)
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (b *Body) Close() error {
	if b.CloseFn == nil {
		return nil
	}
	return b.CloseFn()
}

// RequestBuilder is a test double for assistant.RequestBuilder.
type RequestBuilder struct {
	BuildRequestFn func(systemPrompt, userText string) (assistant.StreamRequest, error)
}

// BuildRequest delegates to BuildRequestFn.
func (b *RequestBuilder) BuildRequest(systemPrompt, userText string) (assistant.StreamRequest, error) {
	return b.BuildRequestFn(systemPrompt, userText)
}

// Processor is a test double for assistant.Processor.
type Processor struct {
	ProcessMessageFn func(ctx context.Context, userText string, persona assistant.PersonaID, onEvent func(assistant.Event)) assistant.Result
}

// ProcessMessage delegates to ProcessMessageFn.
func (p *Processor) ProcessMessage(ctx context.Context, userText string, persona assistant.PersonaID, onEvent func(assistant.Event)) assistant.Result {
	return p.ProcessMessageFn(ctx, userText, persona, onEvent)
}
