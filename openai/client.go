// Package openai builds streaming chat-completion requests for
// OpenAI-compatible endpoints such as DeepSeek and decodes their delta events.
package openai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// Interface compliance check.
var _ assistant.RequestBuilder = (*Client)(nil)

const (
	// DefaultBaseURL is the DeepSeek API root.
	DefaultBaseURL = "https://api.deepseek.com"

	completionsPath    = "/v1/chat/completions"
	defaultModel       = "deepseek-chat"
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// Client builds [assistant.StreamRequest] values for the chat completions API.
type Client struct {
	apiKey           string
	baseURL          string
	model            string
	temperature      float64
	maxTokens        int
	firstByteTimeout time.Duration
	idleTimeout      time.Duration
	requestID        func() string
	provider         string
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModel sets the model ID. Empty omits the field from the request.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithTemperature sets the sampling temperature. Default is 0.7.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// WithMaxTokens sets the completion token limit. Default is 1000.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithTimeouts sets the first-byte and idle timeouts carried by each request.
func WithTimeouts(firstByte, idle time.Duration) Option {
	return func(c *Client) {
		c.firstByteTimeout = firstByte
		c.idleTimeout = idle
	}
}

// WithRequestID sets the generator for the X-Request-Id header.
func WithRequestID(fn func() string) Option {
	return func(c *Client) { c.requestID = fn }
}

// WithProviderName sets the backend name used in user-facing errors.
// Default is "DeepSeek".
func WithProviderName(name string) Option {
	return func(c *Client) { c.provider = name }
}

// New creates a [Client]. An empty apiKey produces requests without an
// Authorization header, which the transport rejects as missing credentials.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		model:       defaultModel,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		requestID:   uuid.NewString,
		provider:    "DeepSeek",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type apiRequest struct {
	Model       string       `json:"model,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Stream      bool         `json:"stream"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildRequest returns a streaming request with the persona prompt as the
// system message and userText as the single user message.
func (c *Client) BuildRequest(systemPrompt, userText string) (assistant.StreamRequest, error) {
	if c.temperature < 0 || c.temperature > 2 {
		return assistant.StreamRequest{}, fmt.Errorf("openai: temperature must be in [0, 2], got %g: %w", c.temperature, assistant.ErrValidation)
	}
	if c.maxTokens <= 0 {
		return assistant.StreamRequest{}, fmt.Errorf("openai: max_tokens must be positive, got %d: %w", c.maxTokens, assistant.ErrValidation)
	}

	body, err := json.Marshal(apiRequest{
		Model: c.model,
		Messages: []apiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userText},
		},
		Stream:      true,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return assistant.StreamRequest{}, fmt.Errorf("openai: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.requestID != nil {
		header.Set("X-Request-Id", c.requestID())
	}

	return assistant.StreamRequest{
		URL:              c.baseURL + completionsPath,
		Header:           header,
		Body:             body,
		Provider:         c.provider,
		FirstByteTimeout: c.firstByteTimeout,
		IdleTimeout:      c.idleTimeout,
	}, nil
}
