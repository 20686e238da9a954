// Package anthropic builds streaming requests for the Anthropic Messages API
// and decodes the text deltas of its event stream.
//
// The API sends typed events (message_start, content_block_delta,
// message_stop and so on). Only text deltas carry content; every other event
// decodes to an empty fragment.
package anthropic

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// Interface compliance check.
var _ assistant.RequestBuilder = (*Client)(nil)

const (
	// DefaultBaseURL is the Anthropic API root.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-20250514"

	apiVersion         = "2023-06-01"
	messagesPath       = "/v1/messages"
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// Client builds [assistant.StreamRequest] values for the Messages API.
type Client struct {
	apiKey           string
	baseURL          string
	model            string
	temperature      float64
	maxTokens        int
	firstByteTimeout time.Duration
	idleTimeout      time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModel sets the model ID. Empty keeps [DefaultModel].
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// WithMaxTokens sets the completion token limit.
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

// New creates a [Client]. An empty apiKey produces requests the transport
// rejects as missing credentials.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		model:       DefaultModel,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Stream      bool         `json:"stream"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildRequest returns a streaming request with the persona prompt as the
// top-level system field and userText as the single user message.
func (c *Client) BuildRequest(systemPrompt, userText string) (assistant.StreamRequest, error) {
	if c.temperature < 0 || c.temperature > 1 {
		return assistant.StreamRequest{}, fmt.Errorf("anthropic: temperature must be in [0, 1], got %g: %w", c.temperature, assistant.ErrValidation)
	}
	if c.maxTokens <= 0 {
		return assistant.StreamRequest{}, fmt.Errorf("anthropic: max_tokens must be positive, got %d: %w", c.maxTokens, assistant.ErrValidation)
	}

	body, err := json.Marshal(apiRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Stream:      true,
		System:      systemPrompt,
		Messages:    []apiMessage{{Role: "user", Content: userText}},
		Temperature: c.temperature,
	})
	if err != nil {
		return assistant.StreamRequest{}, fmt.Errorf("anthropic: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "text/event-stream")
	header.Set("Anthropic-Version", apiVersion)
	if c.apiKey != "" {
		header.Set("X-Api-Key", c.apiKey)
	}

	return assistant.StreamRequest{
		URL:              c.baseURL + messagesPath,
		Header:           header,
		Body:             body,
		Provider:         "Anthropic",
		FirstByteTimeout: c.firstByteTimeout,
		IdleTimeout:      c.idleTimeout,
	}, nil
}
