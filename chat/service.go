// Package chat answers user messages through a streaming provider and
// manages the conversation flow around it.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	assistant "github.com/tahazafark/virtual-ai-assistant"
	"github.com/tahazafark/virtual-ai-assistant/stream"
	"github.com/tahazafark/virtual-ai-assistant/tracer"
)

var _ assistant.Processor = (*Service)(nil)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32 = 5
	defaultBreakerTimeout            = 30 * time.Second
	defaultBreakerInterval           = 60 * time.Second
)

// BreakerSettings configures the circuit breaker around Transport.Open.
// Zero fields use defaults.
type BreakerSettings struct {
	MaxFailures uint32
	Timeout     time.Duration
	Interval    time.Duration
}

// Service implements assistant.Processor. It resolves the persona prompt,
// builds the provider request and aggregates the streamed reply.
type Service struct {
	personas  assistant.Personas
	builder   assistant.RequestBuilder
	transport assistant.Transport
	agg       *stream.Aggregator
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[io.ReadCloser]
	logger    *slog.Logger
	noAuth    bool
}

// Option configures a [Service].
type Option func(*serviceOptions)

type serviceOptions struct {
	personas assistant.Personas
	limiter  *rate.Limiter
	breaker  BreakerSettings
	logger   *slog.Logger
	noAuth   bool
}

// WithPersonas sets the persona registry. Defaults to DefaultPersonas.
func WithPersonas(p assistant.Personas) Option {
	return func(o *serviceOptions) { o.personas = p }
}

// WithRateLimit allows requestsPerMinute requests with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(requestsPerMinute, burst int) Option {
	return func(o *serviceOptions) {
		if requestsPerMinute <= 0 {
			o.limiter = nil
			return
		}
		o.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), max(burst, 1))
	}
}

// WithBreaker configures the circuit breaker.
func WithBreaker(s BreakerSettings) Option {
	return func(o *serviceOptions) { o.breaker = s }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

// WithoutCredentials skips the credential check, for transports that
// never reach a remote provider.
func WithoutCredentials() Option {
	return func(o *serviceOptions) { o.noAuth = true }
}

// NewService creates a [Service] that sends requests built by builder over
// transport and aggregates them with agg.
func NewService(builder assistant.RequestBuilder, transport assistant.Transport, agg *stream.Aggregator, opts ...Option) *Service {
	o := serviceOptions{
		personas: assistant.DefaultPersonas(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{
		personas:  o.personas,
		builder:   builder,
		transport: transport,
		agg:       agg,
		limiter:   o.limiter,
		logger:    o.logger,
		noAuth:    o.noAuth,
	}
	s.breaker = newBreaker(o.breaker, o.logger)
	return s
}

func newBreaker(cfg BreakerSettings, logger *slog.Logger) *gobreaker.CircuitBreaker[io.ReadCloser] {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultBreakerInterval
	}

	return gobreaker.NewCircuitBreaker[io.ReadCloser](gobreaker.Settings{
		Name:        "provider",
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: countsAsSuccess,
	})
}

// countsAsSuccess reports whether an Open error says nothing about the
// provider's health. Caller-side failures never trip the breaker.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var aerr *assistant.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Kind {
	case assistant.KindAuthMissing, assistant.KindCancelled:
		return true
	case assistant.KindHTTPStatus:
		return aerr.StatusCode < 500 && aerr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// BreakerState returns the circuit breaker state.
func (s *Service) BreakerState() gobreaker.State {
	return s.breaker.State()
}

// ProcessMessage answers userText with the persona's system prompt. Unknown
// personas fall back to the general persona. onEvent receives streamed
// fragments as they arrive.
func (s *Service) ProcessMessage(ctx context.Context, userText string, persona assistant.PersonaID, onEvent func(assistant.Event)) assistant.Result {
	p := s.personas.Lookup(persona)

	ctx, span := tracer.StartSpan(ctx, "chat.process_message",
		trace.WithAttributes(tracer.StringAttr("assistant.persona", string(p.ID))),
	)
	defer span.End()

	res := s.process(ctx, p, userText, onEvent)

	span.SetAttributes(
		tracer.StringAttr("assistant.result_kind", res.Kind().String()),
		tracer.IntAttr("assistant.text_len", len(res.Text)),
	)
	switch {
	case res.OK():
		tracer.SetOK(span)
		s.logger.Info("message processed", "persona", p.ID, "chars", len(res.Text))
	case res.Cancelled():
		s.logger.Debug("message cancelled", "persona", p.ID)
	default:
		tracer.RecordError(span, res.Err)
		s.logger.Warn("message failed", "persona", p.ID, "kind", res.Kind().String(), "error", res.Err)
	}
	return res
}

func (s *Service) process(ctx context.Context, p assistant.Persona, userText string, onEvent func(assistant.Event)) assistant.Result {
	req, err := s.builder.BuildRequest(p.SystemPrompt, userText)
	if err != nil {
		return assistant.Result{Err: assistant.TransportFaultError(fmt.Errorf("chat: build request: %w", err))}
	}
	return s.agg.Run(ctx, guarded{s}, req, onEvent)
}

// guarded applies the rate limiter and circuit breaker to Transport.Open.
// A request without a credential fails before either of them.
type guarded struct{ s *Service }

func (g guarded) Open(ctx context.Context, req assistant.StreamRequest) (io.ReadCloser, error) {
	if !g.s.noAuth && !assistant.HasCredential(req.Header) {
		return nil, assistant.AuthMissingError(req.Provider)
	}
	if g.s.limiter != nil {
		if err := g.s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, assistant.CancelledError(context.Cause(ctx))
			}
			return nil, assistant.TransportFaultError(fmt.Errorf("chat: rate limit: %w", err))
		}
	}
	body, err := g.s.breaker.Execute(func() (io.ReadCloser, error) {
		return g.s.transport.Open(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, assistant.TransportFaultError(fmt.Errorf("chat: provider circuit open: %w", err))
	}
	return body, err
}
