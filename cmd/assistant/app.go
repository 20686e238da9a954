package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	assistant "github.com/tahazafark/virtual-ai-assistant"
	"github.com/tahazafark/virtual-ai-assistant/anthropic"
	"github.com/tahazafark/virtual-ai-assistant/audio"
	bt "github.com/tahazafark/virtual-ai-assistant/bubbletea"
	"github.com/tahazafark/virtual-ai-assistant/chat"
	"github.com/tahazafark/virtual-ai-assistant/config"
	"github.com/tahazafark/virtual-ai-assistant/gemini"
	"github.com/tahazafark/virtual-ai-assistant/goldmark"
	assistanthttp "github.com/tahazafark/virtual-ai-assistant/http"
	assistantjson "github.com/tahazafark/virtual-ai-assistant/json"
	"github.com/tahazafark/virtual-ai-assistant/logger"
	"github.com/tahazafark/virtual-ai-assistant/lorem"
	"github.com/tahazafark/virtual-ai-assistant/openai"
	"github.com/tahazafark/virtual-ai-assistant/sqlite"
	"github.com/tahazafark/virtual-ai-assistant/stream"
	"github.com/tahazafark/virtual-ai-assistant/tracer"
	"github.com/tahazafark/virtual-ai-assistant/voice"
)

type options struct {
	configPath string
	provider   string
	model      string
	store      string
	mute       bool
}

func parseFlags(args []string) (options, error) {
	var o options
	set := flag.NewFlagSet("assistant", flag.ContinueOnError)
	set.StringVar(&o.configPath, "config", "", "Path to a YAML or TOML config file")
	set.StringVar(&o.provider, "provider", "", "Provider: deepseek, anthropic or lorem")
	set.StringVar(&o.model, "model", "", "Model ID")
	set.StringVar(&o.store, "store", "", "Conversation store: json or sqlite")
	set.BoolVar(&o.mute, "mute", false, "Start with spoken replies off")
	if err := set.Parse(args); err != nil {
		return options{}, err
	}
	if set.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", set.Args())
	}
	return o, nil
}

// loadConfig layers the config file, the environment and flags, then fills
// data-directory defaults and validates. Env is only read through lookup.
func loadConfig(o options, lookup config.LookupFunc) (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = filepath.Join(config.DataDir(), "config.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(lookup)

	if o.provider != "" {
		cfg.Provider.Name = o.provider
	}
	if o.model != "" {
		cfg.SetModel(o.model)
	}
	if o.store != "" {
		cfg.Store.Driver = o.store
	}
	if o.mute {
		cfg.Speech.Enabled = false
	}
	// The TUI owns the terminal.
	if cfg.Log.Output == "" {
		cfg.Log.Output = filepath.Join(config.DataDir(), "assistant.log")
	}
	if cfg.PersonasDir == "" {
		cfg.PersonasDir = filepath.Join(config.DataDir(), "personas")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app holds the wired components and the resources to release on exit.
type app struct {
	logger   *slog.Logger
	personas assistant.Personas
	conv     *chat.Conversation
	speaker  *voice.Speaker
	closers  []func() error
	shutdown func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{shutdown: func(context.Context) error { return nil }}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	log, closeLog, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a.logger = log
	a.closers = append(a.closers, closeLog)

	traceOut, err := traceWriter(cfg.Tracing)
	if err != nil {
		return nil, err
	}
	if c, ok := traceOut.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}
	shutdown, err := tracer.Setup(ctx, cfg.Tracing, traceOut)
	if err != nil {
		return nil, err
	}
	a.shutdown = shutdown

	overrides, err := config.LoadPersonas(cfg.PersonasDir)
	if err != nil {
		return nil, err
	}
	if a.personas, err = assistant.DefaultPersonas().Merge(overrides...); err != nil {
		return nil, fmt.Errorf("personas: %w", err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	prov := newProvider(cfg, log)
	svcOpts := []chat.Option{
		chat.WithPersonas(a.personas),
		chat.WithRateLimit(cfg.Limits.RequestsPerMinute, cfg.Limits.Burst),
		chat.WithBreaker(chat.BreakerSettings{
			MaxFailures: cfg.Limits.BreakerMaxFailures,
			Timeout:     cfg.Limits.BreakerTimeout,
			Interval:    cfg.Limits.BreakerInterval,
		}),
		chat.WithLogger(log),
	}
	if prov.offline {
		svcOpts = append(svcOpts, chat.WithoutCredentials())
	}
	svc := chat.NewService(prov.builder, prov.transport, stream.New(prov.decode, stream.WithLogger(log)), svcOpts...)

	convOpts := []chat.ConversationOption{chat.WithConversationLogger(log)}
	speaker, recognizer, err := newVoice(ctx, cfg.Speech, log)
	if err != nil {
		return nil, err
	}
	if speaker != nil {
		a.speaker = speaker
		convOpts = append(convOpts,
			chat.WithSpeaker(speaker),
			chat.WithRecognizer(recognizer),
			chat.WithSpeechEnabled(cfg.Speech.Enabled),
		)
	}
	a.conv = chat.NewConversation(svc, store, convOpts...)

	log.Info("assistant started",
		"provider", cfg.Provider.Name,
		"model", cfg.Model(),
		"store", cfg.Store.Driver,
		"speech", speaker != nil,
		"personas", len(a.personas.All()),
	)
	return a, nil
}

// Run shows the TUI until the user quits or ctx is cancelled.
func (a *app) Run(ctx context.Context) error {
	m := bt.New(a.conv, a.personas, assistant.DefaultTheme())
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

// Close stops in-flight work and releases resources in reverse order.
func (a *app) Close() error {
	if a.conv != nil {
		a.conv.Cancel()
	}
	if a.speaker != nil {
		a.speaker.Stop()
	}
	if a.conv != nil {
		a.conv.Wait()
	}

	var errs []error
	if err := a.shutdown(context.Background()); err != nil {
		errs = append(errs, err)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func traceWriter(cfg config.TracingConfig) (io.Writer, error) {
	if !cfg.Enabled || cfg.Exporter != "stdout" {
		return io.Discard, nil
	}
	path := filepath.Join(config.DataDir(), "traces.jsonl")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("trace output: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("trace output: %w", err)
	}
	return f, nil
}

func openStore(cfg *config.Config) (assistant.ConversationStore, func() error, error) {
	path := cfg.StorePath(config.DataDir())
	switch cfg.Store.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("store: %w", err)
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return assistantjson.NewStore(path), func() error { return nil }, nil
	}
}

// provider is the request builder, transport and delta decoder of one
// backend. An offline provider needs no credential.
type provider struct {
	builder   assistant.RequestBuilder
	transport assistant.Transport
	decode    assistant.DeltaDecoder
	offline   bool
}

func newProvider(cfg *config.Config, log *slog.Logger) provider {
	p := cfg.Provider
	httpTransport := assistanthttp.New(assistanthttp.WithLogger(log))
	if p.Name == "anthropic" {
		a := cfg.Anthropic
		return provider{
			builder: anthropic.New(a.APIKey,
				anthropic.WithBaseURL(a.BaseURL),
				anthropic.WithModel(a.Model),
				anthropic.WithTemperature(p.Temperature),
				anthropic.WithMaxTokens(p.MaxTokens),
				anthropic.WithTimeouts(p.FirstByteTimeout, p.IdleTimeout),
			),
			transport: httpTransport,
			decode:    anthropic.DecodeDelta,
		}
	}

	opts := []openai.Option{
		openai.WithModel(p.Model),
		openai.WithTemperature(p.Temperature),
		openai.WithMaxTokens(p.MaxTokens),
		openai.WithTimeouts(p.FirstByteTimeout, p.IdleTimeout),
	}
	if p.Name == "lorem" {
		return provider{builder: openai.New("", opts...), transport: lorem.New(), decode: openai.DecodeDelta, offline: true}
	}
	opts = append(opts, openai.WithBaseURL(p.BaseURL))
	return provider{builder: openai.New(p.APIKey, opts...), transport: httpTransport, decode: openai.DecodeDelta}
}

// newVoice wires speech output and voice input when a Gemini key is set.
// Without one both are nil.
func newVoice(ctx context.Context, cfg config.SpeechConfig, log *slog.Logger) (*voice.Speaker, *voice.Recognizer, error) {
	if cfg.APIKey == "" {
		log.Info("speech disabled: GEMINI_API_KEY not set")
		return nil, nil, nil
	}
	client, err := gemini.New(ctx, cfg.APIKey,
		gemini.WithSpeechModel(cfg.Model),
		gemini.WithTranscribeModel(cfg.TranscribeModel),
		gemini.WithVoice(cfg.Voice),
		gemini.WithProsody(cfg.SpeakingRate, cfg.Pitch),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("gemini: %w", err)
	}
	speaker := voice.NewSpeaker(client, audio.NewPlayer(cfg.PlayerCommand...),
		voice.WithFilter(goldmark.PlainText),
		voice.WithLogger(log),
	)
	recognizer := voice.NewRecognizer(audio.NewRecorder(cfg.RecorderCommand), client)
	return speaker, recognizer, nil
}
