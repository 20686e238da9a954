package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahazafark/virtual-ai-assistant/config"
	assistanthttp "github.com/tahazafark/virtual-ai-assistant/http"
	"github.com/tahazafark/virtual-ai-assistant/lorem"
	"github.com/tahazafark/virtual-ai-assistant/sqlite"
)

func env(vars map[string]string) config.LookupFunc {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	o, err := parseFlags([]string{"-provider", "lorem", "-store", "sqlite", "-mute", "-model", "m"})
	require.NoError(t, err)
	assert.Equal(t, options{provider: "lorem", store: "sqlite", mute: true, model: "m"}, o)

	_, err = parseFlags([]string{"extra"})
	assert.ErrorContains(t, err, "unexpected arguments")

	_, err = parseFlags([]string{"-nope"})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "none.yaml")

	t.Run("flags override env", func(t *testing.T) {
		t.Parallel()
		cfg, err := loadConfig(options{configPath: missing, provider: "lorem", store: "sqlite", mute: true},
			env(map[string]string{"ASSISTANT_PROVIDER": "deepseek", "DEEPSEEK_API_KEY": "sk"}))
		require.NoError(t, err)
		assert.Equal(t, "lorem", cfg.Provider.Name)
		assert.Equal(t, "sqlite", cfg.Store.Driver)
		assert.False(t, cfg.Speech.Enabled)
		assert.Equal(t, "sk", cfg.Provider.APIKey)
	})

	t.Run("model flag targets the selected provider", func(t *testing.T) {
		t.Parallel()
		cfg, err := loadConfig(options{configPath: missing, provider: "anthropic", model: "claude-test"}, env(nil))
		require.NoError(t, err)
		assert.Equal(t, "claude-test", cfg.Anthropic.Model)
		assert.Equal(t, "deepseek-chat", cfg.Provider.Model)
	})

	t.Run("logs to a file by default", func(t *testing.T) {
		t.Parallel()
		cfg, err := loadConfig(options{configPath: missing}, env(nil))
		require.NoError(t, err)
		assert.Equal(t, "assistant.log", filepath.Base(cfg.Log.Output))
		assert.Equal(t, "personas", filepath.Base(cfg.PersonasDir))
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		_, err := loadConfig(options{configPath: missing, provider: "openrouter"}, env(nil))
		var ve *config.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, err.Error(), "provider.name")
	})
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	cfg := config.Defaults()
	cfg.Provider.APIKey = "sk-test"
	p := newProvider(cfg, log)
	req, err := p.builder.BuildRequest("be nice", "hi")
	require.NoError(t, err)
	assert.Equal(t, "https://api.deepseek.com/v1/chat/completions", req.URL)
	assert.IsType(t, &assistanthttp.Transport{}, p.transport)
	got, err := p.decode(`{"choices":[{"delta":{"content":"x"}}]}`)
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	cfg.Provider.Name = "anthropic"
	cfg.Anthropic.APIKey = "ak"
	p = newProvider(cfg, log)
	req, err = p.builder.BuildRequest("be nice", "hi")
	require.NoError(t, err)
	assert.Equal(t, "https://api.anthropic.com/v1/messages", req.URL)
	assert.Equal(t, "ak", req.Header.Get("X-Api-Key"))
	assert.IsType(t, &assistanthttp.Transport{}, p.transport)
	got, err = p.decode(`{"type":"content_block_delta","delta":{"type":"text_delta","text":"y"}}`)
	require.NoError(t, err)
	assert.Equal(t, "y", got)

	cfg.Provider.Name = "lorem"
	p = newProvider(cfg, log)
	assert.IsType(t, &lorem.Transport{}, p.transport)
	assert.True(t, p.offline)
}

func TestOpenStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		cfg.Store.Path = filepath.Join(t.TempDir(), "c.json")
		s, closeFn, err := openStore(cfg)
		require.NoError(t, err)
		defer closeFn()
		id, err := s.ActivePersona(ctx)
		require.NoError(t, err)
		assert.Equal(t, "general", string(id))
	})

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		cfg.Store.Driver = "sqlite"
		cfg.Store.Path = filepath.Join(t.TempDir(), "nested", "c.db")
		s, closeFn, err := openStore(cfg)
		require.NoError(t, err)
		assert.IsType(t, &sqlite.Store{}, s)
		assert.NoError(t, closeFn())
	})
}

func TestNewVoice_NoKey(t *testing.T) {
	t.Parallel()

	speaker, recognizer, err := newVoice(context.Background(), config.Defaults().Speech, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Nil(t, speaker)
	assert.Nil(t, recognizer)
}

func TestNewVoice_WithKey(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults().Speech
	cfg.APIKey = "gk-test"
	speaker, recognizer, err := newVoice(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.NotNil(t, speaker)
	assert.NotNil(t, recognizer)
	assert.False(t, speaker.Speaking())
}
