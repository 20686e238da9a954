package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahazafark/virtual-ai-assistant/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func env(vars map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefaults_Valid(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "deepseek-chat", cfg.Provider.Model)
	assert.InDelta(t, 0.7, cfg.Provider.Temperature, 1e-9)
	assert.Equal(t, 1000, cfg.Provider.MaxTokens)
	assert.Equal(t, "Kore", cfg.Speech.Voice)
	assert.Equal(t, "json", cfg.Store.Driver)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "assistant.yaml", `
provider:
  model: deepseek-reasoner
  idle_timeout: 45s
store:
  driver: sqlite
speech:
  enabled: false
  voice: Puck
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "deepseek-reasoner", cfg.Provider.Model)
		assert.Equal(t, 45*time.Second, cfg.Provider.IdleTimeout)
		assert.Equal(t, "sqlite", cfg.Store.Driver)
		assert.False(t, cfg.Speech.Enabled)
		assert.Equal(t, "Puck", cfg.Speech.Voice)
		// Untouched fields keep their defaults.
		assert.Equal(t, 1000, cfg.Provider.MaxTokens)
	})

	t.Run("toml", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "assistant.toml", `
personas_dir = "personas"

[provider]
name = "lorem"
temperature = 1.2

[log]
level = "debug"
format = "json"
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "lorem", cfg.Provider.Name)
		assert.InDelta(t, 1.2, cfg.Provider.Temperature, 1e-9)
		assert.Equal(t, "personas", cfg.PersonasDir)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("missing file yields defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.Defaults(), cfg)
	})

	t.Run("empty path yields defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, config.Defaults(), cfg)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "assistant.ini", "x=1")
		_, err := config.Load(path)
		assert.ErrorContains(t, err, "unsupported file extension")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "assistant.yml", "provider: [")
		_, err := config.Load(path)
		assert.ErrorContains(t, err, "config: parse")
	})

	t.Run("api key is never read from file", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "assistant.yaml", "provider:\n  api_key: sk-file\n")
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Empty(t, cfg.Provider.APIKey)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	t.Run("primary key wins", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		cfg.ApplyEnv(env(map[string]string{
			"DEEPSEEK_API_KEY":      "sk-primary",
			"VITE_DEEPSEEK_API_KEY": "sk-vite",
			"GEMINI_API_KEY":        "g-key",
		}))
		assert.Equal(t, "sk-primary", cfg.Provider.APIKey)
		assert.Equal(t, "g-key", cfg.Speech.APIKey)
	})

	t.Run("vite fallback", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		cfg.ApplyEnv(env(map[string]string{"VITE_DEEPSEEK_API_KEY": " sk-vite "}))
		assert.Equal(t, "sk-vite", cfg.Provider.APIKey)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		cfg.ApplyEnv(env(map[string]string{
			"ASSISTANT_PROVIDER":         "lorem",
			"ASSISTANT_STORE_DRIVER":     "sqlite",
			"ASSISTANT_LOG_LEVEL":        "debug",
			"ASSISTANT_SPEECH_ENABLED":   "false",
			"ASSISTANT_TRACING_EXPORTER": "stdout",
		}))
		assert.Equal(t, "lorem", cfg.Provider.Name)
		assert.Equal(t, "sqlite", cfg.Store.Driver)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.False(t, cfg.Speech.Enabled)
		assert.True(t, cfg.Tracing.Enabled)
		assert.Equal(t, "stdout", cfg.Tracing.Exporter)
	})

	t.Run("anthropic endpoint", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		cfg.ApplyEnv(env(map[string]string{
			"ASSISTANT_PROVIDER": "anthropic",
			"ANTHROPIC_API_KEY":  "ak",
			"ASSISTANT_MODEL":    "claude-test",
			"ASSISTANT_BASE_URL": "http://localhost:8080",
		}))
		assert.Equal(t, "ak", cfg.Anthropic.APIKey)
		assert.Equal(t, "claude-test", cfg.Anthropic.Model)
		assert.Equal(t, "claude-test", cfg.Model())
		assert.Equal(t, "http://localhost:8080", cfg.Anthropic.BaseURL)
		assert.Equal(t, "deepseek-chat", cfg.Provider.Model)
		assert.Equal(t, "https://api.deepseek.com", cfg.Provider.BaseURL)
	})

	t.Run("invalid bool is ignored", func(t *testing.T) {
		t.Parallel()
		cfg := config.Defaults()
		cfg.ApplyEnv(env(map[string]string{"ASSISTANT_SPEECH_ENABLED": "maybe"}))
		assert.True(t, cfg.Speech.Enabled)
	})
}

func TestValidate_AccumulatesErrors(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.Provider.Name = "bogus"
	cfg.Provider.MaxTokens = 0
	cfg.Store.Driver = "redis"
	cfg.Speech.Voice = ""

	err := cfg.Validate()
	var ve *config.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 4)
	assert.Contains(t, err.Error(), "provider.name")
	assert.Contains(t, err.Error(), "store.driver")
}

func TestValidate_BaseURL(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.Provider.BaseURL = "api.deepseek.com"
	err := cfg.Validate()
	assert.ErrorContains(t, err, "provider.base_url")

	cfg.Provider.Name = "lorem"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Anthropic(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.Provider.Name = "anthropic"
	require.NoError(t, cfg.Validate())

	cfg.Provider.Temperature = 1.5
	cfg.Anthropic.BaseURL = "not a url"
	cfg.Anthropic.Model = ""
	var ve *config.ValidationError
	require.ErrorAs(t, cfg.Validate(), &ve)
	assert.Len(t, ve.Errors, 3)
	assert.Contains(t, ve.Error(), "anthropic.base_url")
}

func TestStorePath(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	assert.Equal(t, filepath.Join("data", "conversation.json"), cfg.StorePath("data"))

	cfg.Store.Driver = "sqlite"
	assert.Equal(t, filepath.Join("data", "conversation.db"), cfg.StorePath("data"))

	cfg.Store.Path = "/tmp/chat.db"
	assert.Equal(t, "/tmp/chat.db", cfg.StorePath("data"))
}
