package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	assistant "github.com/tahazafark/virtual-ai-assistant"
	"github.com/tahazafark/virtual-ai-assistant/config"
)

func TestLoadPersonas(t *testing.T) {
	t.Parallel()

	t.Run("reads nested yaml files in order", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "b/pirate.yml", "id: pirate\nname: Pirate\nsystem_prompt: Talk like a pirate.\n")
		writeFile(t, dir, "a.yaml", "id: general\nname: Terse\nsystem_prompt: Be terse.\n")
		writeFile(t, dir, "notes.txt", "ignored")

		got, err := config.LoadPersonas(dir)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, assistant.PersonaGeneral, got[0].ID)
		assert.Equal(t, "Be terse.", got[0].SystemPrompt)
		assert.Equal(t, assistant.PersonaID("pirate"), got[1].ID)

		merged, err := assistant.DefaultPersonas().Merge(got...)
		require.NoError(t, err)
		assert.Equal(t, "Be terse.", merged.Lookup(assistant.PersonaGeneral).SystemPrompt)
		assert.True(t, merged.Has("pirate"))
	})

	t.Run("missing dir", func(t *testing.T) {
		t.Parallel()
		got, err := config.LoadPersonas(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty dir setting", func(t *testing.T) {
		t.Parallel()
		got, err := config.LoadPersonas("")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalid persona", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, dir, "broken.yaml", "id: broken\nname: Broken\n")

		_, err := config.LoadPersonas(dir)
		assert.ErrorIs(t, err, assistant.ErrValidation)
	})
}
