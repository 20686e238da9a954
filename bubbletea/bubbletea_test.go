package bubbletea_test

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	assistant "github.com/tahazafark/virtual-ai-assistant"
	bt "github.com/tahazafark/virtual-ai-assistant/bubbletea"
	"github.com/tahazafark/virtual-ai-assistant/chat"
	assistantjson "github.com/tahazafark/virtual-ai-assistant/json"
	"github.com/tahazafark/virtual-ai-assistant/mock"
)

var _ bt.Chat = (*chat.Conversation)(nil)

// newStore returns a file-backed store in a temporary directory.
func newStore(t *testing.T) *assistantjson.Store {
	t.Helper()
	return assistantjson.NewStore(filepath.Join(t.TempDir(), "conversation.json"))
}

// reply returns a processor that streams text as one delta.
func reply(text string) *mock.Processor {
	return &mock.Processor{
		ProcessMessageFn: func(_ context.Context, _ string, _ assistant.PersonaID, onEvent func(assistant.Event)) assistant.Result {
			onEvent(assistant.EventTextDelta{Delta: text})
			return assistant.Result{Text: text}
		},
	}
}

// initModel creates a model over a conversation and sends a WindowSizeMsg.
func initModel(t *testing.T, c bt.Chat) bt.Model {
	t.Helper()
	return initModelWithSize(t, c, 80, 24)
}

func initModelWithSize(t *testing.T, c bt.Chat, width, height int) bt.Model {
	t.Helper()
	m := bt.New(c, assistant.DefaultPersonas(), assistant.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateWithCmd sends a message and returns the updated Model and command.
func updateWithCmd(t *testing.T, m bt.Model, msg tea.Msg) (bt.Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model, cmd
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }
