package bubbletea_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	assistant "github.com/tahazafark/virtual-ai-assistant"
	bt "github.com/tahazafark/virtual-ai-assistant/bubbletea"
)

func TestNewStyles(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(assistant.DefaultTheme())

	assert.Equal(t, lipgloss.Color("4"), styles.UserMsg.GetForeground())
	assert.True(t, styles.UserMsg.GetBold())
	assert.Equal(t, lipgloss.Color("6"), styles.Persona.GetForeground())
	assert.Equal(t, lipgloss.Color("3"), styles.Speech.GetForeground())
	assert.Equal(t, lipgloss.Color("1"), styles.Error.GetForeground())
	assert.Equal(t, lipgloss.Color("2"), styles.Success.GetForeground())
	assert.Equal(t, lipgloss.Color("8"), styles.Muted.GetForeground())
	assert.True(t, styles.Muted.GetFaint())
	assert.Equal(t, lipgloss.Color("5"), styles.Accent.GetForeground())
}

func TestNewStyles_NegativeIndexIsNoColor(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(assistant.Theme{Error: -1})
	assert.Equal(t, lipgloss.NoColor{}, styles.Error.GetForeground())
}
