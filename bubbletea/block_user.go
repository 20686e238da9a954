package bubbletea

import "github.com/charmbracelet/lipgloss"

var _ MessageBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders a user message with a "> " prefix.
type UserMessageBlock struct {
	text   string
	styles Styles
}

// NewUserMessageBlock creates a UserMessageBlock.
func NewUserMessageBlock(text string, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, styles: styles}
}

func (b *UserMessageBlock) View(width int) string {
	prompt := b.styles.UserMsg.Render("> ")
	body := lipgloss.NewStyle().Width(max(width-2, 1)).Render(b.text)
	return lipgloss.JoinHorizontal(lipgloss.Top, prompt, body)
}
