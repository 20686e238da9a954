package bubbletea

import (
	"strings"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders a failure as "Error: <message>".
type ErrorBlock struct {
	msg    string
	styles Styles
}

// NewErrorBlock creates an ErrorBlock. A message that already carries the
// "Error: " prefix is shown as is.
func NewErrorBlock(msg string, styles Styles) *ErrorBlock {
	if !strings.HasPrefix(msg, errorPrefix) {
		msg = errorPrefix + msg
	}
	return &ErrorBlock{msg: msg, styles: styles}
}

const errorPrefix = "Error: "

func (b *ErrorBlock) View(width int) string {
	return b.styles.Error.Width(max(width, 1)).Render(b.msg)
}
