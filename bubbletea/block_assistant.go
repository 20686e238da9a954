package bubbletea

import (
	"strings"

	"github.com/tahazafark/virtual-ai-assistant/goldmark"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders a streamed reply as markdown. Text up to the
// last paragraph break outside a code fence is stable and rendered once per
// width; only the tail is re-rendered as deltas arrive.
type AssistantTextBlock struct {
	md  *goldmark.Renderer
	raw strings.Builder

	stable  string
	byWidth map[int]string
}

// NewAssistantTextBlock creates an empty block rendered with md.
func NewAssistantTextBlock(md *goldmark.Renderer) *AssistantTextBlock {
	return &AssistantTextBlock{md: md, byWidth: make(map[int]string)}
}

// Append adds a streamed fragment.
func (b *AssistantTextBlock) Append(text string) {
	b.raw.WriteString(text)
	b.advance()
}

// Text returns everything appended so far.
func (b *AssistantTextBlock) Text() string { return b.raw.String() }

func (b *AssistantTextBlock) View(width int) string {
	head := b.renderStable(width)

	tail := strings.TrimPrefix(b.raw.String(), b.stable)
	tail = strings.TrimLeft(tail, "\n")
	if openFence(tail) {
		tail += "\n```"
	}
	if strings.TrimSpace(tail) == "" {
		return head
	}
	rendered := b.md.Render(tail, width)
	if head == "" {
		return rendered
	}
	return strings.TrimRight(head, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// advance moves the stable boundary to the last "\n\n" whose prefix has no
// open code fence.
func (b *AssistantTextBlock) advance() {
	raw := b.raw.String()
	end := len(raw)
	for {
		i := strings.LastIndex(raw[:end], "\n\n")
		if i <= len(b.stable) {
			return
		}
		if prefix := raw[:i]; !openFence(prefix) {
			b.stable = prefix
			clear(b.byWidth)
			return
		}
		end = i
	}
}

func (b *AssistantTextBlock) renderStable(width int) string {
	if b.stable == "" {
		return ""
	}
	if s, ok := b.byWidth[width]; ok {
		return s
	}
	s := b.md.Render(b.stable, width)
	b.byWidth[width] = s
	return s
}

// openFence reports an odd number of ``` markers. Triple backticks inside
// inline code are miscounted.
func openFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
