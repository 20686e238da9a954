// Package goldmark renders assistant replies written in markdown, either as
// ANSI-styled terminal text or as plain text suitable for speech.
package goldmark

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

const defaultWidth = 80

func newParser() parser.Parser {
	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.TaskList, extension.Linkify))
	return md.Parser()
}

// Renderer renders markdown with a fixed theme. It is safe for concurrent
// use.
type Renderer struct {
	styles styles
	parser parser.Parser
}

// New creates a [Renderer] for theme.
func New(theme assistant.Theme) *Renderer {
	return &Renderer{styles: newStyles(theme), parser: newParser()}
}

// Render returns ANSI-styled output for source. Paragraphs, quotes and list
// items wrap to width; code blocks are not reflowed. A width of zero or
// less means 80 columns.
func (r *Renderer) Render(source string, width int) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return r.render([]byte(source), width)
}

// Render is a convenience wrapper around New(theme).Render.
func Render(source string, width int, theme assistant.Theme) string {
	return New(theme).Render(source, width)
}
