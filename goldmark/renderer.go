package goldmark

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

type styles struct {
	bold, italic, strike, link lipgloss.Style
	heading, muted, code       lipgloss.Style
	quote, gutter              lipgloss.Style
}

func newStyles(theme assistant.Theme) styles {
	return styles{
		bold:    lipgloss.NewStyle().Bold(true),
		italic:  lipgloss.NewStyle().Italic(true),
		strike:  lipgloss.NewStyle().Strikethrough(true),
		link:    lipgloss.NewStyle().Underline(true).Foreground(color(theme.Accent)),
		heading: lipgloss.NewStyle().Bold(true).Foreground(color(theme.Accent)),
		muted:   lipgloss.NewStyle().Faint(true).Foreground(color(theme.Muted)),
		code:    lipgloss.NewStyle().Background(color(theme.CodeBg)),
		quote:   lipgloss.NewStyle().Italic(true),
		gutter:  lipgloss.NewStyle().Foreground(color(theme.Persona)),
	}
}

func color(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// writer accumulates rendered blocks separated by single blank lines.
type writer struct {
	st     *styles
	source []byte
	out    bytes.Buffer
}

func (r *Renderer) render(source []byte, width int) string {
	doc := r.parser.Parse(text.NewReader(source))
	w := &writer{st: &r.styles, source: source}
	w.blocks(doc, width)
	return strings.TrimRight(w.out.String(), "\n")
}

func (w *writer) blocks(parent ast.Node, width int) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n, width)
		if n.NextSibling() != nil && !isHTML(n) {
			w.out.WriteByte('\n')
		}
	}
}

func isHTML(n ast.Node) bool {
	_, ok := n.(*ast.HTMLBlock)
	return ok
}

func (w *writer) block(n ast.Node, width int) {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		w.line(wrap(w.inline(n), width))

	case *ast.Heading:
		w.line(wrap(w.st.heading.Render(w.inline(n)), width))

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(w.source)); lang != "" {
			w.line(w.st.muted.Render(lang))
		}
		w.code(n)

	case *ast.CodeBlock:
		w.code(n)

	case *ast.Blockquote:
		inner := &writer{st: w.st, source: w.source}
		inner.blocks(n, max(width-2, 10))
		bar := w.st.gutter.Render("▎") + " "
		for _, l := range strings.Split(strings.TrimRight(inner.out.String(), "\n"), "\n") {
			w.line(bar + w.st.quote.Render(l))
		}

	case *ast.List:
		w.list(n, width, 0)

	case *ast.ThematicBreak:
		w.line(w.st.muted.Render(strings.Repeat("─", min(width, 40))))

	case *ast.HTMLBlock:
		for i := 0; i < n.Lines().Len(); i++ {
			seg := n.Lines().At(i)
			w.out.Write(seg.Value(w.source))
		}

	default:
		w.blocks(n, width)
	}
}

func (w *writer) line(s string) {
	w.out.WriteString(s)
	w.out.WriteByte('\n')
}

func (w *writer) code(n ast.Node) {
	bar := w.st.muted.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		w.line(bar + w.st.code.Render(strings.TrimRight(string(seg.Value(w.source)), "\n")))
	}
}

func (w *writer) list(l *ast.List, width, depth int) {
	indent := strings.Repeat("  ", depth)
	num := l.Start
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}

		var pending strings.Builder
		flush := func() {
			if pending.Len() == 0 {
				return
			}
			w.item(indent+marker, pending.String(), width)
			pending.Reset()
			marker = strings.Repeat(" ", len(marker))
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch ic := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if pending.Len() > 0 {
					pending.WriteByte(' ')
				}
				pending.WriteString(w.inline(ic))
			case *ast.List:
				flush()
				w.list(ic, width, depth+1)
			default:
				flush()
				w.block(ic, width)
			}
		}
		flush()
	}
}

// item writes a list entry, indenting continuation lines under the text.
func (w *writer) item(prefix, content string, width int) {
	pad := strings.Repeat(" ", len(prefix))
	for i, l := range strings.Split(wrap(content, max(width-len(prefix), 10)), "\n") {
		if i == 0 {
			w.line(prefix + l)
			continue
		}
		w.line(pad + l)
	}
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func (w *writer) inline(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.span(c, &b)
	}
	return b.String()
}

func (w *writer) span(n ast.Node, b *strings.Builder) {
	switch n := n.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(w.source))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}
	case *ast.String:
		b.Write(n.Value)
	case *ast.Emphasis:
		if n.Level == 1 {
			b.WriteString(w.st.italic.Render(w.inline(n)))
		} else {
			b.WriteString(w.st.bold.Render(w.inline(n)))
		}
	case *east.Strikethrough:
		b.WriteString(w.st.strike.Render(w.inline(n)))
	case *east.TaskCheckBox:
		if n.IsChecked {
			b.WriteString("[x] ")
		} else {
			b.WriteString("[ ] ")
		}
	case *ast.CodeSpan:
		b.WriteString(w.st.code.Render(w.inline(n)))
	case *ast.Link:
		b.WriteString(w.st.link.Render(w.inline(n)))
		b.WriteString(" " + w.st.muted.Render("("+string(n.Destination)+")"))
	case *ast.AutoLink:
		b.WriteString(w.st.link.Render(string(n.URL(w.source))))
	case *ast.Image:
		b.WriteString(w.st.muted.Render("[image: " + w.inline(n) + "] " + string(n.Destination)))
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(w.source))
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			w.span(c, b)
		}
	}
}
