package audio

import (
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

const (
	stderrLimit   = 4096
	summaryLines  = 3
	summaryMaxLen = 300
)

// limitedBuffer keeps at most max bytes and records whether more arrived.
type limitedBuffer struct {
	buf      []byte
	max      int
	overflow bool
}

// Write never fails so the command is not killed by a short write.
func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if room := b.max - len(b.buf); n > room {
		b.overflow = true
		p = p[:max(room, 0)]
	}
	b.buf = append(b.buf, p...)
	return n, nil
}

// tailBuffer keeps the last max bytes written. It is safe for concurrent use.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if len(b.buf) > b.max {
		b.buf = append([]byte(nil), b.buf[len(b.buf)-b.max:]...)
	}
	return len(p), nil
}

// Summary returns the last non-empty lines of output, sanitized and joined
// on one line.
func (b *tailBuffer) Summary() string {
	b.mu.Lock()
	raw := string(b.buf)
	b.mu.Unlock()

	var lines []string
	for _, l := range strings.Split(Sanitize(raw), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > summaryLines {
		lines = lines[len(lines)-summaryLines:]
	}
	s := strings.Join(lines, "; ")
	if len(s) > summaryMaxLen {
		s = "..." + s[len(s)-summaryMaxLen:]
	}
	return s
}

// Sanitize strips ANSI escape codes and control characters from command
// output. Tabs and newlines are kept; CRLF becomes LF and text after a lone
// CR overwrites the start of its line, as on a terminal.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' || r > 0x1F {
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		if strings.ContainsRune(line, '\r') {
			lines[i] = overwrite(line)
		}
	}
	return strings.Join(lines, "\n")
}

func overwrite(line string) string {
	segments := strings.Split(line, "\r")
	buf := []rune(segments[0])
	for _, seg := range segments[1:] {
		for j, r := range []rune(seg) {
			if j < len(buf) {
				buf[j] = r
			} else {
				buf = append(buf, r)
			}
		}
	}
	return string(buf)
}
