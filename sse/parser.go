package sse

import (
	"strconv"
	"strings"
	"time"
)

// Kind distinguishes the frames produced by the Parser.
type Kind int

const (
	KindMessage Kind = iota // A dispatched event carrying data.
	KindComment             // A line starting with ':'.
	KindRetry               // A valid retry directive.
)

// DefaultEventType is the type of events without an "event" field.
const DefaultEventType = "message"

// Event is one frame of an event stream.
type Event struct {
	Kind  Kind
	Type  string // event name, DefaultEventType when unset
	Data  string // data lines joined with "\n"
	ID    string // last event ID seen so far
	Retry time.Duration
}

// Parser is an incremental event stream framer following the WHATWG
// EventSource rules. Text may be fed in arbitrary pieces; a line or event
// split across calls is completed by later calls.
type Parser struct {
	line      strings.Builder
	skipLF    bool // previous piece ended in CR
	data      strings.Builder
	hasData   bool
	eventType string
	lastID    string
}

// Feed consumes text and returns the frames it completes, in order.
func (p *Parser) Feed(text string) []Event {
	var out []Event
	for len(text) > 0 {
		if p.skipLF {
			p.skipLF = false
			if text[0] == '\n' {
				text = text[1:]
				continue
			}
		}
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			p.line.WriteString(text)
			break
		}
		p.line.WriteString(text[:i])
		p.skipLF = text[i] == '\r'
		text = text[i+1:]

		line := p.line.String()
		p.line.Reset()
		if evt, ok := p.processLine(line); ok {
			out = append(out, evt)
		}
	}
	return out
}

// Pending reports whether an incomplete line or undispatched event is
// buffered. At end of stream such data is discarded.
func (p *Parser) Pending() bool {
	return p.line.Len() > 0 || p.hasData
}

// Reset discards buffered state but keeps the last event ID.
func (p *Parser) Reset() {
	p.line.Reset()
	p.skipLF = false
	p.resetEvent()
}

func (p *Parser) processLine(line string) (Event, bool) {
	if line == "" {
		return p.dispatch()
	}
	if comment, ok := strings.CutPrefix(line, ":"); ok {
		return Event{Kind: KindComment, Data: strings.TrimPrefix(comment, " ")}, true
	}

	field, value, found := strings.Cut(line, ":")
	if found {
		value = strings.TrimPrefix(value, " ")
	}

	switch field {
	case "event":
		p.eventType = value
	case "data":
		p.data.WriteString(value)
		p.data.WriteByte('\n')
		p.hasData = true
	case "id":
		if !strings.ContainsRune(value, 0) {
			p.lastID = value
		}
	case "retry":
		if ms, ok := parseRetry(value); ok {
			return Event{Kind: KindRetry, Retry: ms}, true
		}
	}
	return Event{}, false
}

func (p *Parser) dispatch() (Event, bool) {
	if !p.hasData {
		p.resetEvent()
		return Event{}, false
	}
	evt := Event{
		Kind: KindMessage,
		Type: p.eventType,
		Data: strings.TrimSuffix(p.data.String(), "\n"),
		ID:   p.lastID,
	}
	if evt.Type == "" {
		evt.Type = DefaultEventType
	}
	p.resetEvent()
	return evt, true
}

func (p *Parser) resetEvent() {
	p.data.Reset()
	p.hasData = false
	p.eventType = ""
}

func parseRetry(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}
