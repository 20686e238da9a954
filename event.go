package assistant

// Event is a sealed interface representing a streaming event delivered to
// incremental renderers. Transport failures arrive in the Result, not as
// events. The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventTextDelta represents a content fragment appended to the result buffer.
type EventTextDelta struct {
	Delta string
}

func (EventTextDelta) event() {}

// EventMalformed reports an SSE event whose payload was skipped.
type EventMalformed struct {
	Data string
	Err  error
}

func (EventMalformed) event() {}

// Interface compliance checks.
var (
	_ Event = EventTextDelta{}
	_ Event = EventMalformed{}
)
