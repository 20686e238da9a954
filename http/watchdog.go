package http

import (
	"context"
	"sync"
	"time"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// watchdog cancels a request when the first body byte does not arrive within
// firstByte, or when the gap between chunks exceeds idle. A zero duration
// disables the corresponding limit.
type watchdog struct {
	mu      sync.Mutex
	timer   *time.Timer
	idle    time.Duration
	cancel  context.CancelCauseFunc
	gotByte bool
	stopped bool
}

func newWatchdog(cancel context.CancelCauseFunc, firstByte, idle time.Duration) *watchdog {
	w := &watchdog{idle: idle, cancel: cancel}
	if firstByte > 0 {
		w.timer = time.AfterFunc(firstByte, w.expire)
	}
	return w
}

// kick records that data arrived and restarts the idle timer.
func (w *watchdog) kick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gotByte = true
	if w.stopped {
		return
	}
	switch {
	case w.idle <= 0:
		if w.timer != nil {
			w.timer.Stop()
		}
	case w.timer == nil:
		w.timer = time.AfterFunc(w.idle, w.expire)
	default:
		w.timer.Reset(w.idle)
	}
}

func (w *watchdog) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *watchdog) expire() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	cause := assistant.ErrIdleTimeout
	if !w.gotByte {
		cause = assistant.ErrFirstByteTimeout
	}
	w.mu.Unlock()
	w.cancel(cause)
}
