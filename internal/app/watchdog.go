package app

import (
	"sync"

	"timed-exam-service/internal/domain"
)

// ViolationWarning is shown to the candidate when leaving the exam page forces submission.
const ViolationWarning = "Security warning: leaving the exam page was detected. The exam has been submitted automatically."

// VisibilitySource delivers page visibility changes reported by the client.
type VisibilitySource interface {
	Subscribe(fn func(domain.Visibility)) (unsubscribe func())
}

// VisibilityHub fans visibility signals out to listeners. Each session owns one.
type VisibilityHub struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(domain.Visibility)
}

func NewVisibilityHub() *VisibilityHub {
	return &VisibilityHub{listeners: make(map[int]func(domain.Visibility))}
}

func (h *VisibilityHub) Subscribe(fn func(domain.Visibility)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Publish notifies current listeners. Listeners run without the hub lock held,
// so they may unsubscribe themselves.
func (h *VisibilityHub) Publish(v domain.Visibility) {
	h.mu.Lock()
	fns := make([]func(domain.Visibility), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Listeners returns the number of active subscriptions.
func (h *VisibilityHub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// Watchdog forces submission of a proctored session when its page is hidden.
type Watchdog struct {
	unsubscribe func()
}

// AttachWatchdog subscribes to source and calls onHidden for every hidden signal.
// onHidden is expected to go through the session's finish gate.
func AttachWatchdog(source VisibilitySource, onHidden func()) *Watchdog {
	w := &Watchdog{}
	w.unsubscribe = source.Subscribe(func(v domain.Visibility) {
		if v == domain.VisibilityHidden {
			onHidden()
		}
	})
	return w
}

// Release stops observing the visibility signal.
func (w *Watchdog) Release() {
	w.unsubscribe()
}
