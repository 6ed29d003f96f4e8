package app

import (
	"fmt"
	"sync"
	"time"
)

// Timer counts an exam's time budget down against the wall clock.
//
// Remaining time is recomputed from the start instant on every tick, so a
// delayed or dropped tick never stretches the exam. onExpire runs at most once;
// after Stop (or expiry) the remaining value is frozen.
type Timer struct {
	total    int
	now      func() time.Time
	start    time.Time
	onTick   func(remaining int)
	onExpire func()

	mu        sync.Mutex
	remaining int
	stopped   bool
	done      chan struct{}
}

func NewTimer(totalSeconds int, now func() time.Time, onTick func(int), onExpire func()) *Timer {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	if onTick == nil {
		onTick = func(int) {}
	}
	if onExpire == nil {
		onExpire = func() {}
	}
	return &Timer{
		total:     totalSeconds,
		now:       now,
		start:     now(),
		onTick:    onTick,
		onExpire:  onExpire,
		remaining: totalSeconds,
		done:      make(chan struct{}),
	}
}

// Run consumes ticks until the timer expires, is stopped, or ticks is closed.
func (t *Timer) Run(ticks <-chan time.Time) {
	for {
		select {
		case <-t.done:
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			if t.advance() {
				return
			}
		}
	}
}

// advance recomputes the remaining time and reports whether the timer is finished.
func (t *Timer) advance() bool {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return true
	}
	remaining := t.total - int(t.now().Sub(t.start)/time.Second)
	if remaining < 0 {
		remaining = 0
	}
	changed := remaining != t.remaining
	t.remaining = remaining
	expired := remaining == 0
	if expired {
		t.stopLocked()
	}
	t.mu.Unlock()

	if expired {
		t.onExpire()
		return true
	}
	if changed {
		t.onTick(remaining)
	}
	return false
}

// Stop cancels the countdown. Safe to call repeatedly and from within callbacks.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.stopLocked()
	t.mu.Unlock()
}

func (t *Timer) stopLocked() {
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.done)
}

// Remaining returns the seconds left, never negative.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Stopped reports whether the timer expired or was cancelled.
func (t *Timer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// FormatClock renders seconds as zero-padded MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
