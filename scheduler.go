package backdrop

import (
	"context"
	"sync"
	"time"
)

// RefreshLoop stands in for the display's refresh scheduler. The host calls
// Pump once per refresh on its render goroutine; the registered frame
// callback runs there and nowhere else. Frames never overlap.
type RefreshLoop struct {
	mu     sync.Mutex
	frame  func()
	gen    uint64
	tasks  []func()
	frames uint64
}

func NewRefreshLoop() *RefreshLoop {
	return &RefreshLoop{}
}

// RequestFrames registers cb to run on every refresh, replacing any previous
// callback. The returned cancel is synchronous: once it returns, no new frame
// for cb will start. A frame already running is allowed to finish.
func (l *RefreshLoop) RequestFrames(cb func()) (cancel func()) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.frame = cb
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		if l.gen == gen {
			l.frame = nil
		}
		l.mu.Unlock()
	}
}

// Pending reports whether a frame callback is registered.
func (l *RefreshLoop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame != nil
}

// Defer queues fn to run on the render goroutine before the next frame. It is
// the way for other goroutines (input, resize) to reach the engine.
func (l *RefreshLoop) Defer(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
}

// Frames counts frames that ran.
func (l *RefreshLoop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Pump runs queued tasks and then one frame. It reports whether a frame ran.
func (l *RefreshLoop) Pump() bool {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}

	// Re-read after tasks: a task may have cancelled the frame.
	l.mu.Lock()
	cb := l.frame
	if cb != nil {
		l.frames++
	}
	l.mu.Unlock()
	if cb == nil {
		return false
	}
	cb()
	return true
}

// Run pumps at the given interval on the calling goroutine until ctx is done.
func (l *RefreshLoop) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second / 60
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Pump()
		}
	}
}
