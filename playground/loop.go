package playground

import "sync"

// Loop is a cooperative event loop with two priorities.
//
// Urgent work (keystroke echo, rendering) is queued with Post; idle work
// with Defer. RunPending drains urgent work first and runs each idle task
// only when the urgent queue is empty. Tasks run on the caller's goroutine;
// Post and Defer may be called from anywhere.
type Loop struct {
	mu     sync.Mutex
	urgent []func()
	idle   []func()
}

func NewLoop() *Loop {
	return &Loop{}
}

// Post queues urgent work.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.urgent = append(l.urgent, fn)
	l.mu.Unlock()
}

// Defer queues idle work. It implements Scheduler.
func (l *Loop) Defer(fn func()) {
	l.mu.Lock()
	l.idle = append(l.idle, fn)
	l.mu.Unlock()
}

// RunPending runs one quantum: every urgent task, then the idle tasks that
// were queued when it started, draining urgent work again before each. Idle
// work queued while the quantum runs waits for the next one. It returns the
// number of tasks run.
func (l *Loop) RunPending() int {
	n := l.drainUrgent()

	l.mu.Lock()
	idle := l.idle
	l.idle = nil
	l.mu.Unlock()

	for _, fn := range idle {
		fn()
		n++
		n += l.drainUrgent()
	}
	return n
}

// Idle reports whether both queues are empty.
func (l *Loop) Idle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.urgent) == 0 && len(l.idle) == 0
}

func (l *Loop) drainUrgent() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.urgent) == 0 {
			l.mu.Unlock()
			return n
		}
		fn := l.urgent[0]
		l.urgent = l.urgent[1:]
		l.mu.Unlock()

		fn()
		n++
	}
}
