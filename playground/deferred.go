package playground

// Scheduler runs low-priority work once nothing more urgent is waiting.
type Scheduler interface {
	Defer(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

func (f SchedulerFunc) Defer(fn func()) { f(fn) }

// Immediate runs deferred work synchronously. Every Set settles at once.
var Immediate Scheduler = SchedulerFunc(func(fn func()) { fn() })

// Deferred holds a latest value and a settled copy that trails it.
//
// Set always updates the latest value. The settled value only advances when
// the scheduler gets around to the single settle queued for the current
// burst, so values overwritten in between are never observed downstream.
type Deferred[T comparable] struct {
	sched    Scheduler
	onSettle func(T)
	latest   T
	settled  T
	pending  bool
}

// NewDeferred starts with latest and settled both equal to initial.
// onSettle, if non-nil, runs each time the settled value changes.
func NewDeferred[T comparable](initial T, sched Scheduler, onSettle func(T)) *Deferred[T] {
	if sched == nil {
		sched = Immediate
	}
	return &Deferred[T]{
		sched:    sched,
		onSettle: onSettle,
		latest:   initial,
		settled:  initial,
	}
}

// Set records v as the latest value and queues a settle if none is queued.
func (d *Deferred[T]) Set(v T) {
	d.latest = v
	if d.pending {
		return
	}
	d.pending = true
	d.sched.Defer(d.Settle)
}

// Settle advances the settled value to the latest one.
func (d *Deferred[T]) Settle() {
	d.pending = false
	if d.settled == d.latest {
		return
	}
	d.settled = d.latest
	if d.onSettle != nil {
		d.onSettle(d.settled)
	}
}

func (d *Deferred[T]) Latest() T { return d.latest }

func (d *Deferred[T]) Settled() T { return d.settled }

// Pending reports whether a settle is queued.
func (d *Deferred[T]) Pending() bool { return d.pending }
