package tick

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler errors.
var (
	ErrInvalidInterval = errors.New("invalid tick interval")
	ErrNilCallback     = errors.New("nil tick callback")
	ErrSchedulerClosed = errors.New("scheduler is closed")
	ErrCancelled       = errors.New("registration is cancelled")
)

// Callback is invoked on each delivered tick. It runs on its own
// goroutine; long-running work only delays this registration's next tick,
// never the bucket's.
type Callback func()

// Stats is a snapshot of scheduler counters.
type Stats struct {
	// Buckets is the number of live interval buckets.
	Buckets int

	// Registrations is the number of live registrations.
	Registrations int

	// Fired is the total number of delivered ticks.
	Fired uint64

	// Dropped is the total number of ticks dropped because the previous
	// invocation for the registration was still in flight.
	Dropped uint64
}

// Scheduler multiplexes periodic callbacks onto one timer per distinct
// interval.
type Scheduler struct {
	mu      sync.Mutex
	buckets map[time.Duration]*bucket
	closed  bool

	// onDrop is invoked (outside the lock) for every dropped tick.
	onDrop func(interval time.Duration)

	fired   atomic.Uint64
	dropped atomic.Uint64
}

// bucket groups all registrations sharing one interval behind one ticker.
type bucket struct {
	interval time.Duration
	regs     map[*Registration]struct{}
	ticker   *time.Ticker
	done     chan struct{}
}

// Registration is a handle for one periodic callback.
type Registration struct {
	sched *Scheduler
	fn    Callback

	// interval and cancelled are guarded by sched.mu.
	interval  time.Duration
	cancelled bool

	// inFlight enforces the at-most-one-invocation policy.
	inFlight atomic.Bool
}

// NewScheduler creates an empty scheduler. Buckets are created lazily on
// first registration at an interval.
func NewScheduler() *Scheduler {
	return &Scheduler{
		buckets: make(map[time.Duration]*bucket),
	}
}

// SetDropHandler installs a callback invoked once per dropped tick with
// the bucket interval. Used for metrics; pass nil to remove.
func (s *Scheduler) SetDropHandler(fn func(interval time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDrop = fn
}

// Register adds a callback fired every interval. The bucket for the
// interval is created on first use.
func (s *Scheduler) Register(interval time.Duration, fn Callback) (*Registration, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if fn == nil {
		return nil, ErrNilCallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSchedulerClosed
	}

	r := &Registration{sched: s, fn: fn, interval: interval}
	s.bucketLocked(interval).regs[r] = struct{}{}
	return r, nil
}

// Close tears down all buckets and cancels all registrations. The
// scheduler accepts no registrations afterwards. In-flight callbacks are
// not waited for.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for interval, b := range s.buckets {
		for r := range b.regs {
			r.cancelled = true
		}
		b.ticker.Stop()
		close(b.done)
		delete(s.buckets, interval)
	}
}

// Stats returns a snapshot of the scheduler counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Buckets: len(s.buckets),
		Fired:   s.fired.Load(),
		Dropped: s.dropped.Load(),
	}
	for _, b := range s.buckets {
		st.Registrations += len(b.regs)
	}
	return st
}

// bucketLocked returns the bucket for interval, creating it (and its
// ticker goroutine) if absent. Caller holds s.mu.
func (s *Scheduler) bucketLocked(interval time.Duration) *bucket {
	if b, ok := s.buckets[interval]; ok {
		return b
	}

	b := &bucket{
		interval: interval,
		regs:     make(map[*Registration]struct{}),
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
	}
	s.buckets[interval] = b
	go s.run(b)
	return b
}

// removeLocked takes r out of its bucket and tears the bucket down if it
// became empty. Caller holds s.mu.
func (s *Scheduler) removeLocked(r *Registration) {
	b, ok := s.buckets[r.interval]
	if !ok {
		return
	}
	delete(b.regs, r)
	if len(b.regs) == 0 {
		b.ticker.Stop()
		close(b.done)
		delete(s.buckets, b.interval)
	}
}

// run is the bucket's timer goroutine. It exits when the bucket is torn
// down.
func (s *Scheduler) run(b *bucket) {
	for {
		select {
		case <-b.done:
			return
		case <-b.ticker.C:
			s.fire(b)
		}
	}
}

// fire dispatches one tick to every registration in the bucket.
func (s *Scheduler) fire(b *bucket) {
	s.mu.Lock()
	regs := make([]*Registration, 0, len(b.regs))
	for r := range b.regs {
		regs = append(regs, r)
	}
	onDrop := s.onDrop
	s.mu.Unlock()

	for _, r := range regs {
		// Drop, don't queue: the previous invocation is still running.
		if !r.inFlight.CompareAndSwap(false, true) {
			s.dropped.Add(1)
			if onDrop != nil {
				onDrop(b.interval)
			}
			continue
		}

		s.fired.Add(1)
		go func(r *Registration) {
			defer r.inFlight.Store(false)
			r.fn()
		}(r)
	}
}

// Interval returns the registration's current period.
func (r *Registration) Interval() time.Duration {
	r.sched.mu.Lock()
	defer r.sched.mu.Unlock()
	return r.interval
}

// Modify moves the registration to the bucket for newInterval, creating
// it if absent and tearing down the old bucket if it became empty. A tick
// already dispatched on the old period completes normally.
func (r *Registration) Modify(newInterval time.Duration) error {
	if newInterval <= 0 {
		return ErrInvalidInterval
	}

	s := r.sched
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.cancelled {
		return ErrCancelled
	}
	if newInterval == r.interval {
		return nil
	}

	s.removeLocked(r)
	r.interval = newInterval
	s.bucketLocked(newInterval).regs[r] = struct{}{}
	return nil
}

// Cancel removes the registration from its bucket, tearing the bucket
// down if it became empty. Cancel is idempotent; it does not wait for an
// in-flight callback.
func (r *Registration) Cancel() {
	s := r.sched
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.cancelled {
		return
	}
	r.cancelled = true
	s.removeLocked(r)
}
