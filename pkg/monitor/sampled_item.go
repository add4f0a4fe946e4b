package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iomon-project/iomon-go/pkg/log"
	"github.com/iomon-project/iomon-go/pkg/model"
	"github.com/iomon-project/iomon-go/pkg/tick"
)

// itemState is the lifecycle state of an item wrapper.
type itemState int32

const (
	stateIdle itemState = iota
	stateStarting
	stateRunning
	stateStopped
)

// String returns the state name.
func (s itemState) String() string {
	switch s {
	case stateIdle:
		return "IDLE"
	case stateStarting:
		return "STARTING"
	case stateRunning:
		return "RUNNING"
	case stateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// SampledItem drives one item with the polling strategy: an asynchronous
// initial read followed by periodic reads via the shared tick scheduler.
//
// A tick registration exists if and only if the item is Running.
type SampledItem struct {
	item   *Item
	target Target
	sched  *tick.Scheduler

	initial  SampleStrategy
	periodic SampleStrategy

	logger   log.Logger
	engineID string
	metrics  *Metrics
	ctx      context.Context

	// state transitions use compare-and-swap; mu additionally serializes
	// the register/cancel step against the Starting->Running transition,
	// closing the check-then-act window between an async initial read
	// and a concurrent shutdown.
	state atomic.Int32
	mu    sync.Mutex
	reg   *tick.Registration
}

// NewSampledItem creates a polling wrapper in the Idle state. Both read
// strategies default to DefaultSampler.
func NewSampledItem(item *Item, target Target, sched *tick.Scheduler) *SampledItem {
	return &SampledItem{
		item:     item,
		target:   target,
		sched:    sched,
		initial:  DefaultSampler,
		periodic: DefaultSampler,
		logger:   log.NoopLogger{},
		ctx:      context.Background(),
	}
}

// SetStrategies overrides the initial and periodic read strategies.
// A nil initial strategy falls back to the periodic one. Must be called
// before Startup.
func (s *SampledItem) SetStrategies(initial, periodic SampleStrategy) {
	if periodic != nil {
		s.periodic = periodic
	}
	if initial != nil {
		s.initial = initial
	} else {
		s.initial = s.periodic
	}
}

// SetLogger sets the event logger and engine instance ID.
func (s *SampledItem) SetLogger(logger log.Logger, engineID string) {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	s.logger = logger
	s.engineID = engineID
}

// SetMetrics sets the metrics sink (nil disables).
func (s *SampledItem) SetMetrics(m *Metrics) { s.metrics = m }

// SetContext sets the context sampling operations run under.
// Must be called before Startup.
func (s *SampledItem) SetContext(ctx context.Context) {
	if ctx != nil {
		s.ctx = ctx
	}
}

// Item returns the wrapped item.
func (s *SampledItem) Item() *Item { return s.item }

// Startup transitions Idle -> Starting and kicks off the asynchronous
// initial read. Calling Startup in any other state has no effect.
func (s *SampledItem) Startup() {
	if !s.state.CompareAndSwap(int32(stateIdle), int32(stateStarting)) {
		return
	}
	s.logState(stateIdle, stateStarting, "startup")
	go s.start()
}

// start performs the initial read and, if no shutdown intervened,
// registers the periodic tick.
func (s *SampledItem) start() {
	dv := s.sample(s.initial, log.SampleInitial)
	s.item.SetValue(dv)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CompareAndSwap(int32(stateStarting), int32(stateRunning)) {
		// Shutdown won the race; no registration is created.
		return
	}

	interval := s.item.Interval()
	reg, err := s.sched.Register(interval, s.tickFired)
	if err != nil {
		s.state.Store(int32(stateStopped))
		s.logError("tick registration", err)
		return
	}
	s.reg = reg
	s.logScheduler(&log.SchedulerEvent{Kind: log.SchedulerRegistered, Interval: interval})
	s.logState(stateStarting, stateRunning, "initial sample complete")
}

// tickFired is the periodic tick callback.
func (s *SampledItem) tickFired() {
	if itemState(s.state.Load()) != stateRunning {
		return
	}
	if !s.item.SamplingEnabled() {
		return
	}
	s.item.SetValue(s.sample(s.periodic, log.SamplePeriodic))
}

// sample runs one read strategy. A failed read is converted into a
// bad-status value; the failure never reaches the scheduler.
func (s *SampledItem) sample(strategy SampleStrategy, kind log.SampleKind) model.DataValue {
	start := time.Now()
	dv, err := strategy.Sample(s.ctx, s.target)
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.sampleError()
		s.logError("sample", err)
		dv = model.NewBadDataValue(model.BadInternalError)
	}

	s.metrics.sampleTaken(kind)
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		EngineID:  s.engineID,
		Category:  log.CategorySample,
		ItemID:    uint32(s.item.ID()),
		NodeID:    s.item.NodeID(),
		Strategy:  log.StrategyPoll,
		Sample: &log.SampleEvent{
			Kind:    kind,
			Status:  uint16(dv.Status),
			Elapsed: elapsed,
		},
	})
	return dv
}

// ModifyRate moves the periodic registration to a new interval. A failed
// move is logged and the previous cadence stays in effect. Calling
// ModifyRate on an item that is not running is a no-op.
func (s *SampledItem) ModifyRate(interval time.Duration) {
	old := s.item.Interval()
	s.item.SetInterval(interval)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reg == nil {
		return
	}
	if err := s.reg.Modify(interval); err != nil {
		s.logError("rate change", err)
		return
	}
	s.logScheduler(&log.SchedulerEvent{
		Kind:        log.SchedulerModified,
		Interval:    interval,
		OldInterval: old,
	})
}

// Shutdown cancels the tick registration (if any) and transitions to
// Stopped. Idempotent; does not wait for an in-flight sample.
func (s *SampledItem) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := itemState(s.state.Swap(int32(stateStopped)))
	if prev == stateStopped {
		return
	}
	if s.reg != nil {
		interval := s.item.Interval()
		s.reg.Cancel()
		s.reg = nil
		s.logScheduler(&log.SchedulerEvent{Kind: log.SchedulerCancelled, Interval: interval})
	}
	s.logState(prev, stateStopped, "shutdown")
}

// currentState returns the lifecycle state.
func (s *SampledItem) currentState() itemState {
	return itemState(s.state.Load())
}

// registered reports whether a tick registration currently exists.
func (s *SampledItem) registered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg != nil
}

func (s *SampledItem) logState(old, new itemState, reason string) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		EngineID:  s.engineID,
		Category:  log.CategoryState,
		ItemID:    uint32(s.item.ID()),
		NodeID:    s.item.NodeID(),
		Strategy:  log.StrategyPoll,
		StateChange: &log.StateChangeEvent{
			OldState: old.String(),
			NewState: new.String(),
			Reason:   reason,
		},
	})
}

func (s *SampledItem) logScheduler(ev *log.SchedulerEvent) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		EngineID:  s.engineID,
		Category:  log.CategoryScheduler,
		ItemID:    uint32(s.item.ID()),
		NodeID:    s.item.NodeID(),
		Strategy:  log.StrategyPoll,
		Scheduler: ev,
	})
}

func (s *SampledItem) logError(context string, err error) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		EngineID:  s.engineID,
		Category:  log.CategoryError,
		ItemID:    uint32(s.item.ID()),
		NodeID:    s.item.NodeID(),
		Strategy:  log.StrategyPoll,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: context,
		},
	})
}
