package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iomon-project/iomon-go/pkg/log"
	"github.com/iomon-project/iomon-go/pkg/tick"
)

// ErrNoResolver is returned by NewEngine when no target resolver is set.
var ErrNoResolver = errors.New("no target resolver configured")

// DefaultPushPrefix is the reserved node-identifier prefix that routes an
// item to the push strategy.
const DefaultPushPrefix = "push."

// Config carries engine construction parameters. Resolver is required;
// everything else has a working default.
type Config struct {
	// Resolver maps node identifiers to targets.
	Resolver TargetResolver

	// PushPrefix routes matching node identifiers to the push strategy.
	// Empty selects DefaultPushPrefix.
	PushPrefix string

	// Logger receives acquisition events. Nil disables event logging.
	Logger log.Logger

	// Metrics receives engine instrumentation. Nil disables it.
	Metrics *Metrics
}

// Engine routes monitored items to a delivery strategy and manages their
// lifecycle. The hosting namespace drives it through the ItemsCreated /
// ItemsModified / ItemsDeleted / MonitoringModeChanged callbacks.
type Engine struct {
	id       string
	resolver TargetResolver
	prefix   string
	logger   log.Logger
	metrics  *Metrics
	sched    *tick.Scheduler

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	sampled map[ItemID]*SampledItem
	pushed  map[ItemID]*SubscribedItem
}

// NewEngine creates an engine with its own tick scheduler. The engine is
// usable immediately; Startup only anchors the sampling context.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Resolver == nil {
		return nil, ErrNoResolver
	}
	if cfg.PushPrefix == "" {
		cfg.PushPrefix = DefaultPushPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}

	e := &Engine{
		id:       uuid.New().String(),
		resolver: cfg.Resolver,
		prefix:   cfg.PushPrefix,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		sched:    tick.NewScheduler(),
		sampled:  make(map[ItemID]*SampledItem),
		pushed:   make(map[ItemID]*SubscribedItem),
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())

	e.sched.SetDropHandler(func(interval time.Duration) {
		e.metrics.tickDropped()
		e.logger.Log(log.Event{
			Timestamp: time.Now(),
			EngineID:  e.id,
			Category:  log.CategoryScheduler,
			Strategy:  log.StrategyPoll,
			Scheduler: &log.SchedulerEvent{
				Kind:     log.SchedulerTickDropped,
				Interval: interval,
			},
		})
	})
	return e, nil
}

// ID returns the engine instance identifier.
func (e *Engine) ID() string { return e.id }

// Scheduler returns the engine's tick scheduler.
func (e *Engine) Scheduler() *tick.Scheduler { return e.sched }

// UsesPush reports whether nodeID routes to the push strategy. The
// decision is made once at item creation and stored with the wrapper;
// this predicate exists for the pre-commit revision hook.
func (e *Engine) UsesPush(nodeID string) bool {
	return strings.HasPrefix(nodeID, e.prefix)
}

// ReviseParameters is the pre-commit hook for a creation request. Push
// items have no cadence or queue: their interval is revised to 0 and
// their queue size to 1. Polling requests pass through unchanged.
func (e *Engine) ReviseParameters(nodeID string, interval time.Duration, queueSize uint32) (time.Duration, uint32) {
	if e.UsesPush(nodeID) {
		return 0, 1
	}
	return interval, queueSize
}

// ItemsCreated wires freshly committed items. Items whose node identifier
// does not resolve are silently not wired; the namespace already rejected
// unknown identifiers upstream, so an unresolved target here only means
// the node vanished in between.
func (e *Engine) ItemsCreated(items []*Item) {
	for _, it := range items {
		e.createItem(it)
	}
	e.updateBucketGauge()
}

func (e *Engine) createItem(it *Item) {
	target, ok := e.resolver.Resolve(it.NodeID())
	if !ok {
		return
	}

	if e.UsesPush(it.NodeID()) {
		if obs, ok := target.(ObservableTarget); ok {
			e.wirePush(it, obs)
			return
		}
		// Push-routed but the target cannot notify; poll it instead.
	}
	e.wirePoll(it, target)
}

func (e *Engine) wirePoll(it *Item, target Target) {
	s := NewSampledItem(it, target, e.sched)
	s.SetLogger(e.logger, e.id)
	s.SetMetrics(e.metrics)
	s.SetContext(e.ctx)

	e.mu.Lock()
	e.sampled[it.ID()] = s
	e.mu.Unlock()

	s.Startup()
	e.metrics.itemStarted(log.StrategyPoll)
}

func (e *Engine) wirePush(it *Item, target ObservableTarget) {
	s := NewSubscribedItem(it, target)
	s.SetLogger(e.logger, e.id)
	s.SetMetrics(e.metrics)

	e.mu.Lock()
	e.pushed[it.ID()] = s
	e.mu.Unlock()

	s.Startup()
	e.metrics.itemStarted(log.StrategyPush)
}

// ItemsModified forwards interval changes to the matching polling
// wrappers. Push items have no cadence; a modification for one only
// updates its recorded parameters.
func (e *Engine) ItemsModified(items []*Item) {
	for _, it := range items {
		e.mu.Lock()
		s := e.sampled[it.ID()]
		e.mu.Unlock()

		if s != nil {
			s.ModifyRate(it.Interval())
		}
	}
	e.updateBucketGauge()
}

// ItemsDeleted shuts down and drops the matching wrappers. A lookup miss
// is not an error; the item lives in the other index or was never wired.
func (e *Engine) ItemsDeleted(ids []ItemID) {
	for _, id := range ids {
		e.mu.Lock()
		s := e.sampled[id]
		p := e.pushed[id]
		delete(e.sampled, id)
		delete(e.pushed, id)
		e.mu.Unlock()

		if s != nil {
			s.Shutdown()
			e.metrics.itemStopped(log.StrategyPoll)
		}
		if p != nil {
			p.Shutdown()
			e.metrics.itemStopped(log.StrategyPush)
		}
	}
	e.updateBucketGauge()
}

// MonitoringModeChanged toggles the enabled flag on the matching items.
// It never creates or destroys the underlying registration or observer;
// a disabled item keeps its cadence and resumes delivery on re-enable.
func (e *Engine) MonitoringModeChanged(ids []ItemID, enabled bool) {
	for _, id := range ids {
		e.mu.Lock()
		s := e.sampled[id]
		p := e.pushed[id]
		e.mu.Unlock()

		if s != nil {
			s.Item().SetSamplingEnabled(enabled)
		}
		if p != nil {
			p.Item().SetSamplingEnabled(enabled)
		}
	}
}

// Startup anchors sampling operations to ctx. Items created before
// Startup sample under a background context.
func (e *Engine) Startup(ctx context.Context) {
	if ctx == nil {
		return
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
}

// Shutdown stops every wrapper, both polling and push, and closes the
// tick scheduler. Idempotent.
func (e *Engine) Shutdown() {
	e.cancel()

	e.mu.Lock()
	sampled := make([]*SampledItem, 0, len(e.sampled))
	for id, s := range e.sampled {
		sampled = append(sampled, s)
		delete(e.sampled, id)
	}
	pushed := make([]*SubscribedItem, 0, len(e.pushed))
	for id, p := range e.pushed {
		pushed = append(pushed, p)
		delete(e.pushed, id)
	}
	e.mu.Unlock()

	for _, s := range sampled {
		s.Shutdown()
		e.metrics.itemStopped(log.StrategyPoll)
	}
	for _, p := range pushed {
		p.Shutdown()
		e.metrics.itemStopped(log.StrategyPush)
	}

	e.sched.Close()
	e.updateBucketGauge()
}

// sampledItem returns the polling wrapper for id, if wired.
func (e *Engine) sampledItem(id ItemID) (*SampledItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sampled[id]
	return s, ok
}

// subscribedItem returns the push wrapper for id, if wired.
func (e *Engine) subscribedItem(id ItemID) (*SubscribedItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.pushed[id]
	return p, ok
}

// ItemCount returns the number of wired items per strategy.
func (e *Engine) ItemCount() (sampled, pushed int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sampled), len(e.pushed)
}

func (e *Engine) updateBucketGauge() {
	e.metrics.setTickBuckets(e.sched.Stats().Buckets)
}
