package monitor

import (
	"sync/atomic"
	"time"

	"github.com/iomon-project/iomon-go/pkg/log"
	"github.com/iomon-project/iomon-go/pkg/model"
)

// SubscribedItem drives one item with the push strategy: a synchronous
// initial read at startup, then an observer on the target that forwards
// change notifications into the item's value slot.
//
// There is no Starting state; Startup installs the observer before it
// returns, so no shutdown race with an asynchronous setup step exists.
type SubscribedItem struct {
	item   *Item
	target ObservableTarget

	logger   log.Logger
	engineID string
	metrics  *Metrics

	state atomic.Int32
}

// NewSubscribedItem creates a push wrapper in the Idle state.
func NewSubscribedItem(item *Item, target ObservableTarget) *SubscribedItem {
	return &SubscribedItem{
		item:   item,
		target: target,
		logger: log.NoopLogger{},
	}
}

// SetLogger sets the event logger and engine instance ID.
func (s *SubscribedItem) SetLogger(logger log.Logger, engineID string) {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	s.logger = logger
	s.engineID = engineID
}

// SetMetrics sets the metrics sink (nil disables).
func (s *SubscribedItem) SetMetrics(m *Metrics) { s.metrics = m }

// Item returns the wrapped item.
func (s *SubscribedItem) Item() *Item { return s.item }

// Startup reads the current value, stores it in the slot, and installs
// the change observer. Calling Startup in any other state has no effect.
func (s *SubscribedItem) Startup() {
	if !s.state.CompareAndSwap(int32(stateIdle), int32(stateRunning)) {
		return
	}

	value, err := s.target.Attribute(model.AttrValue)
	if err != nil {
		s.metrics.sampleError()
		s.logError("initial read", err)
		s.item.SetValue(model.NewBadDataValue(model.BadInternalError))
	} else {
		s.item.SetValue(model.NewDataValue(value))
	}
	s.metrics.sampleTaken(log.SampleInitial)
	s.logSample(log.SampleInitial, s.item.Value().Status)

	s.target.AddObserver(s)
	s.logState(stateIdle, stateRunning, "observer installed")
}

// OnAttributeChanged implements model.VariableObserver. Notifications for
// attributes other than the value, or arriving while the item is stopped
// or disabled, are ignored.
func (s *SubscribedItem) OnAttributeChanged(nodeID string, attrID model.AttributeID, value any) {
	if attrID != model.AttrValue {
		return
	}
	if itemState(s.state.Load()) != stateRunning {
		return
	}
	if !s.item.SamplingEnabled() {
		return
	}

	s.item.SetValue(model.NewDataValue(value))
	s.metrics.sampleTaken(log.SamplePush)
	s.logSample(log.SamplePush, model.StatusGood)
}

// Shutdown removes the observer and transitions to Stopped. Idempotent.
func (s *SubscribedItem) Shutdown() {
	prev := itemState(s.state.Swap(int32(stateStopped)))
	if prev != stateRunning {
		return
	}
	s.target.RemoveObserver(s)
	s.logState(prev, stateStopped, "shutdown")
}

// currentState returns the lifecycle state.
func (s *SubscribedItem) currentState() itemState {
	return itemState(s.state.Load())
}

func (s *SubscribedItem) logSample(kind log.SampleKind, status model.StatusCode) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		EngineID:  s.engineID,
		Category:  log.CategorySample,
		ItemID:    uint32(s.item.ID()),
		NodeID:    s.item.NodeID(),
		Strategy:  log.StrategyPush,
		Sample: &log.SampleEvent{
			Kind:   kind,
			Status: uint16(status),
		},
	})
}

func (s *SubscribedItem) logState(old, new itemState, reason string) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		EngineID:  s.engineID,
		Category:  log.CategoryState,
		ItemID:    uint32(s.item.ID()),
		NodeID:    s.item.NodeID(),
		Strategy:  log.StrategyPush,
		StateChange: &log.StateChangeEvent{
			OldState: old.String(),
			NewState: new.String(),
			Reason:   reason,
		},
	})
}

func (s *SubscribedItem) logError(context string, err error) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		EngineID:  s.engineID,
		Category:  log.CategoryError,
		ItemID:    uint32(s.item.ID()),
		NodeID:    s.item.NodeID(),
		Strategy:  log.StrategyPush,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: context,
		},
	})
}
