package monitor

import (
	"sync/atomic"
	"time"

	"github.com/iomon-project/iomon-go/pkg/model"
)

// ItemID identifies a monitored item. IDs are assigned by the hosting
// namespace and opaque to the engine.
type ItemID uint32

// Item is a client-visible monitored entity. Its value slot is the single
// point samplers and observers write to and the namespace reads from; it
// behaves as a lock-free single-value register with last-write-wins
// semantics.
type Item struct {
	id     ItemID
	nodeID string

	// interval holds the requested sampling interval in nanoseconds.
	interval atomic.Int64

	queueSize atomic.Uint32
	enabled   atomic.Bool
	value     atomic.Pointer[model.DataValue]
}

// NewItem creates an item with monitoring enabled.
func NewItem(id ItemID, nodeID string, interval time.Duration, queueSize uint32) *Item {
	it := &Item{id: id, nodeID: nodeID}
	it.interval.Store(int64(interval))
	it.queueSize.Store(queueSize)
	it.enabled.Store(true)
	return it
}

// ID returns the item identity.
func (it *Item) ID() ItemID { return it.id }

// NodeID returns the monitored node identifier.
func (it *Item) NodeID() string { return it.nodeID }

// Interval returns the requested sampling interval.
func (it *Item) Interval() time.Duration {
	return time.Duration(it.interval.Load())
}

// SetInterval records a new requested sampling interval. The running
// cadence only changes once the engine forwards the modification to the
// item's wrapper.
func (it *Item) SetInterval(d time.Duration) {
	it.interval.Store(int64(d))
}

// QueueSize returns the revised queue size.
func (it *Item) QueueSize() uint32 { return it.queueSize.Load() }

// SetQueueSize records a revised queue size.
func (it *Item) SetQueueSize(n uint32) { it.queueSize.Store(n) }

// SamplingEnabled returns whether monitoring is enabled.
func (it *Item) SamplingEnabled() bool { return it.enabled.Load() }

// SetSamplingEnabled toggles monitoring. Disabling suspends value-slot
// writes without touching the underlying registration or observer.
func (it *Item) SetSamplingEnabled(enabled bool) { it.enabled.Store(enabled) }

// Value returns the current slot content. Before the first write it
// reports BadNoData.
func (it *Item) Value() model.DataValue {
	if dv := it.value.Load(); dv != nil {
		return *dv
	}
	return model.DataValue{Status: model.BadNoData}
}

// SetValue stores a value in the slot (last-write-wins).
func (it *Item) SetValue(dv model.DataValue) {
	it.value.Store(&dv)
}
