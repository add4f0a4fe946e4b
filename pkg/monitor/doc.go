// Package monitor implements the data-acquisition engine: it keeps
// monitored items fresh using one of two delivery strategies, periodic
// polling or push notification, chosen per item at creation time.
//
// # Items and Strategies
//
// An Item is a client-visible monitored entity: an identity, a target
// node reference, a requested sampling interval, an enabled flag, and a
// value slot. The Engine wraps each item in either a SampledItem (polling
// via the shared tick scheduler) or a SubscribedItem (an observer on the
// target), decided once by a reserved identifier prefix and never
// re-derived.
//
// # Lifecycle
//
//	SampledItem:    Idle -> Starting -> Running -> Stopped
//	SubscribedItem: Idle -> Running -> Stopped
//
// A SampledItem's startup performs its initial read asynchronously; the
// transition into Running and the creation of the tick registration are
// guarded against a concurrent shutdown, so a create-then-delete sequence
// faster than the initial read leaves no orphaned registration behind.
//
// # Failure Policy
//
// Failures on one item's sampling path are absorbed at the item boundary:
// a failed read becomes a bad-status value in the item's slot, a failed
// rate change is logged and the previous cadence stays in effect. Only
// malformed scheduler requests surface to the caller. No error in this
// engine is fatal to the process.
//
// # Concurrency
//
// Value-slot access is a lock-free single-value register: the namespace
// may read an item's value at any time while samplers and observers
// write it. Structural state (indexes, registrations, item state) is
// guarded per item; no global lock serializes the engine.
package monitor
