// Package log implements the acquisition event log.
//
// The acquisition engine emits structured events — samples, item state
// changes, scheduler activity, errors — through the Logger interface.
// Events are compact CBOR records with integer keys, suitable for writing
// to disk at sampling rates without measurable overhead.
//
// # Event Categories
//
//   - Sample: a value read completed (initial, periodic, or push-driven)
//   - State: an item wrapper changed lifecycle state
//   - Scheduler: a tick registration was created, moved, cancelled, or
//     had a tick dropped
//   - Error: a failure absorbed at the item boundary
//
// # Sinks
//
// FileLogger writes CBOR events to a .ilog file; SlogAdapter mirrors
// events to an slog.Logger for development; MultiLogger fans out to both;
// NoopLogger disables logging. Reader streams events back out of a .ilog
// file, optionally filtered.
//
// # Correlation
//
// Every event carries the engine instance ID (a UUID minted at engine
// construction) so logs from several engines can be merged and split
// again.
package log
