// Package tick implements a shared periodic-callback scheduler.
//
// Registrations that share an interval are grouped into a bucket backed by
// a single time.Ticker, so a thousand items polled at 1s cost one timer,
// not a thousand.
//
// # Delivery
//
// Each bucket fires its whole registration set at its period. Callbacks
// run on their own goroutines; a slow callback never delays siblings in
// the same bucket and never blocks the timer goroutine.
//
// Per registration, at most one invocation is in flight at a time. A tick
// that arrives while the previous invocation is still running is dropped,
// not queued. This bounds memory and goroutine count when a target is
// slow; the next tick after the callback returns resumes delivery.
//
// # Lifecycle
//
// Registration.Modify moves a registration between buckets in place,
// creating the new bucket and tearing down the old one as needed.
// Registration.Cancel is idempotent. Both are synchronous with respect to
// bucket membership: once they return, no further delivery will start for
// the old period. A tick dispatched concurrently with Cancel or Modify may
// still complete one trailing invocation; callers must tolerate it.
package tick
