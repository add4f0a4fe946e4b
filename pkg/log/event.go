package log

import (
	"time"
)

// Event represents an acquisition log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// EngineID uniquely identifies the engine instance (UUID).
	EngineID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// ItemID is the monitored item identifier, when the event concerns one.
	ItemID uint32 `cbor:"4,keyasint,omitempty"`

	// NodeID is the target node identifier, when known.
	NodeID string `cbor:"5,keyasint,omitempty"`

	// Strategy is the item's delivery strategy, when the event concerns one.
	Strategy Strategy `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Sample      *SampleEvent      `cbor:"10,keyasint,omitempty"` // Value reads
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"` // Item lifecycle
	Scheduler   *SchedulerEvent   `cbor:"12,keyasint,omitempty"` // Tick registrations
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Absorbed failures
}

// Category classifies the event type.
type Category uint8

const (
	// CategorySample indicates a completed value read.
	CategorySample Category = 0
	// CategoryState indicates an item lifecycle state change.
	CategoryState Category = 1
	// CategoryScheduler indicates tick-scheduler activity.
	CategoryScheduler Category = 2
	// CategoryError indicates an absorbed failure.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySample:
		return "SAMPLE"
	case CategoryState:
		return "STATE"
	case CategoryScheduler:
		return "SCHEDULER"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Strategy identifies an item's delivery strategy.
type Strategy uint8

const (
	// StrategyNone means the event is not tied to a strategy.
	StrategyNone Strategy = 0
	// StrategyPoll is the periodic sampling strategy.
	StrategyPoll Strategy = 1
	// StrategyPush is the change-notification strategy.
	StrategyPush Strategy = 2
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "-"
	case StrategyPoll:
		return "POLL"
	case StrategyPush:
		return "PUSH"
	default:
		return "UNKNOWN"
	}
}

// SampleKind identifies which read path produced a sample.
type SampleKind uint8

const (
	// SampleInitial is the asynchronous first read after item creation.
	SampleInitial SampleKind = 0
	// SamplePeriodic is a scheduled tick read.
	SamplePeriodic SampleKind = 1
	// SamplePush is a value forwarded by a change notification.
	SamplePush SampleKind = 2
)

// String returns the sample kind name.
func (k SampleKind) String() string {
	switch k {
	case SampleInitial:
		return "INITIAL"
	case SamplePeriodic:
		return "PERIODIC"
	case SamplePush:
		return "PUSH"
	default:
		return "UNKNOWN"
	}
}

// SampleEvent describes a completed value read.
type SampleEvent struct {
	// Kind is the read path that produced the sample.
	Kind SampleKind `cbor:"1,keyasint"`

	// Status is the resulting status code (model.StatusCode).
	Status uint16 `cbor:"2,keyasint"`

	// Elapsed is how long the read took (zero for push deliveries).
	Elapsed time.Duration `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent describes an item lifecycle transition.
type StateChangeEvent struct {
	// OldState is the state before the transition.
	OldState string `cbor:"1,keyasint"`

	// NewState is the state after the transition.
	NewState string `cbor:"2,keyasint"`

	// Reason is an optional human-readable cause.
	Reason string `cbor:"3,keyasint,omitempty"`
}

// SchedulerEventKind identifies the scheduler activity.
type SchedulerEventKind uint8

const (
	// SchedulerRegistered is a new tick registration.
	SchedulerRegistered SchedulerEventKind = 0
	// SchedulerModified is an in-place interval change.
	SchedulerModified SchedulerEventKind = 1
	// SchedulerCancelled is a registration teardown.
	SchedulerCancelled SchedulerEventKind = 2
	// SchedulerTickDropped is a tick dropped under backpressure.
	SchedulerTickDropped SchedulerEventKind = 3
)

// String returns the scheduler event kind name.
func (k SchedulerEventKind) String() string {
	switch k {
	case SchedulerRegistered:
		return "REGISTERED"
	case SchedulerModified:
		return "MODIFIED"
	case SchedulerCancelled:
		return "CANCELLED"
	case SchedulerTickDropped:
		return "TICK_DROPPED"
	default:
		return "UNKNOWN"
	}
}

// SchedulerEvent describes tick-scheduler activity for one registration.
type SchedulerEvent struct {
	// Kind is the scheduler activity.
	Kind SchedulerEventKind `cbor:"1,keyasint"`

	// Interval is the registration period after the activity.
	Interval time.Duration `cbor:"2,keyasint,omitempty"`

	// OldInterval is the period before a MODIFIED activity.
	OldInterval time.Duration `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData describes a failure absorbed at the item boundary.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Context describes the operation that failed.
	Context string `cbor:"2,keyasint,omitempty"`
}
