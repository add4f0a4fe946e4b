package monitor

import (
	"context"

	"github.com/iomon-project/iomon-go/pkg/model"
)

// Target is a read-only view of the attribute an item monitors. Targets
// are owned by the hosting namespace; the engine only references them.
type Target interface {
	// NodeID returns the target's node identifier.
	NodeID() string

	// ReadValue reads the monitored value. Quality problems are reported
	// through the DataValue status; the error return signals failures of
	// the read itself (transport, backing store).
	ReadValue(ctx context.Context, req model.ReadRequest) (model.DataValue, error)
}

// ObservableTarget is a Target that can push change notifications,
// making it eligible for the push delivery strategy.
type ObservableTarget interface {
	Target

	// Attribute returns the current value of a single attribute.
	Attribute(id model.AttributeID) (any, error)

	// AddObserver registers a change observer.
	AddObserver(o model.VariableObserver)

	// RemoveObserver removes a previously registered observer.
	RemoveObserver(o model.VariableObserver)
}

// TargetResolver maps node identifiers to targets. Implemented by the
// hosting namespace.
type TargetResolver interface {
	// Resolve returns the target for nodeID, or false if no backing
	// attribute exists.
	Resolve(nodeID string) (Target, bool)
}

// ResolverFunc adapts a function to the TargetResolver interface.
type ResolverFunc func(nodeID string) (Target, bool)

// Resolve calls f.
func (f ResolverFunc) Resolve(nodeID string) (Target, bool) {
	return f(nodeID)
}

// SampleStrategy produces one sample from a target. The initial and the
// periodic read of a SampledItem may use different strategies; by default
// both use DefaultSampler.
type SampleStrategy interface {
	Sample(ctx context.Context, target Target) (model.DataValue, error)
}

// ValueSampler is the standard strategy: a plain value read with the
// configured timestamp policy.
type ValueSampler struct {
	// Timestamps selects which timestamps the read populates.
	Timestamps model.TimestampPolicy
}

// Sample reads the target's value.
func (s ValueSampler) Sample(ctx context.Context, target Target) (model.DataValue, error) {
	return target.ReadValue(ctx, model.ReadRequest{Timestamps: s.Timestamps})
}

// DefaultSampler reads values with both timestamps populated.
var DefaultSampler SampleStrategy = ValueSampler{Timestamps: model.TimestampsBoth}
