package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iomon-project/iomon-go/pkg/model"
)

// testSpace is a minimal namespace: a fixed set of variables by node ID.
type testSpace struct {
	vars map[string]*model.Variable
}

func newTestSpace() *testSpace {
	s := &testSpace{vars: make(map[string]*model.Variable)}
	for _, meta := range []*model.VariableMetadata{
		{NodeID: "plant.temp", Type: model.DataTypeFloat64, Default: 21.5},
		{NodeID: "plant.pressure", Type: model.DataTypeFloat64, Default: 1.0},
		{NodeID: "push.level", Type: model.DataTypeFloat64, Default: 0.5, Access: model.AccessReadWrite | model.AccessSubscribe},
	} {
		s.vars[meta.NodeID] = model.NewVariable(meta)
	}
	return s
}

func (s *testSpace) Resolve(nodeID string) (Target, bool) {
	v, ok := s.vars[nodeID]
	if !ok {
		return nil, false
	}
	return v, true
}

func newTestEngine(t *testing.T) (*Engine, *testSpace) {
	t.Helper()
	space := newTestSpace()
	e, err := NewEngine(Config{Resolver: space})
	require.NoError(t, err)
	t.Cleanup(e.Shutdown)
	return e, space
}

func TestNewEngineRequiresResolver(t *testing.T) {
	_, err := NewEngine(Config{})
	assert.ErrorIs(t, err, ErrNoResolver)
}

func TestEngineReviseParameters(t *testing.T) {
	e, _ := newTestEngine(t)

	// Push items have no cadence or queue.
	interval, queue := e.ReviseParameters("push.level", 500*time.Millisecond, 10)
	assert.Equal(t, time.Duration(0), interval)
	assert.Equal(t, uint32(1), queue)

	// Polling requests pass through unchanged.
	interval, queue = e.ReviseParameters("plant.temp", 500*time.Millisecond, 10)
	assert.Equal(t, 500*time.Millisecond, interval)
	assert.Equal(t, uint32(10), queue)
}

func TestEngineCreatesPollingItem(t *testing.T) {
	e, _ := newTestEngine(t)

	item := NewItem(1, "plant.temp", 50*time.Millisecond, 10)
	e.ItemsCreated([]*Item{item})

	sampled, pushed := e.ItemCount()
	assert.Equal(t, 1, sampled)
	assert.Equal(t, 0, pushed)

	// Non-error value within one scheduling cycle.
	require.Eventually(t, func() bool {
		return item.Value().Status.IsGood()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 21.5, item.Value().Value)
}

func TestEngineCreatesPushItem(t *testing.T) {
	e, space := newTestEngine(t)

	item := NewItem(2, "push.level", 0, 1)
	e.ItemsCreated([]*Item{item})

	sampled, pushed := e.ItemCount()
	assert.Equal(t, 0, sampled)
	assert.Equal(t, 1, pushed)

	// Seeded immediately, no polling delay.
	assert.Equal(t, 0.5, item.Value().Value)

	require.NoError(t, space.vars["push.level"].SetValueInternal(0.75))
	assert.Equal(t, 0.75, item.Value().Value)

	// No tick registration was created for the push item.
	assert.Equal(t, 0, e.Scheduler().Stats().Registrations)
}

func TestEngineUnresolvedTargetIsNotWired(t *testing.T) {
	e, _ := newTestEngine(t)

	item := NewItem(3, "plant.unknown", 50*time.Millisecond, 10)
	e.ItemsCreated([]*Item{item})

	sampled, pushed := e.ItemCount()
	assert.Zero(t, sampled)
	assert.Zero(t, pushed)
	assert.Equal(t, model.BadNoData, item.Value().Status)

	// Lifecycle calls for the unwired item are no-ops, not errors.
	e.ItemsModified([]*Item{item})
	e.ItemsDeleted([]ItemID{item.ID()})
	e.MonitoringModeChanged([]ItemID{item.ID()}, false)
}

func TestEngineItemsModifiedMovesCadence(t *testing.T) {
	e, _ := newTestEngine(t)

	item := NewItem(4, "plant.temp", 20*time.Millisecond, 10)
	e.ItemsCreated([]*Item{item})

	s, ok := e.sampledItem(item.ID())
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return s.currentState() == stateRunning
	}, time.Second, 2*time.Millisecond)

	item.SetInterval(80 * time.Millisecond)
	e.ItemsModified([]*Item{item})

	st := e.Scheduler().Stats()
	assert.Equal(t, 1, st.Registrations)
	assert.Equal(t, 1, st.Buckets)
}

func TestEngineItemsDeleted(t *testing.T) {
	e, space := newTestEngine(t)

	poll := NewItem(5, "plant.temp", 20*time.Millisecond, 10)
	push := NewItem(6, "push.level", 0, 1)
	e.ItemsCreated([]*Item{poll, push})

	s, ok := e.sampledItem(poll.ID())
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return s.currentState() == stateRunning
	}, time.Second, 2*time.Millisecond)

	e.ItemsDeleted([]ItemID{poll.ID(), push.ID()})

	sampled, pushed := e.ItemCount()
	assert.Zero(t, sampled)
	assert.Zero(t, pushed)
	assert.Equal(t, 0, e.Scheduler().Stats().Registrations)
	assert.Equal(t, 0, space.vars["push.level"].ObserverCount())

	// Deleting again is a no-op.
	e.ItemsDeleted([]ItemID{poll.ID(), push.ID()})
}

func TestEngineDeleteBeforeInitialSampleCompletes(t *testing.T) {
	e, _ := newTestEngine(t)

	item := NewItem(7, "plant.temp", 20*time.Millisecond, 10)
	e.ItemsCreated([]*Item{item})
	e.ItemsDeleted([]ItemID{item.ID()})

	// Whatever the initial-read timing, no registration may survive.
	require.Eventually(t, func() bool {
		return e.Scheduler().Stats().Registrations == 0
	}, time.Second, 2*time.Millisecond)
}

func TestEngineMonitoringModeChanged(t *testing.T) {
	e, space := newTestEngine(t)

	poll := NewItem(8, "plant.temp", 20*time.Millisecond, 10)
	push := NewItem(9, "push.level", 0, 1)
	e.ItemsCreated([]*Item{poll, push})

	e.MonitoringModeChanged([]ItemID{poll.ID(), push.ID()}, false)
	assert.False(t, poll.SamplingEnabled())
	assert.False(t, push.SamplingEnabled())

	// Registrations and observers are untouched by mode changes.
	assert.Equal(t, 1, space.vars["push.level"].ObserverCount())

	e.MonitoringModeChanged([]ItemID{poll.ID(), push.ID()}, true)
	assert.True(t, poll.SamplingEnabled())
	assert.True(t, push.SamplingEnabled())
}

func TestEngineShutdownStopsEverything(t *testing.T) {
	space := newTestSpace()
	e, err := NewEngine(Config{Resolver: space})
	require.NoError(t, err)

	poll := NewItem(10, "plant.temp", 20*time.Millisecond, 10)
	push := NewItem(11, "push.level", 0, 1)
	e.ItemsCreated([]*Item{poll, push})

	e.Shutdown()

	sampled, pushed := e.ItemCount()
	assert.Zero(t, sampled)
	assert.Zero(t, pushed)
	assert.Equal(t, 0, e.Scheduler().Stats().Registrations)
	assert.Equal(t, 0, space.vars["push.level"].ObserverCount())

	e.Shutdown() // idempotent
}

// nonObservable resolves but cannot push notifications.
type nonObservable struct{ fakeTarget }

func TestEnginePushRoutedNonObservableFallsBackToPolling(t *testing.T) {
	target := &nonObservable{fakeTarget{nodeID: "push.legacy", value: int64(7)}}
	e, err := NewEngine(Config{
		Resolver: ResolverFunc(func(nodeID string) (Target, bool) {
			if nodeID == target.nodeID {
				return target, true
			}
			return nil, false
		}),
	})
	require.NoError(t, err)
	t.Cleanup(e.Shutdown)

	item := NewItem(12, "push.legacy", 20*time.Millisecond, 1)
	e.ItemsCreated([]*Item{item})

	sampled, pushed := e.ItemCount()
	assert.Equal(t, 1, sampled)
	assert.Zero(t, pushed)

	require.Eventually(t, func() bool {
		return item.Value().Status.IsGood()
	}, time.Second, 5*time.Millisecond)
}

func TestEngineCustomPushPrefix(t *testing.T) {
	space := newTestSpace()
	e, err := NewEngine(Config{Resolver: space, PushPrefix: "evt."})
	require.NoError(t, err)
	t.Cleanup(e.Shutdown)

	assert.True(t, e.UsesPush("evt.level"))
	assert.False(t, e.UsesPush("push.level"))
}
