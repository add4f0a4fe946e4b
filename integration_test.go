package iomon_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iomon-project/iomon-go/pkg/log"
	"github.com/iomon-project/iomon-go/pkg/model"
	"github.com/iomon-project/iomon-go/pkg/monitor"
)

// testPlant is a small address space with two polled measurement nodes
// and one writable push node.
type testPlant struct {
	temp     *model.Variable
	pressure *model.Variable
	level    *model.Variable
}

func newTestPlant() *testPlant {
	return &testPlant{
		temp: model.NewVariable(&model.VariableMetadata{
			NodeID:  "plant.temp",
			Type:    model.DataTypeFloat64,
			Access:  model.AccessReadOnly,
			Default: 21.5,
			Unit:    "°C",
		}),
		pressure: model.NewVariable(&model.VariableMetadata{
			NodeID:  "plant.pressure",
			Type:    model.DataTypeFloat64,
			Access:  model.AccessReadOnly,
			Default: 1.2,
			Unit:    "bar",
		}),
		level: model.NewVariable(&model.VariableMetadata{
			NodeID:  "push.level",
			Type:    model.DataTypeFloat64,
			Access:  model.AccessReadWrite,
			Default: 50.0,
			Unit:    "%",
		}),
	}
}

func (p *testPlant) Resolve(nodeID string) (monitor.Target, bool) {
	switch nodeID {
	case "plant.temp":
		return p.temp, true
	case "plant.pressure":
		return p.pressure, true
	case "push.level":
		return p.level, true
	default:
		return nil, false
	}
}

func newTestEngine(t *testing.T, plant *testPlant, logger log.Logger) *monitor.Engine {
	t.Helper()
	engine, err := monitor.NewEngine(monitor.Config{
		Resolver: plant,
		Logger:   logger,
	})
	require.NoError(t, err)
	t.Cleanup(engine.Shutdown)
	return engine
}

// TestE2E_PollingDelivery creates a polling item and verifies the value
// slot is written repeatedly at the requested cadence with good quality.
func TestE2E_PollingDelivery(t *testing.T) {
	plant := newTestPlant()
	engine := newTestEngine(t, plant, nil)

	item := monitor.NewItem(1, "plant.temp", 50*time.Millisecond, 10)
	engine.ItemsCreated([]*monitor.Item{item})

	require.Eventually(t, func() bool {
		return engine.Scheduler().Stats().Fired >= 2
	}, time.Second, 5*time.Millisecond, "expected at least two scheduled cycles")

	dv := item.Value()
	assert.True(t, dv.Status.IsGood(), "slot status: %v", dv.Status)
	assert.Equal(t, 21.5, dv.Value)
	assert.Equal(t, 1, engine.Scheduler().Stats().Registrations)
}

// TestE2E_PushDelivery creates a push item and verifies writes propagate
// with no polling delay and no tick registration.
func TestE2E_PushDelivery(t *testing.T) {
	plant := newTestPlant()
	engine := newTestEngine(t, plant, nil)

	// Pre-commit revision: push items lose cadence and queue depth.
	interval, queue := engine.ReviseParameters("push.level", 500*time.Millisecond, 10)
	assert.Equal(t, time.Duration(0), interval)
	assert.Equal(t, uint32(1), queue)

	item := monitor.NewItem(2, "push.level", interval, queue)
	engine.ItemsCreated([]*monitor.Item{item})

	// Slot carries the current value immediately after creation.
	assert.Equal(t, 50.0, item.Value().Value)
	assert.Equal(t, 0, engine.Scheduler().Stats().Registrations)

	// A write propagates synchronously through the observer.
	require.NoError(t, plant.level.SetValue(75.0))
	assert.Equal(t, 75.0, item.Value().Value)
}

// TestE2E_CreateDeleteRace deletes items immediately after creating them
// and verifies no registration survives the asynchronous startup.
func TestE2E_CreateDeleteRace(t *testing.T) {
	plant := newTestPlant()
	engine := newTestEngine(t, plant, nil)

	for i := 0; i < 20; i++ {
		item := monitor.NewItem(monitor.ItemID(100+i), "plant.temp", 20*time.Millisecond, 10)
		engine.ItemsCreated([]*monitor.Item{item})
		engine.ItemsDeleted([]monitor.ItemID{item.ID()})
	}

	require.Eventually(t, func() bool {
		return engine.Scheduler().Stats().Registrations == 0
	}, time.Second, 5*time.Millisecond, "orphaned registrations after create-then-delete")
}

// TestE2E_RateChange verifies interval changes move the registration
// without duplicating it, and that a change after deletion is a no-op.
func TestE2E_RateChange(t *testing.T) {
	plant := newTestPlant()
	engine := newTestEngine(t, plant, nil)

	item := monitor.NewItem(3, "plant.pressure", 50*time.Millisecond, 10)
	engine.ItemsCreated([]*monitor.Item{item})

	require.Eventually(t, func() bool {
		return engine.Scheduler().Stats().Registrations == 1
	}, time.Second, 5*time.Millisecond)

	// A -> B -> A leaves exactly one registration in one bucket.
	item.SetInterval(200 * time.Millisecond)
	engine.ItemsModified([]*monitor.Item{item})
	item.SetInterval(50 * time.Millisecond)
	engine.ItemsModified([]*monitor.Item{item})

	st := engine.Scheduler().Stats()
	assert.Equal(t, 1, st.Registrations)
	assert.Equal(t, 1, st.Buckets)

	// Modification after deletion is a no-op, not an error.
	engine.ItemsDeleted([]monitor.ItemID{item.ID()})
	item.SetInterval(time.Second)
	engine.ItemsModified([]*monitor.Item{item})
	assert.Equal(t, 0, engine.Scheduler().Stats().Registrations)
}

// TestE2E_MonitoringModeToggle verifies disabling suspends slot writes
// without destroying the registration or the observer.
func TestE2E_MonitoringModeToggle(t *testing.T) {
	plant := newTestPlant()
	engine := newTestEngine(t, plant, nil)

	poll := monitor.NewItem(4, "plant.temp", 30*time.Millisecond, 10)
	push := monitor.NewItem(5, "push.level", 0, 1)
	engine.ItemsCreated([]*monitor.Item{poll, push})

	require.Eventually(t, func() bool {
		return poll.Value().Status.IsGood()
	}, time.Second, 5*time.Millisecond)

	engine.MonitoringModeChanged([]monitor.ItemID{poll.ID(), push.ID()}, false)

	// Push writes are dropped while disabled.
	require.NoError(t, plant.level.SetValue(10.0))
	assert.Equal(t, 50.0, push.Value().Value)

	// Registration and observer survive the disable.
	assert.Equal(t, 1, engine.Scheduler().Stats().Registrations)
	assert.Equal(t, 1, plant.level.ObserverCount())

	engine.MonitoringModeChanged([]monitor.ItemID{poll.ID(), push.ID()}, true)
	require.NoError(t, plant.level.SetValue(20.0))
	assert.Equal(t, 20.0, push.Value().Value)
}

// TestE2E_EventLogRoundtrip runs the engine with a CBOR event log and
// verifies the recorded events read back through the filtered reader.
func TestE2E_EventLogRoundtrip(t *testing.T) {
	plant := newTestPlant()

	path := filepath.Join(t.TempDir(), "acquisition.ilog")
	fileLogger, err := log.NewFileLogger(path)
	require.NoError(t, err)

	engine := newTestEngine(t, plant, fileLogger)

	item := monitor.NewItem(6, "plant.temp", 30*time.Millisecond, 10)
	engine.ItemsCreated([]*monitor.Item{item})

	require.Eventually(t, func() bool {
		return engine.Scheduler().Stats().Fired >= 2
	}, time.Second, 5*time.Millisecond)
	engine.Shutdown()
	require.NoError(t, fileLogger.Close())

	reader, err := log.NewFilteredReader(path, log.Filter{EngineID: engine.ID()})
	require.NoError(t, err)
	defer reader.Close()

	categories := make(map[log.Category]int)
	for {
		event, err := reader.Next()
		if err != nil {
			break
		}
		categories[event.Category]++
		if event.Category == log.CategorySample {
			assert.Equal(t, uint32(item.ID()), event.ItemID)
			assert.Equal(t, "plant.temp", event.NodeID)
		}
	}

	assert.GreaterOrEqual(t, categories[log.CategorySample], 3, "expected initial + periodic samples")
	assert.NotZero(t, categories[log.CategoryState], "expected lifecycle events")
	assert.NotZero(t, categories[log.CategoryScheduler], "expected scheduler events")
}

// TestE2E_FullShutdown verifies engine shutdown stops polling and push
// items alike and tears down the scheduler.
func TestE2E_FullShutdown(t *testing.T) {
	plant := newTestPlant()
	engine, err := monitor.NewEngine(monitor.Config{Resolver: plant})
	require.NoError(t, err)

	poll := monitor.NewItem(7, "plant.temp", 30*time.Millisecond, 10)
	push := monitor.NewItem(8, "push.level", 0, 1)
	engine.ItemsCreated([]*monitor.Item{poll, push})

	require.Eventually(t, func() bool {
		return engine.Scheduler().Stats().Registrations == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, plant.level.ObserverCount())

	engine.Shutdown()

	assert.Equal(t, 0, engine.Scheduler().Stats().Registrations)
	assert.Equal(t, 0, plant.level.ObserverCount())

	sampled, pushed := engine.ItemCount()
	assert.Zero(t, sampled)
	assert.Zero(t, pushed)
}
