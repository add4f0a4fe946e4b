package monitor

import (
	"testing"

	"github.com/iomon-project/iomon-go/pkg/model"
)

func newPushVariable(nodeID string, value any) *model.Variable {
	return model.NewVariable(&model.VariableMetadata{
		NodeID:  nodeID,
		Type:    model.DataTypeFloat64,
		Access:  model.AccessReadWrite | model.AccessSubscribe,
		Default: value,
	})
}

func TestSubscribedItemStartupSeedsCurrentValue(t *testing.T) {
	v := newPushVariable("push.pressure", 4.2)
	item := NewItem(1, v.NodeID(), 0, 1)
	s := NewSubscribedItem(item, v)

	s.Startup()

	dv := item.Value()
	if !dv.Status.IsGood() {
		t.Fatalf("expected good status, got %v", dv.Status)
	}
	if dv.Value != 4.2 {
		t.Errorf("expected seeded value 4.2, got %v", dv.Value)
	}
	if v.ObserverCount() != 1 {
		t.Errorf("expected 1 observer after startup, got %d", v.ObserverCount())
	}
	if s.currentState() != stateRunning {
		t.Errorf("expected RUNNING, got %v", s.currentState())
	}
}

func TestSubscribedItemForwardsChanges(t *testing.T) {
	v := newPushVariable("push.pressure", 4.2)
	item := NewItem(1, v.NodeID(), 0, 1)
	s := NewSubscribedItem(item, v)
	s.Startup()

	// Notification delivery is synchronous for in-memory variables, so
	// the slot is updated by the time SetValueInternal returns.
	if err := v.SetValueInternal(5.0); err != nil {
		t.Fatal(err)
	}
	if got := item.Value().Value; got != 5.0 {
		t.Errorf("expected forwarded value 5.0, got %v", got)
	}
}

func TestSubscribedItemIgnoresOtherAttributes(t *testing.T) {
	v := newPushVariable("push.pressure", 4.2)
	item := NewItem(1, v.NodeID(), 0, 1)
	s := NewSubscribedItem(item, v)
	s.Startup()

	s.OnAttributeChanged(v.NodeID(), model.AttrDisplayName, "renamed")
	if got := item.Value().Value; got != 4.2 {
		t.Errorf("non-value notification overwrote the slot: %v", got)
	}
}

func TestSubscribedItemDisableSuspendsForwarding(t *testing.T) {
	v := newPushVariable("push.pressure", 1.0)
	item := NewItem(1, v.NodeID(), 0, 1)
	s := NewSubscribedItem(item, v)
	s.Startup()

	item.SetSamplingEnabled(false)
	if err := v.SetValueInternal(2.0); err != nil {
		t.Fatal(err)
	}
	if got := item.Value().Value; got != 1.0 {
		t.Errorf("disabled item forwarded a change: %v", got)
	}

	// Re-enabling resumes delivery without re-registration.
	item.SetSamplingEnabled(true)
	if err := v.SetValueInternal(3.0); err != nil {
		t.Fatal(err)
	}
	if got := item.Value().Value; got != 3.0 {
		t.Errorf("re-enabled item did not forward: %v", got)
	}
	if v.ObserverCount() != 1 {
		t.Errorf("expected the original observer to survive, got %d", v.ObserverCount())
	}
}

func TestSubscribedItemShutdownRemovesObserver(t *testing.T) {
	v := newPushVariable("push.pressure", 1.0)
	item := NewItem(1, v.NodeID(), 0, 1)
	s := NewSubscribedItem(item, v)
	s.Startup()

	s.Shutdown()
	s.Shutdown()

	if v.ObserverCount() != 0 {
		t.Errorf("expected 0 observers after shutdown, got %d", v.ObserverCount())
	}
	if err := v.SetValueInternal(9.0); err != nil {
		t.Fatal(err)
	}
	if got := item.Value().Value; got != 1.0 {
		t.Errorf("stopped item received a delivery: %v", got)
	}
}

func TestSubscribedItemShutdownBeforeStartup(t *testing.T) {
	v := newPushVariable("push.pressure", 1.0)
	item := NewItem(1, v.NodeID(), 0, 1)
	s := NewSubscribedItem(item, v)

	s.Shutdown()
	if v.ObserverCount() != 0 {
		t.Errorf("expected no observer, got %d", v.ObserverCount())
	}

	// Startup after shutdown stays stopped.
	s.Startup()
	if s.currentState() != stateStopped {
		t.Errorf("expected STOPPED, got %v", s.currentState())
	}
}
