package log

import "testing"

// captureLogger records events for assertions.
type captureLogger struct {
	events []Event
}

func (c *captureLogger) Log(event Event) {
	c.events = append(c.events, event)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &captureLogger{}
	b := &captureLogger{}
	m := NewMultiLogger(a, b)

	m.Log(stateEvent("e1", 1))

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("fan-out counts = %d/%d, want 1/1", len(a.events), len(b.events))
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	m := NewMultiLogger()
	m.Log(stateEvent("e1", 1)) // must not panic
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(stateEvent("e1", 1)) // must not panic
}
