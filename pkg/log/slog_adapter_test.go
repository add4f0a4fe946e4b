package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestSlog(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestSlogAdapterSample(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newTestSlog(&buf))

	adapter.Log(Event{
		Timestamp: time.Now(),
		EngineID:  "e1",
		Category:  CategorySample,
		ItemID:    9,
		NodeID:    "plant.pump.pressure",
		Strategy:  StrategyPoll,
		Sample: &SampleEvent{
			Kind:    SamplePeriodic,
			Status:  0,
			Elapsed: time.Millisecond,
		},
	})

	out := buf.String()
	for _, want := range []string{"engine_id=e1", "category=SAMPLE", "item_id=9", "node_id=plant.pump.pressure", "strategy=POLL", "kind=PERIODIC"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSlogAdapterError(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newTestSlog(&buf))

	adapter.Log(Event{
		Timestamp: time.Now(),
		EngineID:  "e1",
		Category:  CategoryError,
		Error: &ErrorEventData{
			Message: "read timed out",
			Context: "periodic sample",
		},
	})

	out := buf.String()
	if !strings.Contains(out, "error_msg=\"read timed out\"") {
		t.Errorf("output missing error message:\n%s", out)
	}
	if !strings.Contains(out, "error_context=\"periodic sample\"") {
		t.Errorf("output missing error context:\n%s", out)
	}
}
