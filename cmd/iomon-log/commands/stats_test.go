package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iomon-project/iomon-go/pkg/log"
)

func TestRunStats(t *testing.T) {
	path := writeTestLog(t,
		sampleEvent(1, "plant.boiler.temperature", 0),
		sampleEvent(1, "plant.boiler.temperature", 0),
		sampleEvent(1, "plant.boiler.temperature", 0x8005),
		sampleEvent(2, "plant.boiler.pressure", 0),
		log.Event{
			Timestamp: time.Now(),
			Category:  log.CategoryScheduler,
			Strategy:  log.StrategyPoll,
			Scheduler: &log.SchedulerEvent{Kind: log.SchedulerTickDropped, Interval: time.Second},
		},
		log.Event{
			Timestamp: time.Now(),
			Category:  log.CategoryError,
			ItemID:    1,
			NodeID:    "plant.boiler.temperature",
			Strategy:  log.StrategyPoll,
			Error:     &log.ErrorEventData{Message: "read failed", Context: "sample"},
		},
	)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	if !strings.Contains(output, "Total Events: 6") {
		t.Errorf("expected total of 6 events, got: %s", output)
	}
	if !strings.Contains(output, "Items: 2") {
		t.Errorf("expected 2 items, got: %s", output)
	}
	if !strings.Contains(output, "plant.boiler.temperature") {
		t.Errorf("expected per-item node ID, got: %s", output)
	}
	if !strings.Contains(output, "Bad samples: 1") {
		t.Errorf("expected per-item bad sample count, got: %s", output)
	}
	if !strings.Contains(output, "Dropped Ticks: 1") {
		t.Errorf("expected dropped tick count, got: %s", output)
	}
	if !strings.Contains(output, "Errors: 1") {
		t.Errorf("expected error count, got: %s", output)
	}
}

func TestRunStatsEmptyFile(t *testing.T) {
	path := writeTestLog(t)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("expected zero events, got: %s", buf.String())
	}
}
