// Package commands implements the iomon-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iomon-project/iomon-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Category *log.Category
	Strategy *log.Strategy
	NodeID   string
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [item:id] STRATEGY CATEGORY node
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	item := "-"
	if event.ItemID != 0 {
		item = fmt.Sprintf("%d", event.ItemID)
	}

	fmt.Fprintf(w, "%s [item:%s] %-4s %-9s %s\n",
		ts, item, event.Strategy, event.Category, event.NodeID)

	switch {
	case event.Sample != nil:
		formatSampleDetails(w, event.Sample)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Scheduler != nil:
		formatSchedulerDetails(w, event.Scheduler)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// formatSampleDetails writes sample-specific details.
func formatSampleDetails(w io.Writer, s *log.SampleEvent) {
	fmt.Fprintf(w, "  Kind:   %s\n", s.Kind)
	fmt.Fprintf(w, "  Status: 0x%04x\n", s.Status)
	if s.Elapsed > 0 {
		fmt.Fprintf(w, "  Took:   %s\n", formatDuration(s.Elapsed))
	}
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatSchedulerDetails writes tick-scheduler details.
func formatSchedulerDetails(w io.Writer, s *log.SchedulerEvent) {
	fmt.Fprintf(w, "  Kind: %s\n", s.Kind)
	if s.Interval > 0 {
		fmt.Fprintf(w, "  Interval: %s\n", s.Interval)
	}
	if s.Kind == log.SchedulerModified && s.OldInterval > 0 {
		fmt.Fprintf(w, "  Previous: %s\n", s.OldInterval)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "sample":
		return log.CategorySample, nil
	case "state":
		return log.CategoryState, nil
	case "scheduler":
		return log.CategoryScheduler, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be sample, state, scheduler, or error)", s)
	}
}

// ParseStrategyFlag parses a strategy string (case-insensitive).
func ParseStrategyFlag(s string) (log.Strategy, error) {
	switch strings.ToLower(s) {
	case "poll":
		return log.StrategyPoll, nil
	case "push":
		return log.StrategyPush, nil
	default:
		return 0, fmt.Errorf("invalid strategy: %s (must be poll or push)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if filter.Category != nil && event.Category != *filter.Category {
			continue
		}
		if filter.Strategy != nil && event.Strategy != *filter.Strategy {
			continue
		}
		if filter.NodeID != "" && event.NodeID != filter.NodeID {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}
