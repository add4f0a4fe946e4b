package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/iomon-project/iomon-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	EventsByStrategy map[log.Strategy]int
	Items            map[uint32]*ItemStats
	BadSamples       int
	DroppedTicks     int
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// ItemStats holds statistics for a single monitored item.
type ItemStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	Samples    int
	BadSamples int
	NodeID     string
	Strategy   log.Strategy
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		EventsByStrategy: make(map[log.Strategy]int),
		Items:            make(map[uint32]*ItemStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.EventsByStrategy[event.Strategy]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		// Track per-item stats
		if event.ItemID != 0 {
			item, ok := stats.Items[event.ItemID]
			if !ok {
				item = &ItemStats{
					FirstSeen: event.Timestamp,
					LastSeen:  event.Timestamp,
				}
				stats.Items[event.ItemID] = item
			}
			item.Events++
			if event.Timestamp.After(item.LastSeen) {
				item.LastSeen = event.Timestamp
			}
			if event.NodeID != "" && item.NodeID == "" {
				item.NodeID = event.NodeID
			}
			if event.Strategy != log.StrategyNone {
				item.Strategy = event.Strategy
			}
			if event.Sample != nil {
				item.Samples++
				if event.Sample.Status&0x8000 != 0 {
					item.BadSamples++
				}
			}
		}

		if event.Sample != nil && event.Sample.Status&0x8000 != 0 {
			stats.BadSamples++
		}
		if event.Scheduler != nil && event.Scheduler.Kind == log.SchedulerTickDropped {
			stats.DroppedTicks++
		}
		if event.Error != nil {
			stats.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Acquisition Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategorySample, log.CategoryState, log.CategoryScheduler, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Strategy:")
	for _, s := range []log.Strategy{log.StrategyPoll, log.StrategyPush} {
		if count := stats.EventsByStrategy[s]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", s.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Items sorted by ID
	fmt.Fprintf(w, "Items: %d\n", len(stats.Items))
	if len(stats.Items) > 0 {
		ids := make([]uint32, 0, len(stats.Items))
		for id := range stats.Items {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		fmt.Fprintln(w)
		for _, id := range ids {
			item := stats.Items[id]
			duration := item.LastSeen.Sub(item.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%d] %s (%s): %d events, %d samples, active %s\n",
				id, item.NodeID, item.Strategy, item.Events, item.Samples, duration)
			if item.BadSamples > 0 {
				fmt.Fprintf(w, "        Bad samples: %d\n", item.BadSamples)
			}
		}
	}

	if stats.BadSamples > 0 || stats.DroppedTicks > 0 || stats.Errors > 0 {
		fmt.Fprintln(w)
		if stats.BadSamples > 0 {
			fmt.Fprintf(w, "Bad Samples: %d\n", stats.BadSamples)
		}
		if stats.DroppedTicks > 0 {
			fmt.Fprintf(w, "Dropped Ticks: %d\n", stats.DroppedTicks)
		}
		if stats.Errors > 0 {
			fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
		}
	}
}
