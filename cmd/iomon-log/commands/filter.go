package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/iomon-project/iomon-go/pkg/log"
)

// FilterOptions specifies filtering criteria for the filter command.
type FilterOptions struct {
	Output    string
	EngineID  string
	ItemID    string
	NodeID    string
	TimeStart string
	TimeEnd   string
	Category  string
	Strategy  string
}

// RunFilter filters the log file and writes matching events to a new file.
func RunFilter(path string, opts FilterOptions) error {
	filter := log.Filter{
		EngineID: opts.EngineID,
		NodeID:   opts.NodeID,
	}

	if opts.ItemID != "" {
		id, err := strconv.ParseUint(opts.ItemID, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid item-id: %w", err)
		}
		itemID := uint32(id)
		filter.ItemID = &itemID
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	if opts.Category != "" {
		c, err := ParseCategoryFlag(opts.Category)
		if err != nil {
			return err
		}
		filter.Category = &c
	}

	if opts.Strategy != "" {
		s, err := ParseStrategyFlag(opts.Strategy)
		if err != nil {
			return err
		}
		filter.Strategy = &s
	}

	// Open input
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Create file logger to write filtered events
	logger, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		logger.Log(event)
		count++
	}

	fmt.Printf("Filtered %d events to %s\n", count, opts.Output)
	return nil
}
