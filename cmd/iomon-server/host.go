package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/iomon-project/iomon-go/pkg/model"
)

// Host node identifiers.
const (
	nodeHostCPU = "host.cpu.percent"
	nodeHostMem = "host.mem.percent"
)

// addHostNodes registers variables backed by host measurements.
func addHostNodes(space *Space) {
	space.AddVariable(model.NewVariable(&model.VariableMetadata{
		NodeID:      nodeHostCPU,
		DisplayName: "Host CPU usage",
		Type:        model.DataTypeFloat64,
		Access:      model.AccessReadOnly,
		Unit:        "%",
		Default:     0.0,
	}))
	space.AddVariable(model.NewVariable(&model.VariableMetadata{
		NodeID:      nodeHostMem,
		DisplayName: "Host memory usage",
		Type:        model.DataTypeFloat64,
		Access:      model.AccessReadOnly,
		Unit:        "%",
		Default:     0.0,
	}))
}

// runHostCollector refreshes the host variables until ctx is done.
func runHostCollector(ctx context.Context, space *Space, logger *slog.Logger) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
				updateNode(space, logger, nodeHostCPU, percents[0])
			} else if err != nil {
				logger.Warn("cpu measurement failed", "error", err)
			}

			if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
				updateNode(space, logger, nodeHostMem, vm.UsedPercent)
			} else {
				logger.Warn("memory measurement failed", "error", err)
			}
		}
	}
}
