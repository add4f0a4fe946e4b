package main

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/iomon-project/iomon-go/pkg/model"
)

// Simulated plant node identifiers.
const (
	nodePlantTemp     = "plant.boiler.temperature"
	nodePlantPressure = "plant.boiler.pressure"
	nodePlantFlow     = "plant.coolant.flow"
	nodePushLevel     = "push.tank.level"
	nodePushValve     = "push.valve.open"
)

// addSimulatedNodes registers the synthetic plant variables.
func addSimulatedNodes(space *Space) {
	space.AddVariable(model.NewVariable(&model.VariableMetadata{
		NodeID:      nodePlantTemp,
		DisplayName: "Boiler temperature",
		Type:        model.DataTypeFloat64,
		Access:      model.AccessReadOnly,
		Unit:        "°C",
		Default:     80.0,
	}))
	space.AddVariable(model.NewVariable(&model.VariableMetadata{
		NodeID:      nodePlantPressure,
		DisplayName: "Boiler pressure",
		Type:        model.DataTypeFloat64,
		Access:      model.AccessReadOnly,
		Unit:        "bar",
		Default:     1.2,
	}))
	space.AddVariable(model.NewVariable(&model.VariableMetadata{
		NodeID:      nodePlantFlow,
		DisplayName: "Coolant flow",
		Type:        model.DataTypeFloat64,
		Access:      model.AccessReadOnly,
		Unit:        "l/min",
		Default:     0.0,
	}))
	space.AddVariable(model.NewVariable(&model.VariableMetadata{
		NodeID:      nodePushLevel,
		DisplayName: "Tank level",
		Type:        model.DataTypeFloat64,
		Access:      model.AccessReadOnly,
		Unit:        "%",
		MinValue:    0.0,
		MaxValue:    100.0,
		Default:     50.0,
	}))
	space.AddVariable(model.NewVariable(&model.VariableMetadata{
		NodeID:      nodePushValve,
		DisplayName: "Valve open",
		Type:        model.DataTypeBool,
		Access:      model.AccessReadWrite,
		Default:     false,
	}))
}

// runSimulation drives the synthetic plant signals until ctx is done.
// Sampled nodes drift every cycle; the push tank level changes in steps
// so the notification path is visibly event-driven.
func runSimulation(ctx context.Context, space *Space, logger *slog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var step int
	level := 50.0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			step++
			phase := float64(step) / 30.0 * 2 * math.Pi

			temp := 80.0 + 5.0*math.Sin(phase)
			pressure := 1.2 + 0.3*math.Sin(phase/2)
			flow := 42.0 + 4.0*math.Cos(phase)

			updateNode(space, logger, nodePlantTemp, temp)
			updateNode(space, logger, nodePlantPressure, pressure)
			updateNode(space, logger, nodePlantFlow, flow)

			// Fill and drain the tank in 5% steps every third cycle.
			if step%3 == 0 {
				level += 5.0
				if level > 100.0 {
					level = 0.0
				}
				updateNode(space, logger, nodePushLevel, level)
			}
		}
	}
}

func updateNode(space *Space, logger *slog.Logger, nodeID string, value float64) {
	v, ok := space.Variable(nodeID)
	if !ok {
		return
	}
	if err := v.SetValueInternal(value); err != nil {
		logger.Warn("simulation update failed", "node", nodeID, "error", err)
	}
}
