// Package model implements the IOMON target-side data model.
//
// # Nodes and Attributes
//
// The acquisition engine monitors attributes of nodes. The central node
// kind is the Variable: a named, typed value slot with metadata and
// change observers:
//
//	Variable (plant.boiler.temperature)
//	├── DisplayName  "Boiler temperature"
//	├── Unit         "°C"
//	├── DataType     float64
//	└── Value        87.4 (+ source/server timestamps, status)
//
// # Addressing
//
// Nodes are addressed by an opaque string identifier. Attributes within a
// node are addressed by AttributeID; the value attribute is the one bound
// to acquisition items.
//
// # Reads
//
// ReadValue returns a DataValue: the value plus a StatusCode and the
// timestamps selected by the request's TimestampPolicy. Reads never panic
// and never block; malformed requests are reported through the status
// code, not through errors.
//
// # Observers
//
// Observers registered with AddObserver are invoked after a value change
// commits, outside the variable's lock. Observers must be comparable
// (pointer receivers are fine) so RemoveObserver can find them again.
//
// # Access Control
//
// Attributes have access flags:
//   - Read: Can be read
//   - Write: Can be written by clients
//   - Subscribe: Can be observed for changes
//
// SetValueInternal bypasses the write flag for device-side updates of
// read-only measurements.
package model
