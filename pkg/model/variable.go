package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Variable errors.
var (
	ErrAttributeNotFound = errors.New("attribute not found")
	ErrValueNotWritable  = errors.New("value is not writable")
	ErrValueNotNullable  = errors.New("value does not accept null")
	ErrValueType         = errors.New("invalid value type")
	ErrValueOutOfRange   = errors.New("value out of range")
)

// VariableObserver is notified when a variable's value changes.
type VariableObserver interface {
	// OnAttributeChanged is called after a value change commits.
	// It runs outside the variable's lock and must not block.
	OnAttributeChanged(nodeID string, attrID AttributeID, value any)
}

// VariableMetadata describes a variable's static properties.
type VariableMetadata struct {
	// NodeID is the opaque node identifier.
	NodeID string

	// DisplayName is the human-readable node name.
	DisplayName string

	// Description is a human-readable description.
	Description string

	// Type is the data type of the value.
	Type DataType

	// Access defines the allowed operations on the value.
	Access Access

	// Nullable indicates if nil is a valid value.
	Nullable bool

	// MinValue is the minimum allowed value (for numeric types).
	MinValue any

	// MaxValue is the maximum allowed value (for numeric types).
	MaxValue any

	// Default is the initial value.
	Default any

	// Unit is the unit of measurement (e.g., "°C", "bar", "%").
	Unit string
}

// Variable is a node holding one live, observable value.
type Variable struct {
	mu        sync.RWMutex
	metadata  *VariableMetadata
	value     any
	valueTime time.Time
	observers []VariableObserver
}

// NewVariable creates a variable with the given metadata. A zero Access
// defaults to AccessReadWrite.
func NewVariable(meta *VariableMetadata) *Variable {
	if meta.Access == 0 {
		meta.Access = AccessReadWrite
	}
	return &Variable{
		metadata:  meta,
		value:     meta.Default,
		valueTime: time.Now(),
	}
}

// NodeID returns the node identifier.
func (v *Variable) NodeID() string {
	return v.metadata.NodeID
}

// Metadata returns the variable metadata.
func (v *Variable) Metadata() *VariableMetadata {
	return v.metadata
}

// Value returns the current value.
func (v *Variable) Value() any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Attribute returns a single attribute value by ID.
func (v *Variable) Attribute(id AttributeID) (any, error) {
	switch id {
	case AttrDisplayName:
		return v.metadata.DisplayName, nil
	case AttrDescription:
		return v.metadata.Description, nil
	case AttrDataType:
		return v.metadata.Type, nil
	case AttrUnit:
		return v.metadata.Unit, nil
	case AttrAccessLevel:
		return v.metadata.Access, nil
	case AttrValue:
		return v.Value(), nil
	default:
		return nil, ErrAttributeNotFound
	}
}

// ReadValue reads the value attribute. Problems are reported through the
// returned status code; the error return is reserved for transport-level
// failures and is always nil for in-memory variables.
func (v *Variable) ReadValue(_ context.Context, req ReadRequest) (DataValue, error) {
	if req.IndexRange != "" {
		return NewBadDataValue(BadIndexRangeInvalid), nil
	}
	if req.Encoding != "" {
		return NewBadDataValue(BadEncodingUnsupported), nil
	}

	v.mu.RLock()
	dv := DataValue{
		Value:           v.value,
		Status:          StatusGood,
		SourceTimestamp: v.valueTime,
		ServerTimestamp: time.Now(),
	}
	v.mu.RUnlock()

	return dv.applyTimestamps(req.Timestamps), nil
}

// SetValue sets the value, enforcing write access.
func (v *Variable) SetValue(value any) error {
	if !v.metadata.Access.CanWrite() {
		return ErrValueNotWritable
	}
	return v.setValue(value)
}

// SetValueInternal sets the value without checking write access.
// Used by the device side to update read-only measurements.
func (v *Variable) SetValueInternal(value any) error {
	return v.setValue(value)
}

func (v *Variable) setValue(value any) error {
	if value == nil && !v.metadata.Nullable {
		return ErrValueNotNullable
	}
	if value != nil {
		if err := v.validateValue(value); err != nil {
			return err
		}
	}

	v.mu.Lock()
	changed := !valuesEqual(v.value, value)
	if changed {
		v.value = value
		v.valueTime = time.Now()
	}
	observers := v.observers
	v.mu.Unlock()

	// Notify outside the lock
	if changed {
		for _, o := range observers {
			o.OnAttributeChanged(v.metadata.NodeID, AttrValue, value)
		}
	}
	return nil
}

// AddObserver registers an observer for value changes.
func (v *Variable) AddObserver(o VariableObserver) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, existing := range v.observers {
		if existing == o {
			return
		}
	}
	// Copy-on-write so notification can iterate without the lock.
	observers := make([]VariableObserver, len(v.observers), len(v.observers)+1)
	copy(observers, v.observers)
	v.observers = append(observers, o)
}

// RemoveObserver removes a previously registered observer.
// Removing an unknown observer has no effect.
func (v *Variable) RemoveObserver(o VariableObserver) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, existing := range v.observers {
		if existing == o {
			observers := make([]VariableObserver, 0, len(v.observers)-1)
			observers = append(observers, v.observers[:i]...)
			observers = append(observers, v.observers[i+1:]...)
			v.observers = observers
			return
		}
	}
}

// ObserverCount returns the number of registered observers.
func (v *Variable) ObserverCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.observers)
}

// validateValue checks if the value matches the expected type and range.
func (v *Variable) validateValue(value any) error {
	switch v.metadata.Type {
	case DataTypeBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: expected bool", ErrValueType)
		}
	case DataTypeInt8, DataTypeInt16, DataTypeInt32, DataTypeInt64:
		if !isIntegerType(value) {
			return fmt.Errorf("%w: expected integer", ErrValueType)
		}
	case DataTypeUint8, DataTypeUint16, DataTypeUint32, DataTypeUint64:
		if !isIntegerType(value) {
			return fmt.Errorf("%w: expected unsigned integer", ErrValueType)
		}
	case DataTypeFloat32, DataTypeFloat64:
		if !isNumericType(value) {
			return fmt.Errorf("%w: expected float", ErrValueType)
		}
	case DataTypeString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: expected string", ErrValueType)
		}
	case DataTypeBytes:
		if _, ok := value.([]byte); !ok {
			return fmt.Errorf("%w: expected bytes", ErrValueType)
		}
	}

	if v.metadata.MinValue != nil || v.metadata.MaxValue != nil {
		if err := v.checkRange(value); err != nil {
			return err
		}
	}
	return nil
}

// valuesEqual compares two values for equality. Values of types it cannot
// compare are treated as unequal, so the change is reported rather than
// silently dropped.
func valuesEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			return av == bv
		}
	case int32:
		if bv, ok := b.(int32); ok {
			return av == bv
		}
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
	case uint64:
		if bv, ok := b.(uint64); ok {
			return av == bv
		}
	case uint32:
		if bv, ok := b.(uint32); ok {
			return av == bv
		}
	case uint:
		if bv, ok := b.(uint); ok {
			return av == bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
	case float32:
		if bv, ok := b.(float32); ok {
			return av == bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
	}
	return false
}

// checkRange validates numeric range constraints.
func (v *Variable) checkRange(value any) error {
	n, ok := toFloat64(value)
	if !ok {
		return nil // Not a numeric type
	}

	if v.metadata.MinValue != nil {
		min, _ := toFloat64(v.metadata.MinValue)
		if n < min {
			return fmt.Errorf("%w: %v < %v", ErrValueOutOfRange, value, v.metadata.MinValue)
		}
	}

	if v.metadata.MaxValue != nil {
		max, _ := toFloat64(v.metadata.MaxValue)
		if n > max {
			return fmt.Errorf("%w: %v > %v", ErrValueOutOfRange, value, v.metadata.MaxValue)
		}
	}
	return nil
}
