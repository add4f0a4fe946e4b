package model

import "time"

// StatusCode classifies the quality of a DataValue.
type StatusCode uint16

const (
	// StatusGood indicates a valid value.
	StatusGood StatusCode = 0

	// BadNodeUnknown indicates the addressed node does not exist.
	BadNodeUnknown StatusCode = 0x8001

	// BadAttributeUnknown indicates the node has no such attribute.
	BadAttributeUnknown StatusCode = 0x8002

	// BadIndexRangeInvalid indicates an index range on a non-indexable value.
	BadIndexRangeInvalid StatusCode = 0x8003

	// BadEncodingUnsupported indicates an unsupported value encoding.
	BadEncodingUnsupported StatusCode = 0x8004

	// BadInternalError indicates a read failed inside the target or sampler.
	BadInternalError StatusCode = 0x8005

	// BadNoData indicates no value has been acquired yet.
	BadNoData StatusCode = 0x8006
)

// IsGood returns true for a good-quality status.
func (s StatusCode) IsGood() bool { return s&0x8000 == 0 }

// IsBad returns true for a bad-quality status.
func (s StatusCode) IsBad() bool { return s&0x8000 != 0 }

// String returns the status code name.
func (s StatusCode) String() string {
	switch s {
	case StatusGood:
		return "GOOD"
	case BadNodeUnknown:
		return "BAD_NODE_UNKNOWN"
	case BadAttributeUnknown:
		return "BAD_ATTRIBUTE_UNKNOWN"
	case BadIndexRangeInvalid:
		return "BAD_INDEX_RANGE_INVALID"
	case BadEncodingUnsupported:
		return "BAD_ENCODING_UNSUPPORTED"
	case BadInternalError:
		return "BAD_INTERNAL_ERROR"
	case BadNoData:
		return "BAD_NO_DATA"
	default:
		return "UNKNOWN"
	}
}

// TimestampPolicy selects which timestamps a read populates.
type TimestampPolicy uint8

const (
	// TimestampsSource returns only the source timestamp.
	TimestampsSource TimestampPolicy = iota

	// TimestampsServer returns only the server timestamp.
	TimestampsServer

	// TimestampsBoth returns both timestamps.
	TimestampsBoth

	// TimestampsNeither returns no timestamps.
	TimestampsNeither
)

// String returns a human-readable policy name.
func (p TimestampPolicy) String() string {
	switch p {
	case TimestampsSource:
		return "SOURCE"
	case TimestampsServer:
		return "SERVER"
	case TimestampsBoth:
		return "BOTH"
	case TimestampsNeither:
		return "NEITHER"
	default:
		return "UNKNOWN"
	}
}

// ReadRequest carries the parameters of a value read.
type ReadRequest struct {
	// Timestamps selects which timestamps to populate.
	Timestamps TimestampPolicy

	// IndexRange addresses a slice of an array value ("" for the whole value).
	IndexRange string

	// Encoding names the requested value encoding ("" for the default).
	Encoding string
}

// DataValue is a value read from a target: the value itself plus quality
// and timing metadata.
type DataValue struct {
	// Value is the value payload; nil when Status is bad.
	Value any

	// Status is the value quality.
	Status StatusCode

	// SourceTimestamp is when the value last changed at the source.
	SourceTimestamp time.Time

	// ServerTimestamp is when the server last observed the value.
	ServerTimestamp time.Time
}

// NewDataValue returns a good-quality DataValue stamped with now for both
// timestamps.
func NewDataValue(value any) DataValue {
	now := time.Now()
	return DataValue{
		Value:           value,
		Status:          StatusGood,
		SourceTimestamp: now,
		ServerTimestamp: now,
	}
}

// NewBadDataValue returns a bad-quality DataValue carrying only a server
// timestamp.
func NewBadDataValue(status StatusCode) DataValue {
	return DataValue{
		Status:          status,
		ServerTimestamp: time.Now(),
	}
}

// applyTimestamps clears the timestamps the policy does not ask for.
func (dv DataValue) applyTimestamps(p TimestampPolicy) DataValue {
	switch p {
	case TimestampsSource:
		dv.ServerTimestamp = time.Time{}
	case TimestampsServer:
		dv.SourceTimestamp = time.Time{}
	case TimestampsNeither:
		dv.SourceTimestamp = time.Time{}
		dv.ServerTimestamp = time.Time{}
	}
	return dv
}
