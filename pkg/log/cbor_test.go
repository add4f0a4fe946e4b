package log

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestEncodeDecodeEvent(t *testing.T) {
	event := Event{
		Timestamp: time.Now(),
		EngineID:  "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Category:  CategorySample,
		ItemID:    42,
		NodeID:    "plant.boiler.temperature",
		Strategy:  StrategyPoll,
		Sample: &SampleEvent{
			Kind:    SamplePeriodic,
			Status:  0,
			Elapsed: 3 * time.Millisecond,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}

	if decoded.EngineID != event.EngineID {
		t.Errorf("EngineID = %q, want %q", decoded.EngineID, event.EngineID)
	}
	if decoded.ItemID != 42 {
		t.Errorf("ItemID = %d, want 42", decoded.ItemID)
	}
	if decoded.NodeID != event.NodeID {
		t.Errorf("NodeID = %q", decoded.NodeID)
	}
	if decoded.Sample == nil || decoded.Sample.Kind != SamplePeriodic {
		t.Error("Sample payload lost or wrong")
	}
	if decoded.Sample.Elapsed != 3*time.Millisecond {
		t.Errorf("Elapsed = %v, want 3ms", decoded.Sample.Elapsed)
	}
	// CBOR time encoding keeps sub-second precision
	if decoded.Timestamp.UnixNano() != event.Timestamp.UnixNano() {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestDecodeEventGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Error("DecodeEvent on garbage should fail")
	}
}

func TestStreamEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	for i := uint32(1); i <= 3; i++ {
		if err := enc.Encode(Event{
			Timestamp: time.Now(),
			EngineID:  "e",
			Category:  CategoryState,
			ItemID:    i,
			StateChange: &StateChangeEvent{
				OldState: "IDLE",
				NewState: "RUNNING",
			},
		}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	dec := NewDecoder(&buf)
	var ids []uint32
	for {
		var event Event
		if err := dec.Decode(&event); err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("Decode: %v", err)
		}
		ids = append(ids, event.ItemID)
	}

	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Errorf("decoded item IDs = %v, want [1 2 3]", ids)
	}
}
