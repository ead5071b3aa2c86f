// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// sampleRoom mirrors the shape of an exported room listing.
type sampleRoom struct {
	ID         int       `json:"room_id"`
	Name       string    `json:"name"`
	Topic      string    `json:"topic,omitempty"`
	LastActive time.Time `json:"last_active"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRoom{
		ID:         7,
		Name:       "Development",
		Topic:      "release 1.2 is out",
		LastActive: time.Date(2010, 3, 19, 14, 51, 51, 0, time.UTC),
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleRoom
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.ID != original.ID || decoded.Name != original.Name || decoded.Topic != original.Topic {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
	if !decoded.LastActive.Equal(original.LastActive) {
		t.Errorf("LastActive = %v, want %v", decoded.LastActive, original.LastActive)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	// Map iteration order is random; the encoding must not be.
	value := map[string]any{
		"room_id": 7,
		"name":    "Development",
		"topic":   "t",
		"owner":   5,
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 20 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("encoding differs between calls")
		}
	}
}

func TestTimeEncodedAsText(t *testing.T) {
	data, err := Marshal(sampleRoom{
		ID:         1,
		Name:       "Ops",
		LastActive: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"2024-03-05T10:00:00Z"`) {
		t.Errorf("notation %q does not contain the RFC 3339 timestamp", notation)
	}
}

func TestOmitemptyRespected(t *testing.T) {
	data, err := Marshal(sampleRoom{ID: 1, Name: "Ops"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, present := decoded["topic"]; present {
		t.Error("empty topic should be omitted")
	}
	if decoded["name"] != "Ops" {
		t.Errorf("name = %v, want Ops", decoded["name"])
	}
}

func TestEncoderStream(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)

	rooms := []sampleRoom{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	if err := encoder.Encode(rooms); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded []sampleRoom
	if err := Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Name != "b" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var decoded sampleRoom
	if err := Unmarshal([]byte{0xff, 0xfe}, &decoded); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}
