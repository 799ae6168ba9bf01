// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type sampleSnapshot struct {
	Version int               `cbor:"version"`
	Entries map[string]string `cbor:"entries"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleSnapshot{
		Version: 1,
		Entries: map[string]string{
			"stopwatch.accumulated_ms": "1230",
			"clock.is_24_hour":         "false",
		},
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleSnapshot
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Version != 1 || len(decoded.Entries) != 2 ||
		decoded.Entries["stopwatch.accumulated_ms"] != "1230" {
		t.Errorf("roundtrip mismatch: got %+v", decoded)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	entries := map[string]string{}
	for _, key := range []string{"view.active", "countdown.target_ms", "a", "stopwatch.laps"} {
		entries[key] = key + "-value"
	}

	first, err := Marshal(entries)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 20 {
		again, err := Marshal(entries)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Marshal is not deterministic for identical maps")
		}
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var decoded sampleSnapshot
	if err := Unmarshal([]byte{0xff, 0x00, 0x13}, &decoded); err == nil {
		t.Fatal("expected error decoding garbage")
	}
}

func TestUnmarshalRejectsDuplicateKeys(t *testing.T) {
	// {"a": "1", "a": "2"} encoded by hand: map(2), text(1) "a", text(1)
	// "1", text(1) "a", text(1) "2".
	data := []byte{0xa2, 0x61, 'a', 0x61, '1', 0x61, 'a', 0x61, '2'}
	var decoded map[string]string
	if err := Unmarshal(data, &decoded); err == nil {
		t.Fatalf("expected duplicate key error, decoded %v", decoded)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]string{"clock.is_24_hour": "true"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"clock.is_24_hour"`) {
		t.Errorf("Diagnose = %s, want it to contain the key", notation)
	}
}
