// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"

	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

// sampleRequest is a representative socket protocol message. Socket
// types carry json tags, which fxamacker/cbor reads as fallback.
type sampleRequest struct {
	Action  string      `json:"action"`
	Space   ref.SpaceID `json:"space_id,omitempty"`
	Verbose bool        `json:"verbose"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRequest{
		Action:  "list-menus",
		Space:   ref.MustParseSpaceID("81384788765712384"),
		Verbose: true,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleRequest
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	message := sampleRequest{
		Action: "status",
		Space:  ref.MustParseSpaceID("7"),
	}

	first, err := Marshal(message)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(message)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestRefIDsEncodeAsTextStrings(t *testing.T) {
	// An ID type with unexported fields must round-trip via its
	// TextMarshaler, not decay to an empty CBOR map.
	menuID := ref.NewMenuID()

	data, err := Marshal(menuID)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded ref.MenuID
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.String() != menuID.String() {
		t.Errorf("roundtrip = %q, want %q", decoded, menuID)
	}
}

func TestEncoderDecoderStreamRoundtrip(t *testing.T) {
	requests := []sampleRequest{
		{Action: "status"},
		{Action: "remove-menu", Space: ref.MustParseSpaceID("42"), Verbose: true},
		{Action: "clear-join-role"},
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, request := range requests {
		if err := encoder.Encode(request); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for index, want := range requests {
		var got sampleRequest
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode[%d]: %v", index, err)
		}
		if got != want {
			t.Errorf("stream roundtrip[%d] = %+v, want %+v", index, got, want)
		}
	}
}
