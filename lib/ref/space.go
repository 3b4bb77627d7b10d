// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// SpaceID identifies a community space (the platform's "guild" or
// "server" object). Server-assigned; the bot never constructs space
// IDs except by parsing gateway responses and persisted documents.
//
// SpaceID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type SpaceID struct {
	id string
}

// ParseSpaceID validates and wraps a raw space ID string.
func ParseSpaceID(raw string) (SpaceID, error) {
	id, err := parseSnowflake("space", raw)
	if err != nil {
		return SpaceID{}, err
	}
	return SpaceID{id: id}, nil
}

// MustParseSpaceID is like ParseSpaceID but panics on error. Use in
// tests and static initialization where the input is known-valid.
func MustParseSpaceID(raw string) SpaceID {
	s, err := ParseSpaceID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseSpaceID(%q): %v", raw, err))
	}
	return s
}

// String returns the raw space ID string.
func (s SpaceID) String() string { return s.id }

// IsZero reports whether the SpaceID is the zero value (uninitialized).
func (s SpaceID) IsZero() bool { return s.id == "" }

// MarshalText implements encoding.TextMarshaler for JSON and other
// text-based serialization formats.
func (s SpaceID) MarshalText() ([]byte, error) {
	if s.id == "" {
		return nil, nil
	}
	return []byte(s.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value (unset space ID).
func (s *SpaceID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*s = SpaceID{}
		return nil
	}
	parsed, err := ParseSpaceID(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
