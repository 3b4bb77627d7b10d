// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// MessageID identifies a message posted to a channel. Message IDs are
// stable for the life of the message, but messages can be deleted by
// moderators at any time — the restoration protocol treats a missing
// message as an abandoned menu, not an error.
//
// MessageID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type MessageID struct {
	id string
}

// ParseMessageID validates and wraps a raw message ID string.
func ParseMessageID(raw string) (MessageID, error) {
	id, err := parseSnowflake("message", raw)
	if err != nil {
		return MessageID{}, err
	}
	return MessageID{id: id}, nil
}

// MustParseMessageID is like ParseMessageID but panics on error.
func MustParseMessageID(raw string) MessageID {
	m, err := ParseMessageID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseMessageID(%q): %v", raw, err))
	}
	return m
}

// String returns the raw message ID string.
func (m MessageID) String() string { return m.id }

// IsZero reports whether the MessageID is the zero value.
func (m MessageID) IsZero() bool { return m.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (m MessageID) MarshalText() ([]byte, error) {
	if m.id == "" {
		return nil, nil
	}
	return []byte(m.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (m *MessageID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*m = MessageID{}
		return nil
	}
	parsed, err := ParseMessageID(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
