// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// ChannelID identifies a text channel within a space. Channels can be
// deleted at any time, so holding a ChannelID does not imply the
// channel still exists — resolve against the space directory before
// use.
//
// ChannelID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type ChannelID struct {
	id string
}

// ParseChannelID validates and wraps a raw channel ID string.
func ParseChannelID(raw string) (ChannelID, error) {
	id, err := parseSnowflake("channel", raw)
	if err != nil {
		return ChannelID{}, err
	}
	return ChannelID{id: id}, nil
}

// MustParseChannelID is like ParseChannelID but panics on error.
func MustParseChannelID(raw string) ChannelID {
	c, err := ParseChannelID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseChannelID(%q): %v", raw, err))
	}
	return c
}

// String returns the raw channel ID string.
func (c ChannelID) String() string { return c.id }

// IsZero reports whether the ChannelID is the zero value.
func (c ChannelID) IsZero() bool { return c.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (c ChannelID) MarshalText() ([]byte, error) {
	if c.id == "" {
		return nil, nil
	}
	return []byte(c.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (c *ChannelID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*c = ChannelID{}
		return nil
	}
	parsed, err := ParseChannelID(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
