// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"

	"github.com/google/uuid"
)

// MenuID identifies a role menu definition. Unlike the platform IDs in
// this package, menu IDs are generated locally when an admin creates a
// menu, and they key the binding between a persisted definition and
// its live interactive behavior. The indirection from MessageID lets an
// operator re-point a menu at a different message without minting a new
// identity.
//
// MenuID is an immutable value type. The zero value is not valid; use
// IsZero to check.
type MenuID struct {
	id string
}

// NewMenuID generates a fresh random menu ID.
func NewMenuID() MenuID {
	return MenuID{id: uuid.NewString()}
}

// ParseMenuID validates and wraps a raw menu ID string. Menu IDs are
// canonical lowercase UUID strings.
func ParseMenuID(raw string) (MenuID, error) {
	if raw == "" {
		return MenuID{}, fmt.Errorf("empty menu ID")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return MenuID{}, fmt.Errorf("menu ID is not a UUID: %q: %w", raw, err)
	}
	return MenuID{id: parsed.String()}, nil
}

// MustParseMenuID is like ParseMenuID but panics on error.
func MustParseMenuID(raw string) MenuID {
	m, err := ParseMenuID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseMenuID(%q): %v", raw, err))
	}
	return m
}

// String returns the canonical UUID string form.
func (m MenuID) String() string { return m.id }

// IsZero reports whether the MenuID is the zero value.
func (m MenuID) IsZero() bool { return m.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (m MenuID) MarshalText() ([]byte, error) {
	if m.id == "" {
		return nil, nil
	}
	return []byte(m.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (m *MenuID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*m = MenuID{}
		return nil
	}
	parsed, err := ParseMenuID(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
