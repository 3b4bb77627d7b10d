// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// MembershipID identifies a grantable group membership (a "role")
// within a space. A persisted membership ID can outlive the membership
// itself: menus routinely reference roles that an admin has since
// deleted. Callers resolve IDs against the space directory at point of
// use and treat unresolvable IDs as silently absent.
//
// MembershipID is an immutable value type. The zero value is not
// valid; use IsZero to check.
type MembershipID struct {
	id string
}

// ParseMembershipID validates and wraps a raw membership ID string.
func ParseMembershipID(raw string) (MembershipID, error) {
	id, err := parseSnowflake("membership", raw)
	if err != nil {
		return MembershipID{}, err
	}
	return MembershipID{id: id}, nil
}

// MustParseMembershipID is like ParseMembershipID but panics on error.
func MustParseMembershipID(raw string) MembershipID {
	m, err := ParseMembershipID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseMembershipID(%q): %v", raw, err))
	}
	return m
}

// String returns the raw membership ID string.
func (m MembershipID) String() string { return m.id }

// IsZero reports whether the MembershipID is the zero value.
func (m MembershipID) IsZero() bool { return m.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (m MembershipID) MarshalText() ([]byte, error) {
	if m.id == "" {
		return nil, nil
	}
	return []byte(m.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (m *MembershipID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*m = MembershipID{}
		return nil
	}
	parsed, err := ParseMembershipID(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
