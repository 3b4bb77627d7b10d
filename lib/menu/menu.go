// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// Package menu defines the persisted role-menu record: one interactive
// selection menu attached to a message, offering a fixed candidate set
// of memberships. Definitions are immutable after creation; changing a
// menu means removing it and creating a new one.
package menu

import (
	"fmt"

	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

// MaxMemberships is the largest candidate set one menu may offer. The
// interactive select control caps out at this many options.
const MaxMemberships = 10

// Definition is one persisted role menu. MenuID is the routing key:
// the gateway echoes it back in every selection event from the
// attached control, which is how events find this record after a
// restart.
type Definition struct {
	MenuID        ref.MenuID         `json:"menu_id"`
	SpaceID       ref.SpaceID        `json:"space_id"`
	ChannelID     ref.ChannelID      `json:"channel_id"`
	MessageID     ref.MessageID      `json:"message_id"`
	MembershipIDs []ref.MembershipID `json:"membership_ids"`
	Title         string             `json:"title"`
}

// New validates the candidate set and builds a Definition with a
// freshly generated MenuID. MessageID is zero until the menu message
// has been posted; callers fill it in before persisting.
func New(spaceID ref.SpaceID, channelID ref.ChannelID, title string, membershipIDs []ref.MembershipID) (Definition, error) {
	if title == "" {
		return Definition{}, fmt.Errorf("menu: title is required")
	}
	if len(membershipIDs) == 0 {
		return Definition{}, fmt.Errorf("menu: at least one membership is required")
	}
	if len(membershipIDs) > MaxMemberships {
		return Definition{}, fmt.Errorf("menu: %d memberships exceeds the maximum of %d", len(membershipIDs), MaxMemberships)
	}

	seen := make(map[ref.MembershipID]struct{}, len(membershipIDs))
	for _, id := range membershipIDs {
		if id.IsZero() {
			return Definition{}, fmt.Errorf("menu: membership ID must not be empty")
		}
		if _, dup := seen[id]; dup {
			return Definition{}, fmt.Errorf("menu: duplicate membership %s", id)
		}
		seen[id] = struct{}{}
	}

	candidates := make([]ref.MembershipID, len(membershipIDs))
	copy(candidates, membershipIDs)

	return Definition{
		MenuID:        ref.NewMenuID(),
		SpaceID:       spaceID,
		ChannelID:     channelID,
		MembershipIDs: candidates,
		Title:         title,
	}, nil
}

// Offers reports whether the menu's candidate set contains id.
func (d Definition) Offers(id ref.MembershipID) bool {
	for _, candidate := range d.MembershipIDs {
		if candidate == id {
			return true
		}
	}
	return false
}
