// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/VinylRUS/mahrgibrolebot/chat"
	"github.com/VinylRUS/mahrgibrolebot/lib/guard"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

// handleArrival grants the default join membership to a user who just
// joined a space. Failures are logged and swallowed: the arriving
// user never sees an error, and the next arrival tries again with
// fresh state.
func (b *Bot) handleArrival(ctx context.Context, spaceID ref.SpaceID, arrival *chat.ArrivalEvent) {
	state := b.store.Load()
	if state.DefaultJoinMembership.IsZero() {
		return
	}

	space, ok := b.Space(spaceID)
	if !ok {
		b.logger.Warn("arrival in unknown space", "space_id", spaceID)
		return
	}

	if err := guard.EnsureAssignable(spaceView{space: space}, state.DefaultJoinMembership); err != nil {
		b.logger.Warn("default join membership not assignable",
			"membership_id", state.DefaultJoinMembership,
			"space_id", spaceID,
			"user_id", arrival.User,
			"error", err,
		)
		return
	}

	if err := b.session.GrantMembership(ctx, spaceID, arrival.User, state.DefaultJoinMembership); err != nil {
		b.logger.Warn("failed to grant default join membership",
			"membership_id", state.DefaultJoinMembership,
			"space_id", spaceID,
			"user_id", arrival.User,
			"error", err,
		)
		return
	}

	b.logger.Info("granted default join membership",
		"membership_id", state.DefaultJoinMembership,
		"space_id", spaceID,
		"user_id", arrival.User,
	)
}
