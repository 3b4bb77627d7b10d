// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/VinylRUS/mahrgibrolebot/chat"
	"github.com/VinylRUS/mahrgibrolebot/lib/reconcile"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

// handleSelection reconciles one submitted menu selection and reports
// the outcome to the user. The selection is the user's desired end
// state within the menu's candidate set; memberships outside it are
// never touched.
func (b *Bot) handleSelection(ctx context.Context, spaceID ref.SpaceID, selection *chat.SelectionEvent) {
	definition, ok := b.liveMenu(selection.MenuID)
	if !ok {
		// A control the gateway still renders but we no longer track:
		// removed menu, or restoration was abandoned.
		b.logger.Debug("selection for unknown menu",
			"menu_id", selection.MenuID,
			"space_id", spaceID,
		)
		b.respond(ctx, selection.InteractionID, "This menu is no longer active.")
		return
	}

	space, ok := b.Space(definition.SpaceID)
	if !ok {
		b.logger.Warn("selection for menu in unknown space",
			"menu_id", selection.MenuID,
			"space_id", definition.SpaceID,
		)
		return
	}
	view := spaceView{space: space}

	// The user's current memberships come fresh from the gateway, not
	// from any cache: overlapping selections may have changed them.
	member, err := b.session.Member(ctx, definition.SpaceID, selection.User)
	if err != nil {
		b.logger.Error("failed to fetch member for selection",
			"user_id", selection.User,
			"space_id", definition.SpaceID,
			"error", err,
		)
		b.respond(ctx, selection.InteractionID, "Something went wrong, try again.")
		return
	}

	// The gateway payload is not trusted to stay inside the menu's
	// candidate set; anything else in it is dropped before planning.
	selected := make([]ref.MembershipID, 0, len(selection.Selected))
	for _, id := range selection.Selected {
		if !definition.Offers(id) {
			b.logger.Debug("selection named a membership outside the menu",
				"menu_id", definition.MenuID,
				"membership_id", id,
			)
			continue
		}
		selected = append(selected, id)
	}

	delta := reconcile.Plan(member.Memberships, definition.MembershipIDs, selected)
	outcome := reconcile.Apply(ctx, b.session, view, definition.SpaceID, selection.User, delta)

	b.logger.Info("selection reconciled",
		"menu_id", definition.MenuID,
		"user_id", selection.User,
		"granted", len(outcome.Granted),
		"revoked", len(outcome.Revoked),
		"failures", len(outcome.Failures),
	)

	b.respond(ctx, selection.InteractionID, describeOutcome(view, outcome))
}

// describeOutcome renders a reconciliation outcome as the user's
// ephemeral reply: role names granted and removed, failures named
// individually, "No changes" for the explicit no-op.
func describeOutcome(view spaceView, outcome reconcile.Outcome) string {
	if outcome.NoChange() {
		return "No changes."
	}

	var parts []string
	if len(outcome.Granted) > 0 {
		parts = append(parts, "Added: "+joinNames(view, outcome.Granted))
	}
	if len(outcome.Revoked) > 0 {
		parts = append(parts, "Removed: "+joinNames(view, outcome.Revoked))
	}
	for _, failure := range outcome.Failures {
		verb := "add"
		if failure.Revoke {
			verb = "remove"
		}
		parts = append(parts, fmt.Sprintf("Could not %s %s.", verb, view.membershipName(failure.Membership)))
	}
	return strings.Join(parts, " ")
}

func joinNames(view spaceView, ids []ref.MembershipID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = view.membershipName(id)
	}
	return strings.Join(names, ", ")
}

// respond sends an ephemeral reply, logging delivery failures. The
// interaction may have expired; nothing to do about it.
func (b *Bot) respond(ctx context.Context, interactionID, content string) {
	if err := b.session.RespondEphemeral(ctx, interactionID, content); err != nil {
		b.logger.Warn("failed to deliver ephemeral reply",
			"interaction_id", interactionID,
			"error", err,
		)
	}
}
