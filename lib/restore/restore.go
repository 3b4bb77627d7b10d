// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// Package restore re-attaches persisted role menus to their live
// messages after a restart. Each persisted entry walks a resolution
// chain (space, channel, message, memberships) and either attaches a
// fresh interactive control or is abandoned with a logged reason.
// Abandonment never touches the persisted document: the referent may
// come back, and pruning is the operator's call.
package restore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/VinylRUS/mahrgibrolebot/chat"
	"github.com/VinylRUS/mahrgibrolebot/lib/menu"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

// State is a restoration stage. Attached and Abandoned are terminal.
type State string

const (
	Pending             State = "pending"
	SpaceResolved       State = "space_resolved"
	ChannelResolved     State = "channel_resolved"
	MessageResolved     State = "message_resolved"
	MembershipsResolved State = "memberships_resolved"
	Attached            State = "attached"
	Abandoned           State = "abandoned"
)

// SpaceResolver looks up a space snapshot in the bot's directory.
// Implemented by the service binary's space cache.
type SpaceResolver interface {
	Space(id ref.SpaceID) (*chat.Space, bool)
}

// MessageFetcher fetches a live message. Implemented by chat.Session.
type MessageFetcher interface {
	FetchMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID) (*chat.Message, error)
}

// AttachFunc binds a live interactive control to the message. The
// memberships slice is the surviving candidate set, in menu order.
type AttachFunc func(ctx context.Context, definition menu.Definition, memberships []chat.Membership) error

// Restorer walks persisted menus through the resolution chain.
type Restorer struct {
	Spaces   SpaceResolver
	Messages MessageFetcher
	Attach   AttachFunc
	Logger   *slog.Logger
}

// Result is the terminal outcome for one entry.
type Result struct {
	State State
	// Memberships is the resolved surviving candidate set when
	// State is Attached.
	Memberships []chat.Membership
	// Reason names the failed resolution step when State is
	// Abandoned.
	Reason string
	// Err carries the underlying error when abandonment came from a
	// failed call rather than a missing referent.
	Err error
}

// RestoreEntry resolves one persisted menu and attaches it. The
// returned state is always Attached or Abandoned.
func (r *Restorer) RestoreEntry(ctx context.Context, definition menu.Definition) Result {
	space, ok := r.Spaces.Space(definition.SpaceID)
	if !ok {
		return Result{State: Abandoned, Reason: fmt.Sprintf("space %s not in directory", definition.SpaceID)}
	}

	channelKnown := false
	for _, channel := range space.Channels {
		if channel.ID == definition.ChannelID {
			channelKnown = true
			break
		}
	}
	if !channelKnown {
		return Result{State: Abandoned, Reason: fmt.Sprintf("channel %s gone from space %s", definition.ChannelID, definition.SpaceID)}
	}

	if _, err := r.Messages.FetchMessage(ctx, definition.ChannelID, definition.MessageID); err != nil {
		if chat.IsGatewayError(err, chat.ErrCodeNotFound) {
			return Result{State: Abandoned, Reason: fmt.Sprintf("message %s deleted", definition.MessageID)}
		}
		return Result{State: Abandoned, Reason: fmt.Sprintf("message %s fetch failed", definition.MessageID), Err: err}
	}

	// Memberships that no longer exist in the space are dropped from
	// the candidate set silently. An empty surviving set means the
	// menu has nothing left to offer.
	var surviving []chat.Membership
	for _, id := range definition.MembershipIDs {
		for _, membership := range space.Memberships {
			if membership.ID == id {
				surviving = append(surviving, membership)
				break
			}
		}
	}
	if len(surviving) == 0 {
		return Result{State: Abandoned, Reason: "no candidate memberships survive"}
	}

	if err := r.Attach(ctx, definition, surviving); err != nil {
		return Result{State: Abandoned, Reason: "attach failed", Err: err}
	}
	return Result{State: Attached, Memberships: surviving}
}

// RestoreAll restores every entry independently: one abandoned menu
// never blocks the others. Each outcome is logged; abandoned entries
// get a warning naming the offending identifiers. Returns the number
// attached.
func (r *Restorer) RestoreAll(ctx context.Context, definitions []menu.Definition) int {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attached := 0
	for _, definition := range definitions {
		result := r.RestoreEntry(ctx, definition)
		switch result.State {
		case Attached:
			attached++
			logger.Info("restored role menu",
				"menu_id", definition.MenuID,
				"space_id", definition.SpaceID,
				"channel_id", definition.ChannelID,
				"message_id", definition.MessageID,
				"memberships", len(result.Memberships),
			)
		case Abandoned:
			logger.Warn("abandoned role menu",
				"menu_id", definition.MenuID,
				"space_id", definition.SpaceID,
				"channel_id", definition.ChannelID,
				"message_id", definition.MessageID,
				"reason", result.Reason,
				"error", result.Err,
			)
		}
	}
	return attached
}
