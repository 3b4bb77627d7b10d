// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"

	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

// Session is the authenticated gateway operation set the bot consumes.
// The production implementation is [DirectSession]; tests substitute
// fakes. Methods that name a space, channel, or message return a
// *GatewayError with ErrCodeNotFound when the referent no longer
// exists — callers treat that as "referent missing", never as fatal.
type Session interface {
	// UserID returns the bot's own user ID. Zero until WhoAmI has
	// succeeded once.
	UserID() ref.UserID

	// Close releases any resources held by the session. Idempotent.
	Close() error

	// WhoAmI validates the session and returns (and records) the
	// bot's own user ID.
	WhoAmI(ctx context.Context) (ref.UserID, error)

	// FetchMessage fetches a message by ID from a channel.
	FetchMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID) (*Message, error)

	// PostMenuMessage posts a new message carrying a menu component.
	// Returns the new message's ID.
	PostMenuMessage(ctx context.Context, channelID ref.ChannelID, request PostMenuRequest) (ref.MessageID, error)

	// UpdateMenuMessage replaces the menu component on an existing
	// message. Used on re-attach to drop options whose memberships no
	// longer exist.
	UpdateMenuMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID, menu MenuComponent) error

	// GrantMembership adds a membership to a space member.
	GrantMembership(ctx context.Context, spaceID ref.SpaceID, userID ref.UserID, membershipID ref.MembershipID) error

	// RevokeMembership removes a membership from a space member.
	RevokeMembership(ctx context.Context, spaceID ref.SpaceID, userID ref.UserID, membershipID ref.MembershipID) error

	// SpaceSnapshot fetches the current state of a space: channels,
	// memberships, and the bot's own member record.
	SpaceSnapshot(ctx context.Context, spaceID ref.SpaceID) (*Space, error)

	// Member fetches a user's current member record in a space.
	Member(ctx context.Context, spaceID ref.SpaceID, userID ref.UserID) (*Member, error)

	// RespondEphemeral sends a private reply to the user behind an
	// interaction. Only that user sees it.
	RespondEphemeral(ctx context.Context, interactionID, content string) error

	// Sync performs one long-poll against the event stream.
	Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error)
}

// Compile-time check: *DirectSession implements Session.
var _ Session = (*DirectSession)(nil)
