// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

// Permission is a space-level capability the gateway reports as part
// of a member's effective permission set.
type Permission string

// Permissions the bot cares about. The gateway computes the effective
// set per member, so overrides and inheritance are already applied.
const (
	// PermissionManageMemberships allows granting and revoking
	// memberships (subject to hierarchy).
	PermissionManageMemberships Permission = "manage_memberships"
	// PermissionAdministrator implies every other permission.
	PermissionAdministrator Permission = "administrator"
)

// Member is a user's standing within a space: the memberships they
// hold and their effective permissions. Fetched fresh at point of use;
// never cache a Member across events, because both lists change.
type Member struct {
	UserID      ref.UserID         `json:"user_id"`
	DisplayName string             `json:"display_name,omitempty"`
	Memberships []ref.MembershipID `json:"membership_ids"`
	Permissions []Permission       `json:"permissions"`
}

// HasPermission reports whether the member's effective permission set
// contains p. PermissionAdministrator implies every other permission.
func (m *Member) HasPermission(p Permission) bool {
	for _, held := range m.Permissions {
		if held == p || held == PermissionAdministrator {
			return true
		}
	}
	return false
}

// Membership describes a grantable group membership ("role") within a
// space. Position is the hierarchy slot: higher positions outrank
// lower ones, and an actor can only grant or revoke memberships
// positioned strictly below its own highest membership.
type Membership struct {
	ID       ref.MembershipID `json:"membership_id"`
	Name     string           `json:"name"`
	Position int              `json:"position"`
}

// Channel is a text channel within a space.
type Channel struct {
	ID   ref.ChannelID `json:"channel_id"`
	Name string        `json:"name"`
}

// Space is a full snapshot of one community space as the gateway sees
// it: its channels, its memberships, and the bot's own member record.
// Delivered on initial sync and whenever space state changes.
type Space struct {
	ID          ref.SpaceID  `json:"space_id"`
	Name        string       `json:"name"`
	Channels    []Channel    `json:"channels"`
	Memberships []Membership `json:"memberships"`
	// Actor is the bot's own member record in this space, used by the
	// assignability guard for permission and hierarchy checks.
	Actor Member `json:"actor"`
}

// MenuOption is one selectable entry in a menu component, pairing a
// membership with its display label.
type MenuOption struct {
	Membership ref.MembershipID `json:"membership_id"`
	Label      string           `json:"label"`
}

// MenuComponent is the interactive multi-select control attached to a
// menu message. The gateway echoes MenuID back in every selection
// event for this control, which is how events route to the right
// persisted definition after a restart.
type MenuComponent struct {
	MenuID      ref.MenuID   `json:"menu_id"`
	Placeholder string       `json:"placeholder,omitempty"`
	Options     []MenuOption `json:"options"`
}

// Message is a posted channel message, with its menu component when
// one is attached.
type Message struct {
	ID        ref.MessageID  `json:"message_id"`
	ChannelID ref.ChannelID  `json:"channel_id"`
	Author    ref.UserID     `json:"author_id"`
	Content   string         `json:"content,omitempty"`
	Menu      *MenuComponent `json:"menu,omitempty"`
}

// PostMenuRequest holds the parameters for posting a new menu message.
type PostMenuRequest struct {
	Title   string        `json:"title"`
	Content string        `json:"content,omitempty"`
	Menu    MenuComponent `json:"menu"`
}

// postMessageResponse is returned by the message-create endpoint.
type postMessageResponse struct {
	MessageID ref.MessageID `json:"message_id"`
}

// whoAmIResponse is returned by the identity endpoint.
type whoAmIResponse struct {
	UserID ref.UserID `json:"user_id"`
}

// EventType discriminates gateway events.
type EventType string

// Event types the bot subscribes to.
const (
	// EventTypeSelection is a user submitting a choice on a menu.
	EventTypeSelection EventType = "selection"
	// EventTypeArrival is a user joining a space.
	EventTypeArrival EventType = "arrival"
	// EventTypeCommand is a slash-command invocation.
	EventTypeCommand EventType = "command"
	// EventTypeSpaceUpdate carries a full space snapshot.
	EventTypeSpaceUpdate EventType = "space_update"
	// EventTypeSpaceRemove signals the bot lost access to a space.
	EventTypeSpaceRemove EventType = "space_remove"
)

// SelectionEvent is a user's submitted choice on a menu component:
// the set of options they want to hold, which may be empty (deselect
// everything). Consumed exactly once by the reconciliation engine.
type SelectionEvent struct {
	InteractionID string             `json:"interaction_id"`
	ChannelID     ref.ChannelID      `json:"channel_id"`
	MessageID     ref.MessageID      `json:"message_id"`
	MenuID        ref.MenuID         `json:"menu_id"`
	User          ref.UserID         `json:"user_id"`
	Selected      []ref.MembershipID `json:"selected_membership_ids"`
}

// ArrivalEvent is a user joining a space.
type ArrivalEvent struct {
	User ref.UserID `json:"user_id"`
}

// CommandEvent is a slash-command invocation. Options hold the
// resolved argument values keyed by option name; channel and
// membership arguments arrive as their raw IDs.
type CommandEvent struct {
	InteractionID string            `json:"interaction_id"`
	ChannelID     ref.ChannelID     `json:"channel_id"`
	User          ref.UserID        `json:"user_id"`
	Name          string            `json:"name"`
	Options       map[string]string `json:"options,omitempty"`
}

// Event is one gateway event. Type selects which payload field is
// populated; SpaceID identifies the originating space for every type
// except space_update (whose snapshot carries its own ID).
type Event struct {
	Type        EventType       `json:"type"`
	SpaceID     ref.SpaceID     `json:"space_id,omitempty"`
	Selection   *SelectionEvent `json:"selection,omitempty"`
	Arrival     *ArrivalEvent   `json:"arrival,omitempty"`
	Command     *CommandEvent   `json:"command,omitempty"`
	SpaceUpdate *Space          `json:"space_update,omitempty"`
}

// SyncOptions configures one long-poll against the event stream.
type SyncOptions struct {
	// Since is the position token from the previous response. Empty
	// requests the initial snapshot.
	Since string
	// Timeout is the long-poll timeout in milliseconds. The gateway
	// holds the connection open for this duration when no events are
	// available. Zero means the gateway default.
	Timeout int
}

// SyncResponse is one batch from the event stream.
type SyncResponse struct {
	// Next is the position token to pass as Since on the next call.
	Next string `json:"next"`
	// Events in arrival order.
	Events []Event `json:"events"`
}
