// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/VinylRUS/mahrgibrolebot/lib/codec"
	"github.com/VinylRUS/mahrgibrolebot/lib/guard"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
	"github.com/VinylRUS/mahrgibrolebot/lib/restore"
	"github.com/VinylRUS/mahrgibrolebot/lib/service"
	"github.com/VinylRUS/mahrgibrolebot/lib/store"
)

// registerActions wires the admin socket surface. Each action mirrors
// a slash command, minus the permission gate: socket access is
// controlled by the socket file itself.
func (b *Bot) registerActions(server *service.SocketServer) {
	server.Handle("status", b.actionStatus)
	server.Handle("list-menus", b.actionListMenus)
	server.Handle("remove-menu", b.actionRemoveMenu)
	server.Handle("reattach-menu", b.actionReattachMenu)
	server.Handle("set-join-role", b.actionSetJoinRole)
	server.Handle("clear-join-role", b.actionClearJoinRole)
}

// statusResult is the "status" action response.
type statusResult struct {
	UserID          string `cbor:"user_id"`
	UptimeSeconds   int64  `cbor:"uptime_seconds"`
	Spaces          int    `cbor:"spaces"`
	PersistedMenus  int    `cbor:"persisted_menus"`
	LiveMenus       int    `cbor:"live_menus"`
	DefaultJoinRole string `cbor:"default_join_role,omitempty"`
}

func (b *Bot) actionStatus(ctx context.Context, raw []byte) (any, error) {
	state := b.store.Load()
	result := statusResult{
		UserID:         b.session.UserID().String(),
		UptimeSeconds:  int64(b.clock.Now().Sub(b.startedAt) / time.Second),
		Spaces:         b.spaceCount(),
		PersistedMenus: len(state.Menus),
		LiveMenus:      b.liveCount(),
	}
	if !state.DefaultJoinMembership.IsZero() {
		result.DefaultJoinRole = state.DefaultJoinMembership.String()
	}
	return result, nil
}

// menuResult is one menu in the "list-menus" response.
type menuResult struct {
	MenuID      string   `cbor:"menu_id"`
	SpaceID     string   `cbor:"space_id"`
	ChannelID   string   `cbor:"channel_id"`
	MessageID   string   `cbor:"message_id"`
	Title       string   `cbor:"title"`
	Memberships []string `cbor:"membership_ids"`
	Live        bool     `cbor:"live"`
}

func (b *Bot) actionListMenus(ctx context.Context, raw []byte) (any, error) {
	state := b.store.Load()

	menus := make([]menuResult, 0, len(state.Menus))
	for _, definition := range state.Menus {
		_, live := b.liveMenu(definition.MenuID)
		result := menuResult{
			MenuID:    definition.MenuID.String(),
			SpaceID:   definition.SpaceID.String(),
			ChannelID: definition.ChannelID.String(),
			MessageID: definition.MessageID.String(),
			Title:     definition.Title,
			Live:      live,
		}
		for _, id := range definition.MembershipIDs {
			result.Memberships = append(result.Memberships, id.String())
		}
		menus = append(menus, result)
	}
	return map[string]any{"menus": menus}, nil
}

// menuRequest names one persisted menu by space and message.
type menuRequest struct {
	SpaceID   string `cbor:"space_id"`
	MessageID string `cbor:"message_id"`
}

func (r menuRequest) parse() (ref.SpaceID, ref.MessageID, error) {
	spaceID, err := ref.ParseSpaceID(r.SpaceID)
	if err != nil {
		return ref.SpaceID{}, ref.MessageID{}, fmt.Errorf("invalid space_id: %w", err)
	}
	messageID, err := ref.ParseMessageID(r.MessageID)
	if err != nil {
		return ref.SpaceID{}, ref.MessageID{}, fmt.Errorf("invalid message_id: %w", err)
	}
	return spaceID, messageID, nil
}

func (b *Bot) actionRemoveMenu(ctx context.Context, raw []byte) (any, error) {
	var request menuRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	spaceID, messageID, err := request.parse()
	if err != nil {
		return nil, err
	}

	found := false
	err = b.store.Mutate(func(state *store.State) error {
		found = state.RemoveMenu(spaceID, messageID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving the configuration: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("no menu attached to message %s in space %s", messageID, spaceID)
	}

	b.unregisterMenu(spaceID, messageID)
	return nil, nil
}

func (b *Bot) actionReattachMenu(ctx context.Context, raw []byte) (any, error) {
	var request menuRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	spaceID, messageID, err := request.parse()
	if err != nil {
		return nil, err
	}

	state := b.store.Load()
	definition, ok := state.FindMenu(spaceID, messageID)
	if !ok {
		return nil, fmt.Errorf("no menu attached to message %s in space %s", messageID, spaceID)
	}

	result := b.restorer().RestoreEntry(ctx, definition)
	if result.State != restore.Attached {
		return nil, fmt.Errorf("re-attach abandoned: %s", result.Reason)
	}
	return map[string]any{"memberships": len(result.Memberships)}, nil
}

func (b *Bot) actionSetJoinRole(ctx context.Context, raw []byte) (any, error) {
	var request struct {
		SpaceID      string `cbor:"space_id"`
		MembershipID string `cbor:"membership_id"`
	}
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	spaceID, err := ref.ParseSpaceID(request.SpaceID)
	if err != nil {
		return nil, fmt.Errorf("invalid space_id: %w", err)
	}
	membershipID, err := ref.ParseMembershipID(request.MembershipID)
	if err != nil {
		return nil, fmt.Errorf("invalid membership_id: %w", err)
	}

	space, ok := b.Space(spaceID)
	if !ok {
		return nil, fmt.Errorf("space %s not in directory", spaceID)
	}
	view := spaceView{space: space}
	if err := guard.EnsureAssignable(view, membershipID); err != nil {
		return nil, err
	}

	err = b.store.Mutate(func(state *store.State) error {
		state.DefaultJoinMembership = membershipID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving the configuration: %w", err)
	}
	return nil, nil
}

func (b *Bot) actionClearJoinRole(ctx context.Context, raw []byte) (any, error) {
	err := b.store.Mutate(func(state *store.State) error {
		state.DefaultJoinMembership = ref.MembershipID{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("saving the configuration: %w", err)
	}
	return nil, nil
}
