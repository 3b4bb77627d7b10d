// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/VinylRUS/mahrgibrolebot/chat"
	"github.com/VinylRUS/mahrgibrolebot/lib/clock"
	"github.com/VinylRUS/mahrgibrolebot/lib/menu"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
	"github.com/VinylRUS/mahrgibrolebot/lib/restore"
	"github.com/VinylRUS/mahrgibrolebot/lib/store"
)

// Bot is the core service state: the space directory built from
// gateway snapshots and the registry of live menus. Both are owned by
// the single event-dispatch goroutine plus the admin socket handlers,
// so access goes through mu.
type Bot struct {
	session   chat.Session
	store     *store.Store
	clock     clock.Clock
	logger    *slog.Logger
	startedAt time.Time

	mu sync.Mutex
	// spaces is the directory: the latest snapshot per space.
	spaces map[ref.SpaceID]*chat.Space
	// live maps menu IDs to their definitions for selection routing.
	// Only attached menus appear here; a persisted menu whose
	// restoration was abandoned receives no selections.
	live map[ref.MenuID]menu.Definition
}

func newBot(session chat.Session, menuStore *store.Store, clk clock.Clock, logger *slog.Logger) *Bot {
	return &Bot{
		session:   session,
		store:     menuStore,
		clock:     clk,
		logger:    logger,
		startedAt: clk.Now(),
		spaces:    make(map[ref.SpaceID]*chat.Space),
		live:      make(map[ref.MenuID]menu.Definition),
	}
}

// handleSync processes one event batch. Events are handled one at a
// time in arrival order; handlers issue gateway calls inline.
func (b *Bot) handleSync(ctx context.Context, response *chat.SyncResponse) {
	for _, event := range response.Events {
		switch event.Type {
		case chat.EventTypeSpaceUpdate:
			if event.SpaceUpdate == nil {
				continue
			}
			b.setSpace(event.SpaceUpdate)
		case chat.EventTypeSpaceRemove:
			b.removeSpace(event.SpaceID)
		case chat.EventTypeSelection:
			if event.Selection == nil {
				continue
			}
			b.handleSelection(ctx, event.SpaceID, event.Selection)
		case chat.EventTypeArrival:
			if event.Arrival == nil {
				continue
			}
			b.handleArrival(ctx, event.SpaceID, event.Arrival)
		case chat.EventTypeCommand:
			if event.Command == nil {
				continue
			}
			b.handleCommand(ctx, event.SpaceID, event.Command)
		default:
			b.logger.Debug("ignoring event", "type", event.Type)
		}
	}
}

func (b *Bot) setSpace(space *chat.Space) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spaces[space.ID] = space
}

// removeSpace drops the directory entry and every live menu in the
// space. The persisted document keeps its entries: if the bot is
// re-invited, the next restart restores them.
func (b *Bot) removeSpace(spaceID ref.SpaceID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.spaces, spaceID)
	for menuID, definition := range b.live {
		if definition.SpaceID == spaceID {
			delete(b.live, menuID)
		}
	}
	b.logger.Info("space removed", "space_id", spaceID)
}

// Space returns the directory snapshot for a space. Implements
// restore.SpaceResolver.
func (b *Bot) Space(id ref.SpaceID) (*chat.Space, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	space, ok := b.spaces[id]
	return space, ok
}

func (b *Bot) spaceCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.spaces)
}

// registerMenu adds a menu to the live registry.
func (b *Bot) registerMenu(definition menu.Definition) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.live[definition.MenuID] = definition
}

// unregisterMenu drops a live menu by its message. Selections for it
// are ignored from now on.
func (b *Bot) unregisterMenu(spaceID ref.SpaceID, messageID ref.MessageID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for menuID, definition := range b.live {
		if definition.SpaceID == spaceID && definition.MessageID == messageID {
			delete(b.live, menuID)
		}
	}
}

func (b *Bot) liveMenu(menuID ref.MenuID) (menu.Definition, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	definition, ok := b.live[menuID]
	return definition, ok
}

func (b *Bot) liveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

// spaceView adapts a directory snapshot to guard.SpaceView.
type spaceView struct {
	space *chat.Space
}

func (v spaceView) Actor() chat.Member { return v.space.Actor }

func (v spaceView) Membership(id ref.MembershipID) (chat.Membership, bool) {
	for _, membership := range v.space.Memberships {
		if membership.ID == id {
			return membership, true
		}
	}
	return chat.Membership{}, false
}

// membershipName resolves a membership's display name, falling back
// to the raw ID when it no longer exists.
func (v spaceView) membershipName(id ref.MembershipID) string {
	if membership, ok := v.Membership(id); ok {
		return membership.Name
	}
	return id.String()
}

// restorer builds the restoration walker. Attach refreshes the
// message's control to the surviving candidate set and registers the
// menu for selection routing.
func (b *Bot) restorer() *restore.Restorer {
	return &restore.Restorer{
		Spaces:   b,
		Messages: b.session,
		Attach: func(ctx context.Context, definition menu.Definition, memberships []chat.Membership) error {
			component := chat.MenuComponent{
				MenuID:      definition.MenuID,
				Placeholder: definition.Title,
			}
			for _, membership := range memberships {
				component.Options = append(component.Options, chat.MenuOption{
					Membership: membership.ID,
					Label:      membership.Name,
				})
			}
			if err := b.session.UpdateMenuMessage(ctx, definition.ChannelID, definition.MessageID, component); err != nil {
				return err
			}
			b.registerMenu(definition)
			return nil
		},
		Logger: b.logger,
	}
}

// restoreMenus re-attaches every persisted menu. Returns the number
// attached.
func (b *Bot) restoreMenus(ctx context.Context, definitions []menu.Definition) int {
	return b.restorer().RestoreAll(ctx, definitions)
}
