// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/VinylRUS/mahrgibrolebot/chat"
	"github.com/VinylRUS/mahrgibrolebot/lib/guard"
	"github.com/VinylRUS/mahrgibrolebot/lib/menu"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
	"github.com/VinylRUS/mahrgibrolebot/lib/restore"
	"github.com/VinylRUS/mahrgibrolebot/lib/store"
)

// handleCommand dispatches one slash-command invocation. Every
// command is gated on the invoker's admin standing, checked fresh
// against the gateway at invocation time.
func (b *Bot) handleCommand(ctx context.Context, spaceID ref.SpaceID, command *chat.CommandEvent) {
	space, ok := b.Space(spaceID)
	if !ok {
		b.logger.Warn("command in unknown space",
			"command", command.Name,
			"space_id", spaceID,
		)
		return
	}
	view := spaceView{space: space}

	invoker, err := b.session.Member(ctx, spaceID, command.User)
	if err != nil {
		b.logger.Error("failed to fetch command invoker",
			"command", command.Name,
			"user_id", command.User,
			"error", err,
		)
		b.respond(ctx, command.InteractionID, "Something went wrong, try again.")
		return
	}
	if err := guard.EnsureAdministrator(*invoker); err != nil {
		b.respond(ctx, command.InteractionID, "You need the manage-memberships permission to use this command.")
		return
	}

	var reply string
	switch command.Name {
	case "set-join-role":
		reply = b.setJoinRole(ctx, view, command.Options)
	case "clear-join-role":
		reply = b.clearJoinRole(ctx)
	case "create-role-menu":
		reply = b.createRoleMenu(ctx, spaceID, view, command.Options)
	case "list-role-menus":
		reply = b.listRoleMenus(spaceID, view)
	case "remove-role-menu":
		reply = b.removeRoleMenu(ctx, spaceID, command.Options)
	case "re-attach-role-menu":
		reply = b.reattachRoleMenu(ctx, spaceID, command.Options)
	default:
		b.logger.Warn("unknown command", "command", command.Name)
		return
	}

	b.respond(ctx, command.InteractionID, reply)
}

// setJoinRole stores the default join membership after checking that
// the bot can actually grant it.
func (b *Bot) setJoinRole(ctx context.Context, view spaceView, options map[string]string) string {
	membershipID, err := ref.ParseMembershipID(options["role"])
	if err != nil {
		return "That is not a valid role."
	}
	if err := guard.EnsureAssignable(view, membershipID); err != nil {
		return fmt.Sprintf("I cannot grant %s: %v", view.membershipName(membershipID), err)
	}

	err = b.store.Mutate(func(state *store.State) error {
		state.DefaultJoinMembership = membershipID
		return nil
	})
	if err != nil {
		b.logger.Error("failed to save join role", "error", err)
		return "Saving the configuration failed; the join role is unchanged."
	}
	return fmt.Sprintf("New members will now receive %s.", view.membershipName(membershipID))
}

func (b *Bot) clearJoinRole(ctx context.Context) string {
	err := b.store.Mutate(func(state *store.State) error {
		state.DefaultJoinMembership = ref.MembershipID{}
		return nil
	})
	if err != nil {
		b.logger.Error("failed to clear join role", "error", err)
		return "Saving the configuration failed; the join role is unchanged."
	}
	return "New members will no longer receive a role automatically."
}

// createRoleMenu validates the candidate roles, posts the menu
// message, persists the definition, and registers it for selection
// routing.
func (b *Bot) createRoleMenu(ctx context.Context, spaceID ref.SpaceID, view spaceView, options map[string]string) string {
	channelID, err := ref.ParseChannelID(options["channel"])
	if err != nil {
		return "That is not a valid channel."
	}
	title := options["title"]

	// Roles arrive as role1..role10; gather them in argument order.
	var membershipIDs []ref.MembershipID
	for i := 1; i <= menu.MaxMemberships; i++ {
		raw, ok := options[fmt.Sprintf("role%d", i)]
		if !ok {
			continue
		}
		id, err := ref.ParseMembershipID(raw)
		if err != nil {
			return fmt.Sprintf("Role argument %d is not a valid role.", i)
		}
		membershipIDs = append(membershipIDs, id)
	}

	definition, err := menu.New(spaceID, channelID, title, membershipIDs)
	if err != nil {
		return fmt.Sprintf("Cannot create that menu: %v", err)
	}

	// Every offered role must be grantable right now; a menu offering
	// roles the bot cannot touch would only produce failures later.
	for _, id := range definition.MembershipIDs {
		if err := guard.EnsureAssignable(view, id); err != nil {
			return fmt.Sprintf("I cannot grant %s: %v", view.membershipName(id), err)
		}
	}

	component := chat.MenuComponent{
		MenuID:      definition.MenuID,
		Placeholder: title,
	}
	for _, id := range definition.MembershipIDs {
		component.Options = append(component.Options, chat.MenuOption{
			Membership: id,
			Label:      view.membershipName(id),
		})
	}

	messageID, err := b.session.PostMenuMessage(ctx, channelID, chat.PostMenuRequest{
		Title: title,
		Menu:  component,
	})
	if err != nil {
		b.logger.Error("failed to post menu message",
			"channel_id", channelID,
			"error", err,
		)
		return "Posting the menu message failed."
	}
	definition.MessageID = messageID

	err = b.store.Mutate(func(state *store.State) error {
		return state.AddMenu(definition)
	})
	if err != nil {
		// The message is up but the definition is not persisted: the
		// menu dies at the next restart. Tell the admin exactly that.
		b.logger.Error("failed to persist menu", "menu_id", definition.MenuID, "error", err)
		return "The menu was posted but saving it failed; it will not survive a restart. Remove the message and try again."
	}

	b.registerMenu(definition)
	return fmt.Sprintf("Role menu created in <#%s> with %d roles.", channelID, len(definition.MembershipIDs))
}

// listRoleMenus renders the persisted menus for one space, marking
// channels that no longer resolve.
func (b *Bot) listRoleMenus(spaceID ref.SpaceID, view spaceView) string {
	state := b.store.Load()

	var lines []string
	for _, definition := range state.Menus {
		if definition.SpaceID != spaceID {
			continue
		}
		channel := "deleted channel"
		for _, c := range view.space.Channels {
			if c.ID == definition.ChannelID {
				channel = "#" + c.Name
				break
			}
		}
		names := make([]string, len(definition.MembershipIDs))
		for i, id := range definition.MembershipIDs {
			names[i] = view.membershipName(id)
		}
		lines = append(lines, fmt.Sprintf("%s (message %s, %s): %s",
			definition.Title, definition.MessageID, channel, strings.Join(names, ", ")))
	}

	if len(lines) == 0 {
		return "No role menus configured in this space."
	}
	return strings.Join(lines, "\n")
}

// removeRoleMenu deletes a menu by its message ID and stops routing
// its selections. The message itself stays up; deleting it is the
// admin's call.
func (b *Bot) removeRoleMenu(ctx context.Context, spaceID ref.SpaceID, options map[string]string) string {
	messageID, err := ref.ParseMessageID(options["message"])
	if err != nil {
		return "That is not a valid message ID."
	}

	found := false
	err = b.store.Mutate(func(state *store.State) error {
		found = state.RemoveMenu(spaceID, messageID)
		return nil
	})
	if err != nil {
		b.logger.Error("failed to save menu removal", "error", err)
		return "Saving the configuration failed; the menu is unchanged."
	}
	if !found {
		return "No role menu is attached to that message."
	}

	b.unregisterMenu(spaceID, messageID)
	return "Role menu removed."
}

// reattachRoleMenu re-runs restoration for one persisted menu and
// reports the terminal state.
func (b *Bot) reattachRoleMenu(ctx context.Context, spaceID ref.SpaceID, options map[string]string) string {
	messageID, err := ref.ParseMessageID(options["message"])
	if err != nil {
		return "That is not a valid message ID."
	}

	state := b.store.Load()
	definition, ok := state.FindMenu(spaceID, messageID)
	if !ok {
		return "No role menu is attached to that message."
	}

	result := b.restorer().RestoreEntry(ctx, definition)
	if result.State == restore.Attached {
		return fmt.Sprintf("Menu re-attached with %d roles.", len(result.Memberships))
	}
	return fmt.Sprintf("Could not re-attach the menu: %s.", result.Reason)
}
