// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
	"github.com/VinylRUS/mahrgibrolebot/lib/secret"
)

// DirectSession is an authenticated gateway session. It wraps a Client
// with an access token for making authenticated API calls.
//
// The access token is stored in a secret.Buffer (mmap-backed, locked
// against swap, excluded from core dumps). The caller must call Close
// when the DirectSession is no longer needed.
type DirectSession struct {
	client      *Client
	accessToken *secret.Buffer
	userID      ref.UserID
}

// UserID returns the bot's own user ID. Zero until WhoAmI has
// succeeded once.
func (s *DirectSession) UserID() ref.UserID {
	return s.userID
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a sync error to force
// the next request to establish a fresh TCP connection.
func (s *DirectSession) CloseIdleConnections() {
	s.client.CloseIdleConnections()
}

// Close releases the access token memory (zeros, unlocks, unmaps).
// Idempotent — safe to call multiple times.
func (s *DirectSession) Close() error {
	if s.accessToken != nil {
		return s.accessToken.Close()
	}
	return nil
}

// WhoAmI validates the access token and returns the bot's own user
// ID, recording it on the session for later UserID calls.
func (s *DirectSession) WhoAmI(ctx context.Context) (ref.UserID, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/v1/self", s.accessToken, nil)
	if err != nil {
		return ref.UserID{}, fmt.Errorf("chat: whoami failed: %w", err)
	}

	var response whoAmIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.UserID{}, fmt.Errorf("chat: failed to parse whoami response: %w", err)
	}
	s.userID = response.UserID
	return response.UserID, nil
}

// FetchMessage fetches a message by ID from a channel. Returns a
// *GatewayError with ErrCodeNotFound when either the channel or the
// message no longer exists.
func (s *DirectSession) FetchMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID) (*Message, error) {
	path := "/v1/channels/" + channelID.String() + "/messages/" + messageID.String()
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("chat: fetch message %s in channel %s failed: %w", messageID, channelID, err)
	}

	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("chat: failed to parse message response: %w", err)
	}
	return &message, nil
}

// PostMenuMessage posts a new message carrying a menu component and
// returns the new message's ID.
func (s *DirectSession) PostMenuMessage(ctx context.Context, channelID ref.ChannelID, request PostMenuRequest) (ref.MessageID, error) {
	path := "/v1/channels/" + channelID.String() + "/messages"
	body, err := s.client.doRequest(ctx, http.MethodPost, path, s.accessToken, request)
	if err != nil {
		return ref.MessageID{}, fmt.Errorf("chat: post menu message to channel %s failed: %w", channelID, err)
	}

	var response postMessageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.MessageID{}, fmt.Errorf("chat: failed to parse post message response: %w", err)
	}

	s.client.logger.Info("posted menu message",
		"channel_id", channelID,
		"message_id", response.MessageID,
		"menu_id", request.Menu.MenuID,
	)
	return response.MessageID, nil
}

// UpdateMenuMessage replaces the menu component on an existing
// message.
func (s *DirectSession) UpdateMenuMessage(ctx context.Context, channelID ref.ChannelID, messageID ref.MessageID, menu MenuComponent) error {
	path := "/v1/channels/" + channelID.String() + "/messages/" + messageID.String()
	request := struct {
		Menu MenuComponent `json:"menu"`
	}{Menu: menu}
	if _, err := s.client.doRequest(ctx, http.MethodPatch, path, s.accessToken, request); err != nil {
		return fmt.Errorf("chat: update menu on message %s failed: %w", messageID, err)
	}
	return nil
}

// GrantMembership adds a membership to a space member. Idempotent on
// the gateway side: granting an already-held membership succeeds.
func (s *DirectSession) GrantMembership(ctx context.Context, spaceID ref.SpaceID, userID ref.UserID, membershipID ref.MembershipID) error {
	path := "/v1/spaces/" + spaceID.String() + "/members/" + userID.String() + "/memberships/" + membershipID.String()
	if _, err := s.client.doRequest(ctx, http.MethodPut, path, s.accessToken, struct{}{}); err != nil {
		return fmt.Errorf("chat: grant membership %s to %s in space %s failed: %w", membershipID, userID, spaceID, err)
	}
	return nil
}

// RevokeMembership removes a membership from a space member.
// Idempotent: revoking a membership the user does not hold succeeds.
func (s *DirectSession) RevokeMembership(ctx context.Context, spaceID ref.SpaceID, userID ref.UserID, membershipID ref.MembershipID) error {
	path := "/v1/spaces/" + spaceID.String() + "/members/" + userID.String() + "/memberships/" + membershipID.String()
	if _, err := s.client.doRequest(ctx, http.MethodDelete, path, s.accessToken, nil); err != nil {
		return fmt.Errorf("chat: revoke membership %s from %s in space %s failed: %w", membershipID, userID, spaceID, err)
	}
	return nil
}

// SpaceSnapshot fetches the current state of a space: channels,
// memberships, and the bot's own member record.
func (s *DirectSession) SpaceSnapshot(ctx context.Context, spaceID ref.SpaceID) (*Space, error) {
	path := "/v1/spaces/" + spaceID.String()
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("chat: fetch space %s failed: %w", spaceID, err)
	}

	var space Space
	if err := json.Unmarshal(body, &space); err != nil {
		return nil, fmt.Errorf("chat: failed to parse space response: %w", err)
	}
	return &space, nil
}

// Member fetches a user's current member record in a space.
func (s *DirectSession) Member(ctx context.Context, spaceID ref.SpaceID, userID ref.UserID) (*Member, error) {
	path := "/v1/spaces/" + spaceID.String() + "/members/" + userID.String()
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("chat: fetch member %s in space %s failed: %w", userID, spaceID, err)
	}

	var member Member
	if err := json.Unmarshal(body, &member); err != nil {
		return nil, fmt.Errorf("chat: failed to parse member response: %w", err)
	}
	return &member, nil
}

// RespondEphemeral sends a private reply to the user behind an
// interaction. Only that user sees it. Interactions expire on the
// gateway side, so a late response returns ErrCodeNotFound — callers
// log and move on.
func (s *DirectSession) RespondEphemeral(ctx context.Context, interactionID, content string) error {
	path := "/v1/interactions/" + url.PathEscape(interactionID) + "/respond"
	request := struct {
		Content   string `json:"content"`
		Ephemeral bool   `json:"ephemeral"`
	}{Content: content, Ephemeral: true}
	if _, err := s.client.doRequest(ctx, http.MethodPost, path, s.accessToken, request); err != nil {
		return fmt.Errorf("chat: respond to interaction %s failed: %w", interactionID, err)
	}
	return nil
}

// Sync performs one long-poll against the event stream. An empty
// Since requests the initial snapshot: one space_update event per
// space the bot is currently in.
func (s *DirectSession) Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error) {
	query := url.Values{}
	if options.Since != "" {
		query.Set("since", options.Since)
	}
	if options.Timeout > 0 {
		query.Set("timeout_ms", strconv.Itoa(options.Timeout))
	}

	body, err := s.client.doRequest(ctx, http.MethodGet, "/v1/events", s.accessToken, nil, query)
	if err != nil {
		return nil, fmt.Errorf("chat: sync failed: %w", err)
	}

	var response SyncResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("chat: failed to parse sync response: %w", err)
	}
	return &response, nil
}
