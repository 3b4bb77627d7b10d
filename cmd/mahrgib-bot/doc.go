// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// The mahrgib-bot service lets community members assign their own
// roles. It posts persistent selection menus into channels, grants
// and revokes space memberships as users submit selections, hands a
// default membership to every arriving member, and re-attaches its
// menus to their messages after a restart.
//
// Administrators manage the bot two ways: slash commands in the chat
// platform (create-role-menu, set-join-role, ...) and a CBOR admin
// socket spoken by the mahrgib CLI.
//
// Startup order: configuration, access token, gateway session
// validation, initial sync snapshot, menu restoration, admin socket,
// incremental sync loop.
package main
