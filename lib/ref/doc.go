// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable identity references
// for the chat platform objects the bot works with: spaces, channels,
// messages, users, and memberships, plus the bot's own menu IDs.
//
// Platform identifiers are server-assigned opaque decimal strings
// ("snowflakes"). The parse functions validate structure only — a
// well-formed ID says nothing about whether the referent still exists.
// Resolution happens at point of use against the live space directory.
//
// Menu IDs are generated locally ([NewMenuID], a random UUID) and are
// the stable key binding a persisted menu definition to its live
// interactive behavior across restarts, independent of the message the
// menu is attached to.
//
// All types are immutable value types. The zero value is not valid;
// use IsZero to check. JSON marshaling uses the raw string form via
// encoding.TextMarshaler.
package ref
