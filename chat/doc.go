// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat wraps the platform gateway's REST API for the bot's
// needs: fetching and posting messages, granting and revoking
// memberships, reading space state, and receiving events.
//
// The package provides two core types. [Client] holds the gateway URL
// and HTTP transport, shared across all Sessions derived from it.
// [Session] is the authenticated operation set the rest of the bot
// consumes; [DirectSession] is its production implementation, holding
// the access token in mmap-backed secret.Buffer memory (locked against
// swap, excluded from core dumps). Callers must call Session.Close to
// release the protected memory.
//
// Events (menu selections, member arrivals, slash-command invocations,
// space snapshots) arrive through [Session.Sync], a long-poll: the
// gateway holds the request open until events are available or the
// timeout elapses. The first sync with an empty position token returns
// a space_update event for every space the bot belongs to — that
// snapshot seeds the local space directory before menu restoration
// runs.
//
// All API errors are returned as [*GatewayError] with the gateway's
// error code (forbidden, not_found, etc.) and HTTP status code.
// [IsGatewayError] tests for a specific code. Request URLs are built
// by string concatenation: every path segment is a validated ref ID,
// so there is nothing to escape.
//
// Connection management, authentication handshakes, and rate limiting
// are the gateway's concern. This package surfaces a rate-limited call
// as a *GatewayError with ErrCodeRateLimited and does not retry.
package chat
