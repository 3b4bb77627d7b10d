// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the runtime plumbing shared by the bot
// binary: the gateway sync loop with backoff, and the CBOR admin
// protocol served over a Unix socket.
//
// The sync loop is deliberately dumb: it long-polls the event stream,
// hands each batch to a handler, and retries with exponential backoff
// on transient failures. All event interpretation lives in the
// handler.
//
// The admin socket speaks a one-request-per-connection CBOR protocol.
// Each request is a map with an "action" field; the response envelope
// is Response{ok, error, data}. AdminClient is the matching client
// used by the operator CLI.
package service
