// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the bot's standard CBOR encoding
// configuration.
//
// The bot uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: the chat-platform gateway API,
//     the persisted role-menu document, and CLI --json output.
//   - CBOR for the internal admin protocol: the Unix socket the
//     operator CLI speaks to a running bot.
//
// This package provides the shared CBOR encoding and decoding modes so
// that both ends of the socket encode identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (the socket):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
