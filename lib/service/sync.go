// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/VinylRUS/mahrgibrolebot/chat"
	"github.com/VinylRUS/mahrgibrolebot/lib/clock"
)

// SyncConfig configures the event-stream long-poll loop.
type SyncConfig struct {
	// Timeout is the long-poll timeout in milliseconds. The gateway
	// holds the connection open for this duration when no events are
	// available, then returns an empty batch. Default: 30000 (30s).
	Timeout int

	// MaxBackoff is the maximum duration between retry attempts on
	// transient sync errors. The loop uses exponential backoff
	// starting at 1 second. Default: 30 seconds.
	MaxBackoff time.Duration
}

// SyncHandler is called for each event batch. The next poll starts
// after the handler returns, so handlers should not block for
// extended periods.
type SyncHandler func(ctx context.Context, response *chat.SyncResponse)

// InitialSync performs the first sync with no position token to
// obtain the full snapshot: one space_update event per space the bot
// is in. Returns the position token for the incremental loop and the
// snapshot for the caller to build initial state from.
func InitialSync(ctx context.Context, session chat.Session) (string, *chat.SyncResponse, error) {
	response, err := session.Sync(ctx, chat.SyncOptions{})
	if err != nil {
		return "", nil, fmt.Errorf("initial sync: %w", err)
	}
	return response.Next, response, nil
}

// RunSyncLoop runs the incremental long-poll loop. It polls the
// gateway from the given position token and calls handler for each
// batch. The loop continues until ctx is cancelled.
//
// On transient errors, the loop retries with exponential backoff
// (1 second to config.MaxBackoff). On context cancellation (service
// shutdown), the loop returns cleanly.
//
// The caller performs the initial sync (via InitialSync) and
// processes that snapshot before starting this loop, so initial state
// (the space directory, restored menus) is built synchronously before
// the event-driven phase begins.
func RunSyncLoop(ctx context.Context, session chat.Session, config SyncConfig, sinceToken string, handler SyncHandler, clk clock.Clock, logger *slog.Logger) {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30000
	}
	maxBackoff := config.MaxBackoff
	if maxBackoff == 0 {
		maxBackoff = 30 * time.Second
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		response, err := session.Sync(ctx, chat.SyncOptions{
			Since:   sinceToken,
			Timeout: timeout,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// TCP-level errors (connection reset, EOF) often indicate
			// a poisoned connection in Go's HTTP pool. Drop idle
			// connections so the next attempt opens a fresh socket.
			if closer, ok := session.(interface{ CloseIdleConnections() }); ok {
				closer.CloseIdleConnections()
			}
			logger.Error("sync failed, retrying", "error", err, "backoff", backoff)
			select {
			case <-ctx.Done():
				return
			case <-clk.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		backoff = time.Second
		sinceToken = response.Next

		handler(ctx, response)
	}
}
