// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/VinylRUS/mahrgibrolebot/chat"
	"github.com/VinylRUS/mahrgibrolebot/lib/clock"
	"github.com/VinylRUS/mahrgibrolebot/lib/config"
	"github.com/VinylRUS/mahrgibrolebot/lib/secret"
	"github.com/VinylRUS/mahrgibrolebot/lib/service"
	"github.com/VinylRUS/mahrgibrolebot/lib/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		debug      bool
	)

	flag.StringVar(&configPath, "config", "", "path to mahrgib.yaml (default: $MAHRGIB_CONFIG)")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The access token goes straight into locked memory and stays
	// there for the life of the session.
	token, err := secret.ReadFromPath(cfg.Gateway.TokenFile)
	if err != nil {
		return fmt.Errorf("reading access token: %w", err)
	}

	client, err := chat.NewClient(chat.ClientConfig{
		GatewayURL: cfg.Gateway.URL,
		Logger:     logger,
	})
	if err != nil {
		token.Close()
		return err
	}
	session, err := client.SessionFromToken(token)
	if err != nil {
		token.Close()
		return err
	}
	defer session.Close()

	userID, err := session.WhoAmI(ctx)
	if err != nil {
		return fmt.Errorf("validating gateway session: %w", err)
	}
	logger.Info("gateway session valid", "user_id", userID)

	menuStore := store.Open(cfg.DocumentPath(), logger)
	clk := clock.Real()

	bot := newBot(session, menuStore, clk, logger)

	// Initial sync: full space snapshots, no events yet.
	sinceToken, snapshot, err := service.InitialSync(ctx, session)
	if err != nil {
		return err
	}
	bot.handleSync(ctx, snapshot)
	logger.Info("space directory built", "spaces", bot.spaceCount())

	// Re-attach persisted menus to their live messages.
	state := menuStore.Load()
	attached := bot.restoreMenus(ctx, state.Menus)
	logger.Info("menu restoration complete",
		"persisted", len(state.Menus),
		"attached", attached,
	)

	// Admin socket for the mahrgib CLI.
	socketServer := service.NewSocketServer(cfg.Socket.Path, logger)
	bot.registerActions(socketServer)

	socketDone := make(chan error, 1)
	go func() {
		socketDone <- socketServer.Serve(ctx)
	}()

	go service.RunSyncLoop(ctx, session, service.SyncConfig{
		Timeout: cfg.Gateway.SyncTimeoutMS,
	}, sinceToken, bot.handleSync, clk, logger)

	logger.Info("mahrgib-bot running",
		"user_id", userID,
		"socket", cfg.Socket.Path,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	if err := <-socketDone; err != nil {
		logger.Error("admin socket error", "error", err)
	}
	return nil
}
