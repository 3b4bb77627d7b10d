// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// The mahrgib CLI administers a running mahrgib-bot over its admin
// socket. Every subcommand maps onto one socket action.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/VinylRUS/mahrgibrolebot/lib/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	subcommand := os.Args[1]
	args := os.Args[2:]
	switch subcommand {
	case "status":
		return runStatus(args)
	case "list":
		return runList(args)
	case "remove":
		return runRemove(args)
	case "reattach":
		return runReattach(args)
	case "set-join-role":
		return runSetJoinRole(args)
	case "clear-join-role":
		return runClearJoinRole(args)
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: mahrgib <subcommand> [flags]

Subcommands:
  status           Show bot status
  list             List persisted role menus
  remove           Remove the role menu on a message
  reattach         Re-attach the role menu on a message
  set-join-role    Set the membership granted to arriving members
  clear-join-role  Stop granting a membership to arriving members

Run 'mahrgib <subcommand> --help' for subcommand flags.
`)
}

// defaultSocketPath mirrors the service default so the CLI works out
// of the box on the same machine.
func defaultSocketPath() string {
	if path := os.Getenv("MAHRGIB_SOCKET"); path != "" {
		return path
	}
	homeDir, _ := os.UserHomeDir()
	return homeDir + "/.local/state/mahrgib/admin.sock"
}

// newFlagSet creates a pflag set with the shared --socket flag.
func newFlagSet(name string, socketPath *string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringVar(socketPath, "socket", defaultSocketPath(), "admin socket path")
	return flags
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func runStatus(args []string) error {
	var (
		socketPath string
		outputJSON bool
	)
	flags := newFlagSet("status", &socketPath)
	flags.BoolVar(&outputJSON, "json", false, "output as JSON instead of text")
	if err := flags.Parse(args); err != nil {
		return err
	}

	ctx, cancel := callContext()
	defer cancel()

	var status struct {
		UserID          string `cbor:"user_id" json:"user_id"`
		UptimeSeconds   int64  `cbor:"uptime_seconds" json:"uptime_seconds"`
		Spaces          int    `cbor:"spaces" json:"spaces"`
		PersistedMenus  int    `cbor:"persisted_menus" json:"persisted_menus"`
		LiveMenus       int    `cbor:"live_menus" json:"live_menus"`
		DefaultJoinRole string `cbor:"default_join_role" json:"default_join_role,omitempty"`
	}
	client := service.NewAdminClient(socketPath)
	if err := client.Call(ctx, "status", nil, &status); err != nil {
		return err
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(status)
	}

	fmt.Printf("user:            %s\n", status.UserID)
	fmt.Printf("uptime:          %s\n", time.Duration(status.UptimeSeconds)*time.Second)
	fmt.Printf("spaces:          %d\n", status.Spaces)
	fmt.Printf("persisted menus: %d\n", status.PersistedMenus)
	fmt.Printf("live menus:      %d\n", status.LiveMenus)
	if status.DefaultJoinRole != "" {
		fmt.Printf("join role:       %s\n", status.DefaultJoinRole)
	} else {
		fmt.Printf("join role:       (none)\n")
	}
	return nil
}

func runList(args []string) error {
	var (
		socketPath string
		outputJSON bool
	)
	flags := newFlagSet("list", &socketPath)
	flags.BoolVar(&outputJSON, "json", false, "output as JSON instead of a table")
	if err := flags.Parse(args); err != nil {
		return err
	}

	ctx, cancel := callContext()
	defer cancel()

	type menuEntry struct {
		MenuID      string   `cbor:"menu_id" json:"menu_id"`
		SpaceID     string   `cbor:"space_id" json:"space_id"`
		ChannelID   string   `cbor:"channel_id" json:"channel_id"`
		MessageID   string   `cbor:"message_id" json:"message_id"`
		Title       string   `cbor:"title" json:"title"`
		Memberships []string `cbor:"membership_ids" json:"membership_ids"`
		Live        bool     `cbor:"live" json:"live"`
	}
	var result struct {
		Menus []menuEntry `cbor:"menus" json:"menus"`
	}
	client := service.NewAdminClient(socketPath)
	if err := client.Call(ctx, "list-menus", nil, &result); err != nil {
		return err
	}

	if outputJSON {
		if result.Menus == nil {
			result.Menus = []menuEntry{}
		}
		return json.NewEncoder(os.Stdout).Encode(result.Menus)
	}

	if len(result.Menus) == 0 {
		fmt.Println("no role menus")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "SPACE\tMESSAGE\tTITLE\tROLES\tLIVE")
	for _, entry := range result.Menus {
		live := "no"
		if entry.Live {
			live = "yes"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			entry.SpaceID, entry.MessageID, entry.Title,
			strings.Join(entry.Memberships, ","), live)
	}
	return writer.Flush()
}

// menuFields parses the shared --space/--message pair used by remove
// and reattach.
func menuFields(flags *pflag.FlagSet, spaceID, messageID *string) {
	flags.StringVar(spaceID, "space", "", "space ID (required)")
	flags.StringVar(messageID, "message", "", "message ID (required)")
}

func requireMenuFields(spaceID, messageID string) (map[string]any, error) {
	if spaceID == "" {
		return nil, fmt.Errorf("--space is required")
	}
	if messageID == "" {
		return nil, fmt.Errorf("--message is required")
	}
	return map[string]any{
		"space_id":   spaceID,
		"message_id": messageID,
	}, nil
}

func runRemove(args []string) error {
	var socketPath, spaceID, messageID string
	flags := newFlagSet("remove", &socketPath)
	menuFields(flags, &spaceID, &messageID)
	if err := flags.Parse(args); err != nil {
		return err
	}
	fields, err := requireMenuFields(spaceID, messageID)
	if err != nil {
		return err
	}

	ctx, cancel := callContext()
	defer cancel()

	client := service.NewAdminClient(socketPath)
	if err := client.Call(ctx, "remove-menu", fields, nil); err != nil {
		return err
	}
	fmt.Println("menu removed")
	return nil
}

func runReattach(args []string) error {
	var socketPath, spaceID, messageID string
	flags := newFlagSet("reattach", &socketPath)
	menuFields(flags, &spaceID, &messageID)
	if err := flags.Parse(args); err != nil {
		return err
	}
	fields, err := requireMenuFields(spaceID, messageID)
	if err != nil {
		return err
	}

	ctx, cancel := callContext()
	defer cancel()

	var result struct {
		Memberships int `cbor:"memberships"`
	}
	client := service.NewAdminClient(socketPath)
	if err := client.Call(ctx, "reattach-menu", fields, &result); err != nil {
		return err
	}
	fmt.Printf("menu re-attached with %d roles\n", result.Memberships)
	return nil
}

func runSetJoinRole(args []string) error {
	var socketPath, spaceID, membershipID string
	flags := newFlagSet("set-join-role", &socketPath)
	flags.StringVar(&spaceID, "space", "", "space ID (required)")
	flags.StringVar(&membershipID, "role", "", "membership ID to grant on arrival (required)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if spaceID == "" {
		return fmt.Errorf("--space is required")
	}
	if membershipID == "" {
		return fmt.Errorf("--role is required")
	}

	ctx, cancel := callContext()
	defer cancel()

	client := service.NewAdminClient(socketPath)
	fields := map[string]any{
		"space_id":      spaceID,
		"membership_id": membershipID,
	}
	if err := client.Call(ctx, "set-join-role", fields, nil); err != nil {
		return err
	}
	fmt.Println("join role set")
	return nil
}

func runClearJoinRole(args []string) error {
	var socketPath string
	flags := newFlagSet("clear-join-role", &socketPath)
	if err := flags.Parse(args); err != nil {
		return err
	}

	ctx, cancel := callContext()
	defer cancel()

	client := service.NewAdminClient(socketPath)
	if err := client.Call(ctx, "clear-join-role", nil, nil); err != nil {
		return err
	}
	fmt.Println("join role cleared")
	return nil
}
