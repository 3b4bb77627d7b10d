// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/VinylRUS/mahrgibrolebot/lib/codec"
	"github.com/VinylRUS/mahrgibrolebot/lib/testutil"
)

// startServer runs a SocketServer with the given handlers and returns
// its socket path. The server is shut down when the test completes.
func startServer(t *testing.T, register func(*SocketServer)) string {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "admin.sock")

	server := NewSocketServer(socketPath, discardLogger())
	register(server)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Serve(ctx); err != nil {
			t.Errorf("Serve failed: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		testutil.RequireClosed(t, done, 5*time.Second, "server shutdown")
	})

	// Wait for the socket to appear.
	deadline := time.Now().Add(5 * time.Second)
	for {
		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return socketPath
		}
		if time.Now().After(deadline) {
			t.Fatalf("socket never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSocketRoundTrip(t *testing.T) {
	type statusData struct {
		Menus int `cbor:"menus"`
	}

	socketPath := startServer(t, func(server *SocketServer) {
		server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
			return statusData{Menus: 3}, nil
		})
	})

	client := NewAdminClient(socketPath)
	var result statusData
	if err := client.Call(context.Background(), "status", nil, &result); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result.Menus != 3 {
		t.Errorf("menus = %d, want 3", result.Menus)
	}
}

func TestSocketHandlerReceivesFields(t *testing.T) {
	received := make(chan string, 1)
	socketPath := startServer(t, func(server *SocketServer) {
		server.Handle("remove-menu", func(ctx context.Context, raw []byte) (any, error) {
			var request struct {
				MessageID string `cbor:"message_id"`
			}
			if err := codec.Unmarshal(raw, &request); err != nil {
				return nil, err
			}
			received <- request.MessageID
			return nil, nil
		})
	})

	client := NewAdminClient(socketPath)
	fields := map[string]any{"message_id": "300000000000000001"}
	if err := client.Call(context.Background(), "remove-menu", fields, nil); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	got := testutil.RequireReceive(t, received, time.Second, "handler invocation")
	if got != "300000000000000001" {
		t.Errorf("message_id = %q", got)
	}
}

func TestSocketHandlerError(t *testing.T) {
	socketPath := startServer(t, func(server *SocketServer) {
		server.Handle("fail", func(ctx context.Context, raw []byte) (any, error) {
			return nil, fmt.Errorf("menu not found")
		})
	})

	client := NewAdminClient(socketPath)
	err := client.Call(context.Background(), "fail", nil, nil)
	if err == nil {
		t.Fatal("expected error from failing handler")
	}
	var adminErr *AdminError
	if !errors.As(err, &adminErr) {
		t.Fatalf("expected *AdminError, got %T: %v", err, err)
	}
	if adminErr.Action != "fail" || adminErr.Message != "menu not found" {
		t.Errorf("admin error = %+v", adminErr)
	}
}

func TestSocketUnknownAction(t *testing.T) {
	socketPath := startServer(t, func(server *SocketServer) {})

	client := NewAdminClient(socketPath)
	err := client.Call(context.Background(), "no-such-action", nil, nil)
	var adminErr *AdminError
	if !errors.As(err, &adminErr) {
		t.Fatalf("expected *AdminError, got %T: %v", err, err)
	}
}

func TestSocketDuplicateHandlerPanics(t *testing.T) {
	server := NewSocketServer(filepath.Join(t.TempDir(), "admin.sock"), discardLogger())
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate handler registration")
		}
	}()
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })
}

func TestSocketReplacesStaleSocketFile(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "admin.sock")

	// Leave a stale socket file behind.
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("creating stale socket: %v", err)
	}
	listener.Close()

	server := NewSocketServer(socketPath, discardLogger())
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) { return nil, nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Serve(ctx); err != nil {
			t.Errorf("Serve failed over a stale socket: %v", err)
		}
	}()
	defer func() {
		cancel()
		testutil.RequireClosed(t, done, 5*time.Second, "server shutdown")
	}()

	client := NewAdminClient(socketPath)
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := client.Call(context.Background(), "status", nil, nil); err == nil {
			return
		} else if time.Now().After(deadline) {
			t.Fatalf("server never answered over the replaced socket: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
