// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/VinylRUS/mahrgibrolebot/lib/codec"
)

// dialTimeout is the maximum time to wait for a connection to the
// admin socket. Separate from the server's read/write timeouts; it
// covers only the connect phase.
const dialTimeout = 5 * time.Second

// responseReadTimeout is how long the client waits for the server to
// send a response after writing the request. Matched to the server's
// readTimeout + writeTimeout to account for handler execution time.
const responseReadTimeout = 45 * time.Second

// maxResponseSize is the maximum size of a single CBOR response.
// Matches the server's maxRequestSize for symmetry.
const maxResponseSize = 64 * 1024

// AdminError is returned by Call when the server responds with
// ok=false. It wraps the server's error message and the action that
// failed.
type AdminError struct {
	Action  string
	Message string
}

func (e *AdminError) Error() string {
	return fmt.Sprintf("admin error on %q: %s", e.Action, e.Message)
}

// AdminClient sends CBOR requests to a running bot's admin socket.
// Each Call opens a new connection (matching the server's
// one-request-per-connection model), sends the request, reads the
// response, and closes the connection.
type AdminClient struct {
	socketPath string
}

// NewAdminClient creates a client for the admin socket at socketPath.
// Access control is the socket file's permissions; there is no
// in-protocol authentication.
func NewAdminClient(socketPath string) *AdminClient {
	return &AdminClient{socketPath: socketPath}
}

// Call sends a CBOR request to the bot and decodes the response.
//
// The fields parameter may contain any handler-specific request
// fields; the client adds "action" automatically. Pass nil for
// actions that take no additional parameters.
//
// On success (response ok=true), if result is non-nil and the
// response contains data, the data is CBOR-decoded into result.
//
// On failure (response ok=false), returns an *AdminError containing
// the server's error message. Connection and encoding errors are
// returned as plain errors (not *AdminError).
func (c *AdminClient) Call(ctx context.Context, action string, fields map[string]any, result any) error {
	request := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		request[key] = value
	}
	request["action"] = action

	response, err := c.send(ctx, request)
	if err != nil {
		return fmt.Errorf("calling %q on %s: %w", action, c.socketPath, err)
	}

	if !response.OK {
		return &AdminError{
			Action:  action,
			Message: response.Error,
		}
	}

	if result != nil && len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, result); err != nil {
			return fmt.Errorf("decoding response data for %q: %w", action, err)
		}
	}

	return nil
}

// send connects to the socket, writes the request, and reads the
// response. Each call creates a new connection.
func (c *AdminClient) send(ctx context.Context, request any) (*Response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	// Half-close the write side. CBOR is self-delimiting so this
	// isn't strictly necessary, but it lets the server's read side
	// see EOF cleanly.
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	conn.SetReadDeadline(time.Now().Add(responseReadTimeout))
	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &response, nil
}
