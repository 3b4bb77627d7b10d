// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/VinylRUS/mahrgibrolebot/lib/netutil"
	"github.com/VinylRUS/mahrgibrolebot/lib/secret"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// GatewayURL is the base URL of the chat platform gateway
	// (e.g., "https://gateway.example.net").
	GatewayURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is an unauthenticated gateway client. It holds the gateway
// URL and HTTP transport, shared across Sessions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new unauthenticated gateway client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.GatewayURL == "" {
		return nil, fmt.Errorf("chat: GatewayURL is required")
	}

	// Validate the URL structure. We store the string form (with
	// trailing slash stripped) and build request URLs by direct
	// concatenation — every path segment is a validated ref ID, so
	// there is nothing to escape.
	if _, err := url.Parse(config.GatewayURL); err != nil {
		return nil, fmt.Errorf("chat: invalid GatewayURL %q: %w", config.GatewayURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.GatewayURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a network disruption to
// force subsequent requests to establish fresh TCP connections instead
// of reusing a poisoned pooled connection.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// SessionFromToken creates a DirectSession from a gateway access
// token. The session takes ownership of the buffer and closes it when
// the session is closed.
//
// This does NOT validate the token — call WhoAmI to validate and learn
// the bot's own user ID. The caller must call Close on the returned
// session when done.
func (c *Client) SessionFromToken(accessToken *secret.Buffer) (*DirectSession, error) {
	if accessToken == nil {
		return nil, fmt.Errorf("chat: access token is required")
	}
	return &DirectSession{
		client:      c,
		accessToken: accessToken,
	}, nil
}

// doRequest performs an HTTP request to the gateway and returns the
// response body. On 2xx, returns the body. On 4xx/5xx, returns a
// *GatewayError. accessToken may be nil for unauthenticated endpoints.
// query may be nil for endpoints without query parameters.
func (c *Client) doRequest(ctx context.Context, method, path string, accessToken *secret.Buffer, requestBody any, query ...url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 && query[0] != nil {
		requestURL += "?" + query[0].Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("chat: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("chat: failed to create request: %w", err)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if accessToken != nil {
		request.Header.Set("Authorization", "Bearer "+accessToken.String())
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("chat: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("chat: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	// All gateway error responses use the same JSON shape.
	var gatewayErr GatewayError
	if jsonErr := json.Unmarshal(responseBody, &gatewayErr); jsonErr != nil || gatewayErr.Code == "" {
		// Non-JSON error from an intermediary. Fail loud with the
		// raw body.
		return nil, fmt.Errorf("chat: unexpected %d response from %s %s: %s",
			response.StatusCode, method, path, string(responseBody))
	}
	gatewayErr.StatusCode = response.StatusCode

	return nil, &gatewayErr
}
