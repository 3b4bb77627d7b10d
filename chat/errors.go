// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"errors"
	"fmt"
)

// GatewayError represents a structured error response from the chat
// platform gateway. Callers can use errors.As to extract the
// structured information:
//
//	var gatewayErr *chat.GatewayError
//	if errors.As(err, &gatewayErr) {
//	    if gatewayErr.Code == chat.ErrCodeNotFound { ... }
//	}
type GatewayError struct {
	// Code is the gateway error code (e.g., "forbidden", "not_found").
	Code string `json:"code"`
	// Message is the human-readable error description from the gateway.
	Message string `json:"message"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Standard gateway error codes.
const (
	ErrCodeForbidden      = "forbidden"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeRateLimited    = "rate_limited"
	ErrCodeUnknown        = "unknown"
)

// IsGatewayError checks whether err is a *GatewayError with the given
// error code.
func IsGatewayError(err error, code string) bool {
	var gatewayErr *GatewayError
	if errors.As(err, &gatewayErr) {
		return gatewayErr.Code == code
	}
	return false
}
