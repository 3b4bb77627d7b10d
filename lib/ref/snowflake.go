// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// maxSnowflakeLength bounds platform IDs. Snowflakes are 64-bit
// integers rendered as decimal, so 20 digits covers the full range.
const maxSnowflakeLength = 20

// parseSnowflake validates a platform-assigned decimal ID string.
// The platform issues these as stringified 64-bit integers; the bot
// treats them as opaque beyond this structural check.
func parseSnowflake(kind, raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty %s ID", kind)
	}
	if len(raw) > maxSnowflakeLength {
		return "", fmt.Errorf("%s ID too long (%d digits): %q", kind, len(raw), raw)
	}
	for index := 0; index < len(raw); index++ {
		if raw[index] < '0' || raw[index] > '9' {
			return "", fmt.Errorf("%s ID must be decimal digits: %q", kind, raw)
		}
	}
	if raw[0] == '0' && len(raw) > 1 {
		return "", fmt.Errorf("%s ID has leading zero: %q", kind, raw)
	}
	return raw, nil
}
