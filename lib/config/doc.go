// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the mahrgib bot.
//
// Configuration is loaded from a single YAML file specified by:
//   - the MAHRGIB_CONFIG environment variable, or
//   - the --config flag passed to the command
//
// There are no fallbacks or automatic discovery. After the file is
// parsed, a small set of MAHRGIB_* environment variables may override
// individual values for deployment-specific wiring (token file path,
// state directory); everything else comes from the file.
package config
