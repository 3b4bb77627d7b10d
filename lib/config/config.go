// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration for the bot service.
type Config struct {
	// Gateway configures the connection to the chat platform gateway.
	Gateway GatewayConfig `yaml:"gateway"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Socket configures the admin Unix socket.
	Socket SocketConfig `yaml:"socket"`
}

// GatewayConfig configures the connection to the chat platform
// gateway.
type GatewayConfig struct {
	// URL is the base URL of the gateway (e.g.,
	// "https://gateway.example.net").
	URL string `yaml:"url" env:"MAHRGIB_GATEWAY_URL"`

	// TokenFile is the path to the file holding the bot's access
	// token, or "-" to read the token from stdin. The token itself is
	// never stored in this config.
	TokenFile string `yaml:"token_file" env:"MAHRGIB_TOKEN_FILE"`

	// SyncTimeoutMS is the long-poll timeout in milliseconds passed
	// to the event stream. Zero means the gateway default.
	SyncTimeoutMS int `yaml:"sync_timeout_ms"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// State is the directory holding the bot's runtime state. The
	// menu document lives at <state>/menus.json.
	State string `yaml:"state" env:"MAHRGIB_STATE_DIR"`
}

// SocketConfig configures the admin Unix socket.
type SocketConfig struct {
	// Path is the Unix socket path the admin server listens on.
	Path string `yaml:"path" env:"MAHRGIB_SOCKET"`
}

// Default returns the default configuration. These defaults are a
// base before loading the config file; the file is still required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".local", "state", "mahrgib")

	return &Config{
		Gateway: GatewayConfig{
			SyncTimeoutMS: 30000,
		},
		Paths: PathsConfig{
			State: defaultRoot,
		},
		Socket: SocketConfig{
			Path: filepath.Join(defaultRoot, "admin.sock"),
		},
	}
}

// Load loads configuration from the MAHRGIB_CONFIG environment
// variable. There is no fallback: if MAHRGIB_CONFIG is not set, this
// fails.
func Load() (*Config, error) {
	configPath := os.Getenv("MAHRGIB_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("MAHRGIB_CONFIG environment variable not set; " +
			"set it to the path of your mahrgib.yaml config file, or use the --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, then applies
// MAHRGIB_* environment overrides for the fields that carry them.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	return cfg, nil
}

// DocumentPath returns the path of the persisted menu document.
func (c *Config) DocumentPath() string {
	return filepath.Join(c.Paths.State, "menus.json")
}

// Validate checks that the configuration is complete enough to start
// the service. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Gateway.URL == "" {
		errs = append(errs, errors.New("gateway.url is required"))
	} else if _, err := url.Parse(c.Gateway.URL); err != nil {
		errs = append(errs, fmt.Errorf("gateway.url is not a valid URL: %w", err))
	}
	if c.Gateway.TokenFile == "" {
		errs = append(errs, errors.New("gateway.token_file is required (use \"-\" for stdin)"))
	}
	if c.Gateway.SyncTimeoutMS < 0 {
		errs = append(errs, errors.New("gateway.sync_timeout_ms must not be negative"))
	}
	if c.Paths.State == "" {
		errs = append(errs, errors.New("paths.state is required"))
	}
	if c.Socket.Path == "" {
		errs = append(errs, errors.New("socket.path is required"))
	}

	return errors.Join(errs...)
}
