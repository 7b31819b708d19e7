// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for dossier-tui.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. Locations, in order of precedence:
//   - DOSSIER_* environment variables
//   - ~/.dossier/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete dossier-tui configuration.
type Config struct {
	// Backend configuration (the workspace's search/indexing/LLM API)
	Backend BackendConfig `toml:"backend"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// BackendConfig holds the RAG backend connection settings.
type BackendConfig struct {
	// BaseURL is the root of the backend API, e.g. http://127.0.0.1:8800
	BaseURL string `toml:"base_url"`
}

// StorageConfig holds local persistence settings.
type StorageConfig struct {
	// Path is the conversations blob location. Default: ~/.dossier/conversations.json
	Path string `toml:"path"`
	// MaxConversations caps stored conversations (0 = unlimited).
	MaxConversations int `toml:"max_conversations"`
}

// UIConfig holds chat surface options.
type UIConfig struct {
	// ShowContexts toggles the retrieved-documents side panel.
	ShowContexts bool `toml:"show_contexts"`
	// WordWrap is the markdown rendering width.
	WordWrap int `toml:"word_wrap"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: "http://127.0.0.1:8800",
		},
		Storage: StorageConfig{
			MaxConversations: 100,
		},
		UI: UIConfig{
			ShowContexts: true,
			WordWrap:     80,
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration from its default location, applies
// environment overrides, and validates. A missing config file is not an
// error; defaults apply.
func Load() (*Config, error) {
	path := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		path = filepath.Join(homeDir, ".dossier", "config.toml")
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit path (empty = defaults
// only), applies environment overrides, and validates.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies DOSSIER_* environment overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("DOSSIER_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("DOSSIER_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
}

// Validate checks the configuration for usability.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend base_url %q", c.Backend.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend base_url must be http or https, got %q", u.Scheme)
	}
	if c.UI.WordWrap < 0 {
		return fmt.Errorf("ui word_wrap must be non-negative, got %d", c.UI.WordWrap)
	}
	return nil
}
