// Package config loads the endpoint's static configuration file: the
// listen address, thread pool size, log level, and peer roster. It
// follows katzenpost's config package: a plain struct decoded with
// BurntSushi/toml, validated once at load time.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/universa-network/clientendpoint/internal/endpoint"
	"github.com/universa-network/clientendpoint/internal/roster"
)

// PeerConfig is one [[Peers]] table entry in the config file.
type PeerConfig struct {
	NodeID     string
	Host       string
	ClientPort int
	// PackedKeyB64 is the peer's wire-format public key, base64-encoded
	// for readability in a text config file.
	PackedKeyB64 string
}

// Config is the top-level shape of the endpoint's TOML config file.
type Config struct {
	Addr        string
	ThreadLimit int
	LogLevel    string
	Peers       []PeerConfig
}

// Validate reports whether c is well-formed enough to construct an
// Endpoint from.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: Addr must be set")
	}
	for _, p := range c.Peers {
		if p.NodeID == "" {
			return errors.New("config: a Peers entry is missing NodeID")
		}
	}
	return nil
}

// Load parses and validates b as a config file body.
func Load(b []byte) (*Config, error) {
	cfg := &Config{
		ThreadLimit: endpoint.DefaultThreadLimit,
		LogLevel:    "NOTICE",
	}
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses and validates the config file at path.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Load(b)
}

// Roster converts the configured peer list into a roster.Roster.
func (c *Config) Roster() (roster.Roster, error) {
	out := make(roster.Roster, len(c.Peers))
	for _, p := range c.Peers {
		key, err := base64.StdEncoding.DecodeString(p.PackedKeyB64)
		if err != nil {
			return nil, fmt.Errorf("config: decoding key for peer %s: %w", p.NodeID, err)
		}
		out[p.NodeID] = roster.NodeInfo{
			Host:       p.Host,
			ClientPort: p.ClientPort,
			PackedKey:  key,
		}
	}
	return out, nil
}
