// Package config loads this node's HCL configuration file: where the
// change store lives, the PoW difficulty floor, the DHT overlay's bind
// address and bootstrap peers, RPC retry policy, declared search
// fields, and the identity-cache DSN.
package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the root configuration object, decoded from a single HCL
// file by Load.
type Config struct {
	Store      StoreConfig    `hcl:"store,block"`
	DHT        DHTConfig      `hcl:"dht,block"`
	RPC        RPCConfig      `hcl:"rpc,optional,block"`
	Identity   IdentityConfig `hcl:"identity,optional,block"`
	Index      []IndexConfig  `hcl:"index,block"`
	HTTPListen string         `hcl:"http_listen,optional"`
}

// StoreConfig configures the local append-only change store.
type StoreConfig struct {
	Path           string `hcl:"path"`
	MinDifficulty  int    `hcl:"min_difficulty,optional"`
	MineDifficulty int    `hcl:"mine_difficulty,optional"`
}

// DHTConfig configures the Kademlia storage overlay.
type DHTConfig struct {
	Bind           string   `hcl:"bind"`
	KSize          int      `hcl:"ksize,optional"`
	Alpha          int      `hcl:"alpha,optional"`
	BootstrapPeers []string `hcl:"bootstrap_peers,optional"`
	MaxEntries     int      `hcl:"max_entries,optional"`
}

// RPCConfig holds the DHT RPC timeout and retry settings. Nothing in
// this module reads them: server.New does not pass them to the DHT
// node, which always uses its built-in retry policy (100ms initial
// backoff, doubling, at most 5 retries).
type RPCConfig struct {
	TimeoutSeconds int `hcl:"timeout_seconds,optional"`
	MaxRetries     int `hcl:"max_retries,optional"`
}

// IdentityConfig points at the relational identity-cache collaborator.
type IdentityConfig struct {
	DSN    string `hcl:"dsn,optional"`
	Driver string `hcl:"driver,optional"`
}

// IndexConfig declares one (doctype, fields) prefix-index registration
// (§4.5).
type IndexConfig struct {
	Doctype string   `hcl:"doctype,label"`
	Fields  []string `hcl:"fields"`
}

// Load decodes the HCL file at path into a Config, applying this
// package's defaults for any optional field left unset.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.MineDifficulty == 0 {
		cfg.Store.MineDifficulty = 12
	}
	if cfg.DHT.KSize == 0 {
		cfg.DHT.KSize = 20
	}
	if cfg.DHT.Alpha == 0 {
		cfg.DHT.Alpha = 3
	}
	if cfg.DHT.MaxEntries == 0 {
		cfg.DHT.MaxEntries = 1000
	}
	if cfg.RPC.TimeoutSeconds == 0 {
		cfg.RPC.TimeoutSeconds = 5
	}
	if cfg.RPC.MaxRetries == 0 {
		cfg.RPC.MaxRetries = 5
	}
	if cfg.HTTPListen == "" {
		cfg.HTTPListen = "127.0.0.1:8080"
	}
}
