package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guarantor-network/fabric/internal/config"
)

const sampleHCL = `
store {
  path = "./data"
  mine_difficulty = 14
}

dht {
  bind = "0.0.0.0:7946"
  bootstrap_peers = ["10.0.0.1:7946"]
}

index "guarantor.schemas:Identity" {
  fields = ["props.name", "props.email"]
}
`

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fabric.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sampleHCL), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "./data", cfg.Store.Path)
	require.Equal(t, 14, cfg.Store.MineDifficulty)
	require.Equal(t, 20, cfg.DHT.KSize)
	require.Equal(t, 3, cfg.DHT.Alpha)
	require.Equal(t, []string{"10.0.0.1:7946"}, cfg.DHT.BootstrapPeers)
	require.Equal(t, 5, cfg.RPC.MaxRetries)
	require.Len(t, cfg.Index, 1)
	require.Equal(t, "guarantor.schemas:Identity", cfg.Index[0].Doctype)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.hcl"))
	require.Error(t, err)
}
