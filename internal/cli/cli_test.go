package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	fabriccli "github.com/guarantor-network/fabric/internal/cli"
)

const testWIF = "5KYZdUEo39z3FPrtuX2QbbwGnNP5zTd7yyr2SC1j299sBCnWjss"

func writeConfig(t *testing.T, storeDir string) string {
	t.Helper()
	hclContent := `
store {
  path = "` + storeDir + `"
  mine_difficulty = 1
}

dht {
  bind = "127.0.0.1:7946"
}

index "guarantor.schemas:Identity" {
  fields = ["address"]
}
`
	path := filepath.Join(t.TempDir(), "fabric.hcl")
	require.NoError(t, os.WriteFile(path, []byte(hclContent), 0o600))
	return path
}

func TestCLI_IdentityCreateThenDHTPing(t *testing.T) {
	configPath := writeConfig(t, t.TempDir())

	exitCode := fabriccli.Run([]string{"fabricd", "identity", "create", "-config=" + configPath, "-key=" + testWIF})
	require.Equal(t, 0, exitCode)

	exitCode = fabriccli.Run([]string{"fabricd", "dht", "ping", "-config=" + configPath})
	require.Equal(t, 0, exitCode)
}

func TestCLI_IdentityCreate_RequiresKey(t *testing.T) {
	configPath := writeConfig(t, t.TempDir())

	exitCode := fabriccli.Run([]string{"fabricd", "identity", "create", "-config=" + configPath})
	require.Equal(t, 1, exitCode)
}
