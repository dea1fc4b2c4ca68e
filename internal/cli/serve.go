package cli

import (
	"context"
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/guarantor-network/fabric/internal/config"
	"github.com/guarantor-network/fabric/internal/server"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto/secp256k1"
)

// serveCommand runs the DHT node and the HTTP façade until interrupted.
type serveCommand struct {
	*Command
	flagKeyWIF string
}

func newServeCommand(base *Command) cli.Command {
	return &serveCommand{Command: base}
}

func (c *serveCommand) Synopsis() string {
	return "Run the DHT node and HTTP façade"
}

func (c *serveCommand) Help() string {
	fs := c.flags()
	return `Usage: fabricd serve -config=config.hcl

  Starts this node's change store, DHT participation, and HTTP façade,
  and blocks until interrupted.` + fs.Help()
}

func (c *serveCommand) flags() *FlagSet {
	fs := c.NewFlagSet("serve")
	fs.StringVar(&c.flagKeyWIF, "key", "", "WIF-encoded authoring key (unset: read-only node)")
	return fs
}

func (c *serveCommand) Run(args []string) int {
	fs := c.flags()
	if err := fs.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if !requireConfigPath(c.UI, c.ConfigPath()) {
		return 1
	}

	cfg, err := config.Load(c.ConfigPath())
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}

	var key fabriccrypto.KeyPair
	if c.flagKeyWIF != "" {
		parsed, err := secp256k1.ParseWIF(c.flagKeyWIF)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error parsing authoring key: %v", err))
			return 1
		}
		key = parsed
	}

	srv, err := server.New(cfg, key, c.Log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error starting node: %v", err))
		return 1
	}

	c.UI.Info(fmt.Sprintf("listening on %s", cfg.HTTPListen))
	if err := srv.Serve(context.Background()); err != nil {
		c.UI.Error(fmt.Sprintf("server error: %v", err))
		return 1
	}
	return 0
}
