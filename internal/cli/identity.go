package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/guarantor-network/fabric/internal/config"
	"github.com/guarantor-network/fabric/internal/server"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto/secp256k1"
)

// openNode builds the core collaborators from the node's config, without
// starting the HTTP façade or joining the DHT's network loop — the
// one-shot CLI commands only need the DAL and, for dht subcommands, the
// local node's view of its own store.
func openNode(cfg *config.Config, keyWIF string, log hclog.Logger) (*server.Server, fabriccrypto.KeyPair, error) {
	var key fabriccrypto.KeyPair
	if keyWIF != "" {
		parsed, err := secp256k1.ParseWIF(keyWIF)
		if err != nil {
			return nil, nil, fmt.Errorf("parse authoring key: %w", err)
		}
		key = parsed
	}
	srv, err := server.New(cfg, key, log)
	if err != nil {
		return nil, nil, err
	}
	return srv, key, nil
}

type identityCreateCommand struct {
	*Command
	flagKeyWIF string
}

func newIdentityCreateCommand(base *Command) cli.Command { return &identityCreateCommand{Command: base} }

func (c *identityCreateCommand) Synopsis() string { return "Create this node's Identity document" }

func (c *identityCreateCommand) Help() string {
	return `Usage: fabricd identity create -config=config.hcl -key=<wif>

  Mints and saves a root Identity change for the given authoring key.` + c.flags().Help()
}

func (c *identityCreateCommand) flags() *FlagSet {
	fs := c.NewFlagSet("identity create")
	fs.StringVar(&c.flagKeyWIF, "key", "", "(Required) WIF-encoded authoring key")
	return fs
}

func (c *identityCreateCommand) Run(args []string) int {
	fs := c.flags()
	if err := fs.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if !requireConfigPath(c.UI, c.ConfigPath()) {
		return 1
	}
	if c.flagKeyWIF == "" {
		c.UI.Error("-key is required")
		return 1
	}

	cfg, err := config.Load(c.ConfigPath())
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}

	srv, key, err := openNode(cfg, c.flagKeyWIF, c.Log)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer srv.Close()

	w, err := srv.DAL().NewDocument(context.Background(), "guarantor.schemas:Identity", map[string]interface{}{
		"address": key.Address().String(),
		"props":   map[string]interface{}{},
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating identity: %v", err))
		return 1
	}
	w, err = srv.DAL().Save(w)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error saving identity: %v", err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("address: %s", key.Address().String()))
	c.UI.Output(fmt.Sprintf("head:    %s", w.Head().String()))
	return 0
}

type identityShowCommand struct {
	*Command
	flagAddress string
}

func newIdentityShowCommand(base *Command) cli.Command { return &identityShowCommand{Command: base} }

func (c *identityShowCommand) Synopsis() string { return "Show an Identity document by address" }

func (c *identityShowCommand) Help() string {
	return `Usage: fabricd identity show -config=config.hcl -address=<addr>

  Looks up and prints the Identity document for address.` + c.flags().Help()
}

func (c *identityShowCommand) flags() *FlagSet {
	fs := c.NewFlagSet("identity show")
	fs.StringVar(&c.flagAddress, "address", "", "(Required) Address to look up")
	return fs
}

func (c *identityShowCommand) Run(args []string) int {
	fs := c.flags()
	if err := fs.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if !requireConfigPath(c.UI, c.ConfigPath()) {
		return 1
	}
	if c.flagAddress == "" {
		c.UI.Error("-address is required")
		return 1
	}

	cfg, err := config.Load(c.ConfigPath())
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}

	srv, _, err := openNode(cfg, "", c.Log)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer srv.Close()

	w, err := srv.DAL().FindOne("guarantor.schemas:Identity", map[string]string{"address": c.flagAddress})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error looking up identity: %v", err))
		return 1
	}
	if w == nil {
		c.UI.Error(fmt.Sprintf("identity not found: %s", c.flagAddress))
		return 1
	}

	out, err := json.MarshalIndent(w.Doc.Fields(), "", "  ")
	if err != nil {
		c.UI.Error(fmt.Sprintf("error encoding identity: %v", err))
		return 1
	}
	c.UI.Output(string(out))
	return 0
}
