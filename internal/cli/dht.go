package cli

import (
	"context"
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/guarantor-network/fabric/internal/config"
	"github.com/guarantor-network/fabric/pkg/change"
	"github.com/guarantor-network/fabric/pkg/dht"
)

type dhtPingCommand struct {
	*Command
}

func newDHTPingCommand(base *Command) cli.Command { return &dhtPingCommand{Command: base} }

func (c *dhtPingCommand) Synopsis() string { return "Report this node's DHT identity and store size" }

func (c *dhtPingCommand) Help() string {
	return `Usage: fabricd dht ping -config=config.hcl

  Prints this node's 160-bit node id and local store entry count. There
  is no separate network transport in this build: every peer is another
  in-process dht.Node reached through AddPeer, so "ping" reports local
  liveness rather than round-trip network latency.` + c.flags().Help()
}

func (c *dhtPingCommand) flags() *FlagSet {
	return c.NewFlagSet("dht ping")
}

func (c *dhtPingCommand) Run(args []string) int {
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

	srv, _, err := openNode(cfg, "", c.Log)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer srv.Close()

	node := srv.Node()
	c.UI.Output(fmt.Sprintf("node_id: %s", node.ID().String()))
	c.UI.Output(fmt.Sprintf("entries: %d", node.Len()))
	return 0
}

type dhtFindCommand struct {
	*Command
	flagAddress string
}

func newDHTFindCommand(base *Command) cli.Command { return &dhtFindCommand{Command: base} }

func (c *dhtFindCommand) Synopsis() string { return "List changes stored under an author address" }

func (c *dhtFindCommand) Help() string {
	return `Usage: fabricd dht find -config=config.hcl -address=<address>

  Calls GetChanges(HashKey(address), nil, ksize) against this node's
  local store and prints the resulting change_ids.` + c.flags().Help()
}

func (c *dhtFindCommand) flags() *FlagSet {
	fs := c.NewFlagSet("dht find")
	fs.StringVar(&c.flagAddress, "address", "", "(Required) Author address to query")
	return fs
}

func (c *dhtFindCommand) Run(args []string) int {
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

	node := srv.Node()
	addressDigest := dht.HashKey([]byte(c.flagAddress))
	changes, err := node.GetChanges(context.Background(), addressDigest, nil, cfg.DHT.KSize)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error querying changes: %v", err))
		return 1
	}

	if len(changes) == 0 {
		c.UI.Info("no changes found for this address")
		return 0
	}
	for _, ch := range changes {
		c.UI.Output(formatChangeSummary(ch))
	}
	return 0
}

func formatChangeSummary(c *change.Change) string {
	return fmt.Sprintf("%s  rev=%s  doctype=%s", c.ChangeID.String(), c.Rev.String(), c.Doctype)
}

type dhtCullCommand struct {
	*Command
	flagMaxEntries int
}

func newDHTCullCommand(base *Command) cli.Command { return &dhtCullCommand{Command: base} }

func (c *dhtCullCommand) Synopsis() string { return "Evict this node's lowest-weight DHT entries" }

func (c *dhtCullCommand) Help() string {
	return `Usage: fabricd dht cull -config=config.hcl -max-entries=<n>

  Keeps the n entries with the smallest PoW-weighted distance to this
  node and evicts the rest.` + c.flags().Help()
}

func (c *dhtCullCommand) flags() *FlagSet {
	fs := c.NewFlagSet("dht cull")
	fs.IntVar(&c.flagMaxEntries, "max-entries", 0, "(Required) Number of entries to retain")
	return fs
}

func (c *dhtCullCommand) Run(args []string) int {
	fs := c.flags()
	if err := fs.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if !requireConfigPath(c.UI, c.ConfigPath()) {
		return 1
	}
	if c.flagMaxEntries <= 0 {
		c.UI.Error("-max-entries must be positive")
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

	node := srv.Node()
	before := node.Len()
	node.Cull(c.flagMaxEntries)
	c.UI.Output(fmt.Sprintf("entries: %d -> %d", before, node.Len()))
	return 0
}
