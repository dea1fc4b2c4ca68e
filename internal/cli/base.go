// Package cli is the out-of-scope "command-line front-end" collaborator
// (§1/§6): thin subcommand wrappers around pkg/dal and pkg/dht, wired
// the way hermes's own internal/cmd registers its subcommands behind
// mitchellh/cli.
package cli

import (
	"bytes"
	"flag"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is the shared base every subcommand embeds: a UI for
// output, a logger, and the config path flag every subcommand accepts.
type Command struct {
	UI  cli.Ui
	Log hclog.Logger

	flagConfig string
}

// FlagSet wraps flag.FlagSet, adding the -config flag every subcommand
// shares and a Help method that renders the usage text mitchellh/cli
// expects appended to Help().
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet builds a FlagSet for name, pre-registering -config.
func (c *Command) NewFlagSet(name string) *FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&c.flagConfig, "config", "", "Path to the node's HCL config file")
	return &FlagSet{FlagSet: fs}
}

// ConfigPath returns the -config flag's value after Parse.
func (c *Command) ConfigPath() string {
	return c.flagConfig
}

// Help renders this flag set's usage as mitchellh/cli expects: a
// trailing block of "\n\nOptions:\n\n" + flag descriptions.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	buf.WriteString("\n\nOptions:\n\n")
	orig := f.FlagSet.Output()
	f.FlagSet.SetOutput(&buf)
	f.FlagSet.PrintDefaults()
	f.FlagSet.SetOutput(orig)
	return buf.String()
}

// requireConfigPath is the shared "no -config given" failure shape.
func requireConfigPath(ui cli.Ui, path string) bool {
	if path == "" {
		ui.Error("-config is required")
		return false
	}
	return true
}
