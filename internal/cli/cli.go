package cli

import (
	"bufio"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Version is the CLI's reported version string.
const Version = "0.1.0"

// Run builds and executes the command-line front-end, returning the
// process exit code — the same shape as hermes's own internal/cmd.Main.
func Run(args []string) int {
	cliName := args[0]

	log := hclog.New(&hclog.LoggerOptions{Name: cliName})

	// Default to 'serve' when no subcommand is given, matching the
	// single-binary zero-config entry point.
	if len(args) == 1 {
		args = append(args, "serve")
	}

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}
	base := &Command{UI: ui, Log: log}

	commands := map[string]cli.CommandFactory{
		"serve": func() (cli.Command, error) { return newServeCommand(base), nil },
		"identity create": func() (cli.Command, error) {
			return newIdentityCreateCommand(base), nil
		},
		"identity show": func() (cli.Command, error) {
			return newIdentityShowCommand(base), nil
		},
		"doc create": func() (cli.Command, error) {
			return newDocCreateCommand(base), nil
		},
		"doc update": func() (cli.Command, error) {
			return newDocUpdateCommand(base), nil
		},
		"doc show": func() (cli.Command, error) {
			return newDocShowCommand(base), nil
		},
		"dht ping": func() (cli.Command, error) {
			return newDHTPingCommand(base), nil
		},
		"dht find": func() (cli.Command, error) {
			return newDHTFindCommand(base), nil
		},
		"dht cull": func() (cli.Command, error) {
			return newDHTCullCommand(base), nil
		},
	}

	c := &cli.CLI{
		Name:     cliName,
		Args:     args[1:],
		Version:  Version,
		Commands: commands,
	}

	exitCode, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	return exitCode
}
