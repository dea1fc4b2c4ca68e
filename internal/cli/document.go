package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/guarantor-network/fabric/internal/config"
	"github.com/guarantor-network/fabric/pkg/change"
)

type docCreateCommand struct {
	*Command
	flagKeyWIF string
	flagTitle  string
	flagProps  string
}

func newDocCreateCommand(base *Command) cli.Command { return &docCreateCommand{Command: base} }

func (c *docCreateCommand) Synopsis() string { return "Create a GenericDocument" }

func (c *docCreateCommand) Help() string {
	return `Usage: fabricd doc create -config=config.hcl -key=<wif> -title=<title> [-props=<json>]

  Mints and saves a root GenericDocument change.` + c.flags().Help()
}

func (c *docCreateCommand) flags() *FlagSet {
	fs := c.NewFlagSet("doc create")
	fs.StringVar(&c.flagKeyWIF, "key", "", "(Required) WIF-encoded authoring key")
	fs.StringVar(&c.flagTitle, "title", "", "(Required) Document title")
	fs.StringVar(&c.flagProps, "props", "{}", "JSON object of additional properties")
	return fs
}

func (c *docCreateCommand) Run(args []string) int {
	fs := c.flags()
	if err := fs.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if !requireConfigPath(c.UI, c.ConfigPath()) {
		return 1
	}
	if c.flagKeyWIF == "" || c.flagTitle == "" {
		c.UI.Error("-key and -title are required")
		return 1
	}

	var props map[string]interface{}
	if err := json.Unmarshal([]byte(c.flagProps), &props); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing -props: %v", err))
		return 1
	}

	cfg, err := config.Load(c.ConfigPath())
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}

	srv, _, err := openNode(cfg, c.flagKeyWIF, c.Log)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer srv.Close()

	w, err := srv.DAL().NewDocument(context.Background(), "guarantor.schemas:GenericDocument", map[string]interface{}{
		"title": c.flagTitle,
		"props": props,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating document: %v", err))
		return 1
	}
	w, err = srv.DAL().Save(w)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error saving document: %v", err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("head: %s", w.Head().String()))
	return 0
}

type docUpdateCommand struct {
	*Command
	flagKeyWIF string
	flagHead   string
	flagTitle  string
	flagProps  string
}

func newDocUpdateCommand(base *Command) cli.Command { return &docUpdateCommand{Command: base} }

func (c *docUpdateCommand) Synopsis() string { return "Update a GenericDocument" }

func (c *docUpdateCommand) Help() string {
	return `Usage: fabricd doc update -config=config.hcl -key=<wif> -head=<change_id> -title=<title> [-props=<json>]

  Loads the document chain rooted at -head, stages a diff against the
  new fields, and saves it.` + c.flags().Help()
}

func (c *docUpdateCommand) flags() *FlagSet {
	fs := c.NewFlagSet("doc update")
	fs.StringVar(&c.flagKeyWIF, "key", "", "(Required) WIF-encoded authoring key")
	fs.StringVar(&c.flagHead, "head", "", "(Required) Current head change_id")
	fs.StringVar(&c.flagTitle, "title", "", "(Required) New document title")
	fs.StringVar(&c.flagProps, "props", "{}", "JSON object of additional properties")
	return fs
}

func (c *docUpdateCommand) Run(args []string) int {
	fs := c.flags()
	if err := fs.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if !requireConfigPath(c.UI, c.ConfigPath()) {
		return 1
	}
	if c.flagKeyWIF == "" || c.flagHead == "" || c.flagTitle == "" {
		c.UI.Error("-key, -head, and -title are required")
		return 1
	}

	head, err := change.ParseChangeID(c.flagHead)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid -head: %v", err))
		return 1
	}

	var props map[string]interface{}
	if err := json.Unmarshal([]byte(c.flagProps), &props); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing -props: %v", err))
		return 1
	}

	cfg, err := config.Load(c.ConfigPath())
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}

	srv, _, err := openNode(cfg, c.flagKeyWIF, c.Log)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer srv.Close()

	w, err := srv.DAL().Get(head)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading document: %v", err))
		return 1
	}
	w, err = srv.DAL().Update(context.Background(), w, "guarantor.schemas:GenericDocument", map[string]interface{}{
		"title": c.flagTitle,
		"props": props,
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error staging update: %v", err))
		return 1
	}
	w, err = srv.DAL().Save(w)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error saving document: %v", err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("head: %s", w.Head().String()))
	return 0
}

type docShowCommand struct {
	*Command
	flagHead string
}

func newDocShowCommand(base *Command) cli.Command { return &docShowCommand{Command: base} }

func (c *docShowCommand) Synopsis() string { return "Show a document by head change_id" }

func (c *docShowCommand) Help() string {
	return `Usage: fabricd doc show -config=config.hcl -head=<change_id>

  Replays the chain rooted at -head and prints the resulting document.` + c.flags().Help()
}

func (c *docShowCommand) flags() *FlagSet {
	fs := c.NewFlagSet("doc show")
	fs.StringVar(&c.flagHead, "head", "", "(Required) Head change_id")
	return fs
}

func (c *docShowCommand) Run(args []string) int {
	fs := c.flags()
	if err := fs.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if !requireConfigPath(c.UI, c.ConfigPath()) {
		return 1
	}
	if c.flagHead == "" {
		c.UI.Error("-head is required")
		return 1
	}

	head, err := change.ParseChangeID(c.flagHead)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid -head: %v", err))
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

	w, err := srv.DAL().Get(head)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading document: %v", err))
		return 1
	}

	out, err := json.MarshalIndent(w.Doc.Fields(), "", "  ")
	if err != nil {
		c.UI.Error(fmt.Sprintf("error encoding document: %v", err))
		return 1
	}
	c.UI.Output(string(out))
	return 0
}
