package create

import (
	"flag"
	"fmt"

	archive "github.com/jason-riddle/archive-go"
	"github.com/jason-riddle/archive-go/internal/cmd/base"
)

type Command struct {
	*base.Command

	client base.ClientFlags

	flagTitle string
	flagTags  string
	flagNotes string
}

func (c *Command) Synopsis() string {
	return "Create a document"
}

func (c *Command) Help() string {
	return `Usage: archive create -title <title> [options]

  Creates a document without a file and prints it as JSON. Attach a
  scanned file afterwards with "archive upload".` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("create", flag.ContinueOnError))
	c.AddClientFlags(f, &c.client)

	f.StringVar(&c.flagTitle, "title", "", "(Required) Document title")
	f.StringVar(&c.flagTags, "tags", "", "Comma separated tags")
	f.StringVar(&c.flagNotes, "notes", "", "Free text notes")

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	draft := archive.Draft{
		Title: c.flagTitle,
		Tags:  c.flagTags,
		Notes: c.flagNotes,
	}
	if err := draft.Validate(); err != nil {
		c.UI.Error(fmt.Sprintf("invalid document: %v", err))
		return 1
	}

	client, err := c.Client(c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid configuration: %v", err))
		return 1
	}

	ctx, cancel := c.Context(c.client)
	defer cancel()

	doc, err := client.CreateDocument(ctx, draft.Payload())
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating document: %v", err))
		return 1
	}

	if err := c.OutputJSON(doc); err != nil {
		c.UI.Error(fmt.Sprintf("error writing output: %v", err))
		return 1
	}
	return 0
}
