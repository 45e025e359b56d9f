package remove

import (
	"flag"
	"fmt"

	archive "github.com/jason-riddle/archive-go"
	"github.com/jason-riddle/archive-go/internal/cmd/base"
)

type Command struct {
	*base.Command

	client base.ClientFlags
}

func (c *Command) Synopsis() string {
	return "Delete a document"
}

func (c *Command) Help() string {
	return `Usage: archive delete [options] <id>

  Deletes the document and its file.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("delete", flag.ContinueOnError))
	c.AddClientFlags(f, &c.client)
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if f.NArg() != 1 {
		c.UI.Error("expected a document id")
		return 1
	}
	id := archive.DocumentID(f.Arg(0))

	client, err := c.Client(c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid configuration: %v", err))
		return 1
	}

	ctx, cancel := c.Context(c.client)
	defer cancel()

	if err := client.DeleteDocument(ctx, id); err != nil {
		if archive.IsNotFound(err) {
			c.UI.Error(fmt.Sprintf("document %s not found", id))
			return 1
		}
		c.UI.Error(fmt.Sprintf("error deleting document: %v", err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Deleted document %s", id))
	return 0
}
