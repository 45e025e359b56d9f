package list

import (
	"bytes"
	"flag"
	"fmt"

	"github.com/jason-riddle/archive-go/internal/cmd/base"
	"github.com/jason-riddle/archive-go/internal/render"
)

type Command struct {
	*base.Command

	client base.ClientFlags

	flagQuery  string
	flagFormat string
}

func (c *Command) Synopsis() string {
	return "List archived documents"
}

func (c *Command) Help() string {
	return `Usage: archive list [options]

  Lists documents, newest first. With -q only documents matching the
  search text are shown.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("list", flag.ContinueOnError))
	c.AddClientFlags(f, &c.client)

	f.StringVar(&c.flagQuery, "q", "", "Search text")
	f.StringVar(&c.flagFormat, "format", "text", "Output format (text, json)")

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if c.flagFormat != "text" && c.flagFormat != "json" {
		c.UI.Error(fmt.Sprintf("unknown format %q", c.flagFormat))
		return 1
	}

	client, err := c.Client(c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid configuration: %v", err))
		return 1
	}

	ctx, cancel := c.Context(c.client)
	defer cancel()

	docs, err := client.ListDocuments(ctx, c.flagQuery)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing documents: %v", err))
		return 1
	}

	if c.flagFormat == "json" {
		if err := c.OutputJSON(docs); err != nil {
			c.UI.Error(fmt.Sprintf("error writing output: %v", err))
			return 1
		}
		return 0
	}

	var buf bytes.Buffer
	if err := render.WriteList(&buf, docs); err != nil {
		c.UI.Error(fmt.Sprintf("error writing output: %v", err))
		return 1
	}
	c.UI.Output(buf.String())
	return 0
}
