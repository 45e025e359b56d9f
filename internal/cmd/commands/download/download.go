package download

import (
	"flag"
	"fmt"

	"github.com/dustin/go-humanize"

	archive "github.com/jason-riddle/archive-go"
	"github.com/jason-riddle/archive-go/internal/cmd/base"
)

type Command struct {
	*base.Command

	client base.ClientFlags

	flagOutput string
	flagOpen   bool
}

func (c *Command) Synopsis() string {
	return "Download the file attached to a document"
}

func (c *Command) Help() string {
	return `Usage: archive download [options] <id>

  Saves the document's file with -o, or opens it in the browser with
  -open. Without either the download link is printed.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("download", flag.ContinueOnError))
	c.AddClientFlags(f, &c.client)

	f.StringVar(&c.flagOutput, "o", "", "Write the file to this path")
	f.BoolVar(&c.flagOpen, "open", false, "Open the download link in the browser")

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

	switch {
	case c.flagOutput != "":
		return c.save(client, id)
	case c.flagOpen:
		url := client.DownloadURL(id)
		if err := c.Open(url); err != nil {
			c.UI.Error(fmt.Sprintf("error opening %s: %v", url, err))
			return 1
		}
		return 0
	default:
		c.UI.Output(client.DownloadURL(id))
		return 0
	}
}

func (c *Command) save(client *archive.Client, id archive.DocumentID) int {
	out, err := c.Fs.Create(c.flagOutput)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating %s: %v", c.flagOutput, err))
		return 1
	}

	ctx, cancel := c.Context(c.client)
	defer cancel()

	dl, err := client.DownloadDocument(ctx, id, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = c.Fs.Remove(c.flagOutput)
		c.UI.Error(fmt.Sprintf("error downloading document %s: %v", id, err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Saved %s (%s, %s)", c.flagOutput, dl.ContentType, humanize.IBytes(uint64(dl.Size))))
	return 0
}
