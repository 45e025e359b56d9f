package upload

import (
	"flag"
	"fmt"
	"path/filepath"

	archive "github.com/jason-riddle/archive-go"
	"github.com/jason-riddle/archive-go/internal/cmd/base"
	"github.com/jason-riddle/archive-go/internal/render"
)

type Command struct {
	*base.Command

	client base.ClientFlags
}

func (c *Command) Synopsis() string {
	return "Attach a file to a document"
}

func (c *Command) Help() string {
	return `Usage: archive upload [options] <id> <file>

  Uploads a local file and binds it to the document, replacing any file
  attached before.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("upload", flag.ContinueOnError))
	c.AddClientFlags(f, &c.client)
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if f.NArg() != 2 {
		c.UI.Error("expected a document id and a file path")
		return 1
	}
	id, path := archive.DocumentID(f.Arg(0)), f.Arg(1)

	client, err := c.Client(c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid configuration: %v", err))
		return 1
	}

	file, err := c.Fs.Open(path)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error opening file: %v", err))
		return 1
	}
	defer file.Close()

	ctx, cancel := c.Context(c.client)
	defer cancel()

	doc, err := client.UploadFile(ctx, id, filepath.Base(path), file)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error uploading file: %v", err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Uploaded %s to document %s (%s)", filepath.Base(path), doc.ID, render.FileSummary(*doc)))
	return 0
}
