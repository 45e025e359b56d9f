// Package version reports the build version.
package version

import "github.com/mitchellh/cli"

// Version is set at build time with -ldflags "-X ...version.Version=...".
var Version = "0.1.0-dev"

// Command prints the version.
type Command struct {
	UI cli.Ui
}

func (c *Command) Synopsis() string { return "Print the version" }

func (c *Command) Help() string { return "Usage: archive version" }

func (c *Command) Run(args []string) int {
	c.UI.Output(Version)
	return 0
}
