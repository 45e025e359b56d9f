package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/jason-riddle/archive-go/internal/cmd/base"
	"github.com/jason-riddle/archive-go/internal/cmd/commands/create"
	"github.com/jason-riddle/archive-go/internal/cmd/commands/download"
	"github.com/jason-riddle/archive-go/internal/cmd/commands/list"
	"github.com/jason-riddle/archive-go/internal/cmd/commands/remove"
	uicmd "github.com/jason-riddle/archive-go/internal/cmd/commands/ui"
	"github.com/jason-riddle/archive-go/internal/cmd/commands/upload"
	"github.com/jason-riddle/archive-go/internal/config"
	"github.com/jason-riddle/archive-go/internal/version"
)

// Commands returns the subcommand factories.
func Commands(log hclog.Logger, ui cli.Ui, cfg *config.Config) map[string]cli.CommandFactory {
	return factories(base.NewCommand(log, ui, cfg))
}

func factories(b *base.Command) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"ui": func() (cli.Command, error) {
			return &uicmd.Command{Command: b}, nil
		},
		"list": func() (cli.Command, error) {
			return &list.Command{Command: b}, nil
		},
		"create": func() (cli.Command, error) {
			return &create.Command{Command: b}, nil
		},
		"upload": func() (cli.Command, error) {
			return &upload.Command{Command: b}, nil
		},
		"delete": func() (cli.Command, error) {
			return &remove.Command{Command: b}, nil
		},
		"download": func() (cli.Command, error) {
			return &download.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{UI: b.UI}, nil
		},
	}
}
