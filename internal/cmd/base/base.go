// Package base holds what every archive subcommand shares.
package base

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkg/browser"
	"github.com/spf13/afero"

	archive "github.com/jason-riddle/archive-go"
	"github.com/jason-riddle/archive-go/internal/config"
)

// Command is embedded by every subcommand.
type Command struct {
	Log    hclog.Logger
	UI     cli.Ui
	Config *config.Config

	// Fs is where local files are read and written.
	Fs afero.Fs

	// Open opens a URL in the browser.
	Open func(url string) error
}

// NewCommand returns a Command with the OS filesystem and browser.
func NewCommand(log hclog.Logger, ui cli.Ui, cfg *config.Config) *Command {
	return &Command{
		Log:    log,
		UI:     ui,
		Config: cfg,
		Fs:     afero.NewOsFs(),
		Open:   browser.OpenURL,
	}
}

// FlagSet wraps flag.FlagSet to render help text.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help returns the flag usage, one flag per block.
func (f *FlagSet) Help() string {
	var b strings.Builder
	b.WriteString("\n\nOptions:\n\n")

	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "  -%s\n", fl.Name)
		fmt.Fprintf(&b, "      %s", fl.Usage)
		if fl.DefValue != "" {
			fmt.Fprintf(&b, " (default: %s)", fl.DefValue)
		}
		b.WriteString("\n\n")
	})

	return strings.TrimRight(b.String(), "\n")
}

// ClientFlags are the connection overrides every subcommand accepts.
type ClientFlags struct {
	URL     string
	Timeout time.Duration
}

// AddClientFlags registers -url and -timeout on f with defaults from config.
func (c *Command) AddClientFlags(f *FlagSet, cf *ClientFlags) {
	cfg := c.config()

	f.StringVar(
		&cf.URL, "url", cfg.BackendURL,
		"[ARCHIVE_BACKEND_URL] Archive service URL",
	)
	f.DurationVar(
		&cf.Timeout, "timeout", cfg.Timeout,
		"[ARCHIVE_TIMEOUT] Request timeout",
	)
}

func (c *Command) config() *config.Config {
	if c.Config == nil {
		return config.Default()
	}
	return c.Config
}

func (c *Command) logger() hclog.Logger {
	if c.Log == nil {
		return hclog.NewNullLogger()
	}
	return c.Log
}

// Client validates the flags and returns a client for them.
func (c *Command) Client(cf ClientFlags) (*archive.Client, error) {
	cfg := *c.config()
	cfg.BackendURL = cf.URL
	cfg.Timeout = cf.Timeout
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return archive.NewClient(cfg.BackendURL, cfg.ClientOptions(c.logger().Named("client"))...), nil
}

// Context returns a context bounded by the request timeout.
func (c *Command) Context(cf ClientFlags) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cf.Timeout)
}

// OutputJSON writes v as indented JSON.
func (c *Command) OutputJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	c.UI.Output(string(b))
	return nil
}
