package ui

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	"github.com/jason-riddle/archive-go/internal/app"
	"github.com/jason-riddle/archive-go/internal/cmd/base"
	"github.com/jason-riddle/archive-go/internal/config"
	"github.com/jason-riddle/archive-go/internal/snapshot"
	"github.com/jason-riddle/archive-go/internal/state"
	"github.com/jason-riddle/archive-go/internal/tui"
)

const logFile = "archive-ui.log"

type Command struct {
	*base.Command

	client base.ClientFlags

	flagOfflineCache bool
}

func (c *Command) Synopsis() string {
	return "Open the interactive archive view"
}

func (c *Command) Help() string {
	return `Usage: archive ui [options]

  Opens a full-screen view to search, create, upload, download and delete
  documents. This is the default command.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("ui", flag.ContinueOnError))
	c.AddClientFlags(f, &c.client)

	f.BoolVar(
		&c.flagOfflineCache, "offline-cache", false,
		"[ARCHIVE_SNAPSHOT_DB] Keep the last list on disk and show it on start",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	client, err := c.Client(c.client)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid configuration: %v", err))
		return 1
	}

	logger, closeLog, err := c.uiLogger()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error opening log file: %v", err))
		return 1
	}
	defer closeLog()

	ctrlOpts := []app.Option{app.WithLogger(logger), app.WithOpener(c.Open)}
	var modelOpts []tui.Option

	db, err := c.openSnapshots()
	if err != nil {
		// The view works without the cache.
		logger.Warn("snapshot cache disabled", "error", err)
	}
	if db != nil {
		defer db.Close()
		ctrlOpts = append(ctrlOpts, app.WithSnapshots(db), app.WithSnapshotMaxAge(c.maxAge()))
		modelOpts = append(modelOpts, tui.WithRestore())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := app.New(client, state.New(), ctrlOpts...)
	model := tui.New(ctx, ctrl, append(modelOpts, tui.WithFs(c.Fs), tui.WithLogger(logger))...)

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		c.UI.Error(fmt.Sprintf("error running ui: %v", err))
		return 1
	}
	return 0
}

// uiLogger returns a logger that does not write to the terminal. At debug
// and trace levels it writes to a file in the cache directory.
func (c *Command) uiLogger() (hclog.Logger, func(), error) {
	level := config.Default().Level()
	if c.Config != nil {
		level = c.Config.Level()
	}
	if level > hclog.Debug || level == hclog.NoLevel {
		return hclog.NewNullLogger(), func() {}, nil
	}

	dir, err := config.CacheDir()
	if err != nil {
		return nil, nil, err
	}
	if err := c.Fs.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}

	f, err := c.Fs.OpenFile(filepath.Join(dir, logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "archive-ui",
		Level:  level,
		Output: io.Writer(f),
	})
	return logger, func() { _ = f.Close() }, nil
}

func (c *Command) maxAge() time.Duration {
	if c.Config == nil {
		return config.DefaultSnapshotMaxAge
	}
	return c.Config.SnapshotMaxAge
}

// snapshotPath returns where the list cache lives, or "" when it is off.
func (c *Command) snapshotPath() (string, error) {
	if c.Config != nil && c.Config.SnapshotDB != "" {
		return c.Config.SnapshotDB, nil
	}
	if !c.flagOfflineCache {
		return "", nil
	}
	return config.DefaultSnapshotPath()
}

func (c *Command) openSnapshots() (*snapshot.DB, error) {
	path, err := c.snapshotPath()
	if err != nil || path == "" {
		return nil, err
	}
	return snapshot.NewDB(path)
}
