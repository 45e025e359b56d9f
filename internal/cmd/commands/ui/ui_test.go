package ui

import (
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-riddle/archive-go/internal/cmd/base"
	"github.com/jason-riddle/archive-go/internal/config"
)

func newCommand(cfg *config.Config) *Command {
	b := base.NewCommand(hclog.NewNullLogger(), cli.NewMockUi(), cfg)
	b.Fs = afero.NewMemMapFs()
	return &Command{Command: b}
}

func TestSnapshotPath(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)

	c := newCommand(config.Default())
	path, err := c.snapshotPath()
	require.NoError(t, err)
	assert.Equal(t, "", path)

	c.flagOfflineCache = true
	path, err = c.snapshotPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, "archive-go", "snapshot.db"), path)

	cfg := config.Default()
	cfg.SnapshotDB = "/data/list.db"
	path, err = newCommand(cfg).snapshotPath()
	require.NoError(t, err)
	assert.Equal(t, "/data/list.db", path)
}

func TestOpenSnapshots(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := newCommand(config.Default())
	db, err := c.openSnapshots()
	require.NoError(t, err)
	assert.Nil(t, db)

	c.flagOfflineCache = true
	db, err = c.openSnapshots()
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.NoError(t, db.Close())
}

func TestUILogger(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)

	c := newCommand(config.Default())
	logger, closeLog, err := c.uiLogger()
	require.NoError(t, err)
	closeLog()
	assert.False(t, logger.IsDebug())

	cfg := config.Default()
	cfg.LogLevel = "debug"
	c = newCommand(cfg)

	logger, closeLog, err = c.uiLogger()
	require.NoError(t, err)
	logger.Debug("hello", "id", "7")
	closeLog()

	data, err := afero.ReadFile(c.Fs, filepath.Join(cache, "archive-go", "archive-ui.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "id=7")
}

func TestMaxAge(t *testing.T) {
	assert.Equal(t, config.DefaultSnapshotMaxAge, newCommand(config.Default()).maxAge())

	cfg := config.Default()
	cfg.SnapshotMaxAge = 0
	assert.Zero(t, newCommand(cfg).maxAge())
}
