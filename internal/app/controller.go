// Package app wires the archive service client to the view state.
//
// The Controller performs each user-level operation (list, create, upload,
// remove, download) against a Backend and records the outcome in a
// state.Store. It never touches the view directly.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/browser"

	archive "github.com/jason-riddle/archive-go"
	"github.com/jason-riddle/archive-go/internal/snapshot"
	"github.com/jason-riddle/archive-go/internal/state"
)

// Backend is the subset of *archive.Client the controller needs.
type Backend interface {
	ListDocuments(ctx context.Context, query string) ([]archive.Document, error)
	CreateDocument(ctx context.Context, doc archive.NewDocument) (*archive.Document, error)
	UploadFile(ctx context.Context, id archive.DocumentID, filename string, content io.Reader) (*archive.Document, error)
	DeleteDocument(ctx context.Context, id archive.DocumentID) error
	DownloadURL(id archive.DocumentID) string
}

// File is a local file selected for upload.
type File struct {
	Name    string
	Content io.Reader
}

// Controller performs archive operations and keeps the store in sync.
type Controller struct {
	backend   Backend
	store     *state.Store
	logger    hclog.Logger
	open      func(url string) error
	snapshots *snapshot.DB
	maxAge    time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l hclog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithOpener sets the function used to open download links.
func WithOpener(open func(url string) error) Option {
	return func(c *Controller) {
		c.open = open
	}
}

// WithSnapshots persists every successful list to db.
func WithSnapshots(db *snapshot.DB) Option {
	return func(c *Controller) {
		c.snapshots = db
	}
}

// WithSnapshotMaxAge makes Restore ignore snapshots older than d.
// Zero means no limit.
func WithSnapshotMaxAge(d time.Duration) Option {
	return func(c *Controller) {
		c.maxAge = d
	}
}

// New returns a controller for backend that records results in store.
func New(backend Backend, store *state.Store, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		store:   store,
		logger:  hclog.NewNullLogger(),
		open:    browser.OpenURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the store the controller writes to.
func (c *Controller) Store() *state.Store {
	return c.store
}

// ListDocuments fetches documents matching query and replaces the list.
// On failure the list is left as it was and the error is returned.
func (c *Controller) ListDocuments(ctx context.Context, query string) error {
	c.store.SetQuery(query)

	t, release := c.store.BeginList()
	defer release()

	docs, err := c.backend.ListDocuments(ctx, query)
	if err != nil {
		c.logger.Error("error listing documents", "query", query, "error", err)
		return err
	}

	if !c.store.ApplyList(t, docs) {
		c.logger.Debug("discarding stale list", "query", query, "ticket", t)
		return nil
	}

	if c.snapshots != nil {
		if err := c.snapshots.Save(ctx, query, docs); err != nil {
			c.logger.Warn("error saving snapshot", "query", query, "error", err)
		}
	}
	return nil
}

// Refresh repeats the list with the current query.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.ListDocuments(ctx, c.store.Query())
}

// CreateDocument validates draft and creates a document from it. On success
// the draft is cleared and the new document is placed first in the list.
func (c *Controller) CreateDocument(ctx context.Context, draft archive.Draft) (*archive.Document, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	doc, err := c.backend.CreateDocument(ctx, draft.Payload())
	if err != nil {
		c.logger.Error("error creating document", "title", draft.Title, "error", err)
		return nil, err
	}

	c.store.ResetDraft()
	c.store.Prepend(*doc)
	c.logger.Info("created document", "id", doc.ID)
	return doc, nil
}

// UploadFile attaches f to document id and updates the entry in place.
// A nil file is a no-op.
func (c *Controller) UploadFile(ctx context.Context, id archive.DocumentID, f *File) (*archive.Document, error) {
	if f == nil {
		return nil, nil
	}

	t, release := c.store.BeginUpload(id)
	defer release()

	doc, err := c.backend.UploadFile(ctx, id, f.Name, f.Content)
	if err != nil {
		c.logger.Error("error uploading file", "id", id, "file", f.Name, "error", err)
		return nil, err
	}

	if !c.store.ApplyDocument(t, id, *doc) {
		c.logger.Debug("upload result not applied", "id", id, "ticket", t)
	}
	return doc, nil
}

// RemoveDocument deletes document id and drops it from the list. A document
// the service no longer knows about is treated as already removed.
func (c *Controller) RemoveDocument(ctx context.Context, id archive.DocumentID) error {
	t := c.store.BeginEntity(id)

	err := c.backend.DeleteDocument(ctx, id)
	if err != nil && !archive.IsNotFound(err) {
		c.logger.Error("error deleting document", "id", id, "error", err)
		return err
	}

	c.store.Remove(t, id)
	return nil
}

// DownloadURL returns the link for the file attached to id.
func (c *Controller) DownloadURL(id archive.DocumentID) string {
	return c.backend.DownloadURL(id)
}

// OpenDownload opens the download link for id in the browser.
func (c *Controller) OpenDownload(id archive.DocumentID) error {
	url := c.DownloadURL(id)
	if err := c.open(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

var (
	// ErrNoSnapshot is returned by Restore when nothing has been persisted yet.
	ErrNoSnapshot = errors.New("no snapshot available")

	// ErrSnapshotExpired is returned by Restore when the persisted list is
	// older than the configured maximum age.
	ErrSnapshotExpired = errors.New("snapshot expired")

	// ErrSnapshotSuperseded is returned by Restore when a fetched list was
	// applied first.
	ErrSnapshotSuperseded = errors.New("snapshot superseded by a fetched list")
)

// Restore seeds an empty store from the last persisted unfiltered list.
// It returns the snapshot that was applied.
func (c *Controller) Restore(ctx context.Context) (*snapshot.Snapshot, error) {
	if c.snapshots == nil {
		return nil, ErrNoSnapshot
	}

	snap, err := c.snapshots.Load(ctx, "")
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	if c.maxAge > 0 && snapshot.IsStale(snap, c.maxAge) {
		return nil, ErrSnapshotExpired
	}

	if !c.store.Seed(snap.Documents) {
		c.logger.Debug("discarding snapshot", "fetched_at", snap.FetchedAt)
		return nil, ErrSnapshotSuperseded
	}
	return snap, nil
}
