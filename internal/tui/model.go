// Package tui is the terminal single-page view of the archive.
//
// The model renders from the controller's store on every frame. Service
// calls run as tea.Cmds and report back with *DoneMsg messages; the store
// is updated by the controller before the message arrives.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	archive "github.com/jason-riddle/archive-go"
	"github.com/jason-riddle/archive-go/internal/app"
	"github.com/jason-riddle/archive-go/internal/snapshot"
)

type focus int

const (
	focusSearch focus = iota
	focusTitle
	focusTags
	focusNotes
	focusList
	focusCount
)

type listDoneMsg struct{ err error }

type createDoneMsg struct {
	doc *archive.Document
	err error
}

type uploadDoneMsg struct {
	id  archive.DocumentID
	doc *archive.Document
	err error
}

type removeDoneMsg struct {
	id  archive.DocumentID
	err error
}

type openDoneMsg struct {
	id  archive.DocumentID
	err error
}

type restoreDoneMsg struct {
	snap *snapshot.Snapshot
	err  error
}

// Model is the bubbletea model for the archive view.
type Model struct {
	ctx    context.Context
	ctrl   *app.Controller
	fs     afero.Fs
	logger hclog.Logger
	keys   keyMap

	offline bool

	search textinput.Model
	title  textinput.Model
	tags   textinput.Model
	notes  textinput.Model
	path   textinput.Model

	focus     focus
	cursor    int
	uploadFor archive.DocumentID

	status    string
	statusErr bool
	width     int
}

// Option configures a Model.
type Option func(*Model)

// WithFs sets the filesystem uploads are read from.
func WithFs(fs afero.Fs) Option {
	return func(m *Model) {
		m.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// WithRestore shows the last persisted list before the first fetch
// completes.
func WithRestore() Option {
	return func(m *Model) {
		m.offline = true
	}
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	return ti
}

// New returns a model bound to ctrl. ctx bounds every service call.
func New(ctx context.Context, ctrl *app.Controller, opts ...Option) Model {
	m := Model{
		ctx:    ctx,
		ctrl:   ctrl,
		fs:     afero.NewOsFs(),
		logger: hclog.NewNullLogger(),
		keys:   newKeyMap(),
		search: newInput("Search..."),
		title:  newInput("Title"),
		tags:   newInput("Tags (comma separated)"),
		notes:  newInput("Notes"),
		path:   newInput("Path to scanned file"),
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.search.Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.offline {
		cmds = append(cmds, m.restoreCmd())
	}
	cmds = append(cmds, m.listCmd(""))
	return tea.Batch(cmds...)
}

func (m Model) listCmd(query string) tea.Cmd {
	return func() tea.Msg {
		return listDoneMsg{err: m.ctrl.ListDocuments(m.ctx, query)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return listDoneMsg{err: m.ctrl.Refresh(m.ctx)}
	}
}

func (m Model) restoreCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.ctrl.Restore(m.ctx)
		return restoreDoneMsg{snap: snap, err: err}
	}
}

func (m Model) createCmd(draft archive.Draft) tea.Cmd {
	return func() tea.Msg {
		doc, err := m.ctrl.CreateDocument(m.ctx, draft)
		return createDoneMsg{doc: doc, err: err}
	}
}

func (m Model) uploadCmd(id archive.DocumentID, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := m.fs.Open(path)
		if err != nil {
			return uploadDoneMsg{id: id, err: err}
		}
		defer f.Close()

		doc, err := m.ctrl.UploadFile(m.ctx, id, &app.File{Name: filepath.Base(path), Content: f})
		return uploadDoneMsg{id: id, doc: doc, err: err}
	}
}

func (m Model) removeCmd(id archive.DocumentID) tea.Cmd {
	return func() tea.Msg {
		return removeDoneMsg{id: id, err: m.ctrl.RemoveDocument(m.ctx, id)}
	}
}

func (m Model) openCmd(id archive.DocumentID) tea.Cmd {
	return func() tea.Msg {
		return openDoneMsg{id: id, err: m.ctrl.OpenDownload(id)}
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(prefix string, err error) {
	m.logger.Warn(prefix, "error", err)
	m.status = fmt.Sprintf("%s: %v", prefix, err)
	m.statusErr = true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case listDoneMsg:
		if msg.err != nil {
			m.setError("Could not load documents", msg.err)
		}
		m.clampCursor()
		return m, nil

	case restoreDoneMsg:
		if msg.err == nil && msg.snap != nil {
			m.setStatus("Showing cached list from " + snapshotAge(msg.snap))
		}
		return m, nil

	case createDoneMsg:
		if msg.err != nil {
			m.setError("Could not create document", msg.err)
			return m, nil
		}
		m.title.Reset()
		m.tags.Reset()
		m.notes.Reset()
		m.cursor = 0
		m.setStatus(fmt.Sprintf("Created %q", msg.doc.Title))
		return m, nil

	case uploadDoneMsg:
		if msg.err != nil {
			m.setError("Upload failed", msg.err)
			return m, nil
		}
		m.setStatus("File uploaded")
		return m, nil

	case removeDoneMsg:
		if msg.err != nil {
			m.setError("Could not delete document", msg.err)
			return m, nil
		}
		m.clampCursor()
		m.setStatus("Document deleted")
		return m, nil

	case openDoneMsg:
		if msg.err != nil {
			m.setError("Could not open download", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.forceQuit) {
			return m, tea.Quit
		}
		if m.uploadFor != "" {
			return m.updateUploadPrompt(msg)
		}

		switch {
		case key.Matches(msg, m.keys.next):
			return m, m.setFocus((m.focus + 1) % focusCount)
		case key.Matches(msg, m.keys.prev):
			return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
		}

		if m.focus == focusList {
			return m.updateList(msg)
		}
		return m.updateForm(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.search.Blur()
	m.title.Blur()
	m.tags.Blur()
	m.notes.Blur()

	switch f {
	case focusSearch:
		return m.search.Focus()
	case focusTitle:
		return m.title.Focus()
	case focusTags:
		return m.tags.Focus()
	case focusNotes:
		return m.notes.Focus()
	}
	return nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.submit) {
		if m.focus == focusSearch {
			return m, m.listCmd(m.search.Value())
		}

		draft := m.ctrl.Store().Draft()
		if draft.IsZero() {
			return m, nil
		}
		if err := draft.Validate(); err != nil {
			m.setError("Invalid document", err)
			return m, nil
		}
		return m, m.createCmd(draft)
	}

	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.focus {
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
	case focusTitle:
		m.title, cmd = m.title.Update(msg)
	case focusTags:
		m.tags, cmd = m.tags.Update(msg)
	case focusNotes:
		m.notes, cmd = m.notes.Update(msg)
	}

	if m.focus != focusSearch && m.focus != focusList {
		m.ctrl.Store().SetDraft(archive.Draft{
			Title: m.title.Value(),
			Tags:  m.tags.Value(),
			Notes: m.notes.Value(),
		})
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	docs := m.ctrl.Store().Snapshot().Documents

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(docs)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.refresh):
		return m, m.refreshCmd()
	}

	if m.cursor >= len(docs) {
		return m, nil
	}
	doc := docs[m.cursor]

	switch {
	case key.Matches(msg, m.keys.upload):
		m.uploadFor = doc.ID
		m.path.Reset()
		return m, m.path.Focus()
	case key.Matches(msg, m.keys.download):
		if !doc.HasFile() {
			m.setStatus("No file to download")
			return m, nil
		}
		return m, m.openCmd(doc.ID)
	case key.Matches(msg, m.keys.remove):
		return m, m.removeCmd(doc.ID)
	}

	return m, nil
}

func (m Model) updateUploadPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.uploadFor = ""
		m.path.Blur()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		id, path := m.uploadFor, strings.TrimSpace(m.path.Value())
		m.uploadFor = ""
		m.path.Blur()
		if path == "" {
			return m, nil
		}
		return m, m.uploadCmd(id, path)
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m *Model) clampCursor() {
	n := m.ctrl.Store().Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
