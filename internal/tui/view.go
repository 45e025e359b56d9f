package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	archive "github.com/jason-riddle/archive-go"
	"github.com/jason-riddle/archive-go/internal/render"
	"github.com/jason-riddle/archive-go/internal/snapshot"
)

const (
	appTitle     = "Scan & Archive"
	loadingText  = "Loading..."
	emptyText    = "No documents. Create one and upload a scanned file."
	uploadText   = "Upload file"
	footerText   = "Demo platform for scanning and archiving documents"
	previewLines = 6
)

func snapshotAge(s *snapshot.Snapshot) string {
	return render.Age(s.FetchedAt)
}

func (m Model) View() string {
	view := m.ctrl.Store().Snapshot()

	var b strings.Builder

	b.WriteString(headerStyle.Render(appTitle))
	b.WriteString("\n")
	b.WriteString(m.field("Search", m.search.View(), m.focus == focusSearch))
	b.WriteString("\n\n")

	form := strings.Join([]string{
		titleStyle.Render("New document"),
		m.field("Title", m.title.View(), m.focus == focusTitle),
		m.field("Tags", m.tags.View(), m.focus == focusTags),
		m.field("Notes", m.notes.View(), m.focus == focusNotes),
	}, "\n")
	b.WriteString(sectionStyle.Render(form))
	b.WriteString("\n")

	switch {
	case view.Loading:
		b.WriteString(mutedStyle.Render(loadingText))
	case len(view.Documents) == 0:
		b.WriteString(mutedStyle.Render(emptyText))
	default:
		cards := make([]string, len(view.Documents))
		for i, doc := range view.Documents {
			cards[i] = m.card(doc, view.Uploading, m.focus == focusList && i == m.cursor)
		}
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	}
	b.WriteString("\n")

	if m.uploadFor != "" {
		b.WriteString("\n")
		b.WriteString(m.field("Upload to "+m.uploadFor.String(), m.path.View(), true))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(mutedStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(footerText))

	style := appStyle
	if m.width > 0 {
		style = style.MaxWidth(m.width)
	}
	return style.Render(b.String())
}

func (m Model) field(label, input string, focused bool) string {
	marker := "  "
	if focused {
		marker = "> "
	}
	return marker + mutedStyle.Render(label+": ") + input
}

func (m Model) card(doc archive.Document, uploading, selected bool) string {
	lines := []string{titleStyle.Render(doc.Title)}
	if tags := render.TagLine(doc.Tags); tags != "" {
		lines = append(lines, tagStyle.Render(tags))
	}
	if preview := render.Preview(doc, previewLines); preview != "" {
		lines = append(lines, previewStyle.Render(preview))
	}
	lines = append(lines, fileStyle.Render(render.FileSummary(doc)))

	actions := []string{uploadText}
	if uploading {
		actions[0] = loadingText
	}
	if doc.HasFile() {
		actions = append(actions, "Download")
	}
	actions = append(actions, "Delete")
	lines = append(lines, mutedStyle.Render("["+strings.Join(actions, "] [")+"]"))

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) helpLine() string {
	bindings := m.keys.formHelp()
	if m.focus == focusList {
		bindings = m.keys.listHelp()
	}
	if m.uploadFor != "" {
		bindings = []key.Binding{m.keys.submit, m.keys.cancel}
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
