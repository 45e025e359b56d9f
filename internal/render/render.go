// Package render formats documents for display.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	archive "github.com/jason-riddle/archive-go"
)

// NoFile is shown for documents without an attached file.
const NoFile = "No file"

// FileSummary describes the attached file, e.g. "application/pdf • 12.3 KB".
// The size is shown whenever it is positive, even without a MIME type.
func FileSummary(doc archive.Document) string {
	s := NoFile
	if doc.HasFile() {
		s = *doc.MimeType
	}
	if doc.Size != nil && *doc.Size > 0 {
		s += fmt.Sprintf(" • %.1f KB", float64(*doc.Size)/1024)
	}
	return s
}

// TagLine renders tags as "#a #b".
func TagLine(tags []string) string {
	if len(tags) == 0 {
		return ""
	}

	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = "#" + t
	}
	return strings.Join(parts, " ")
}

// Preview returns up to maxLines non-empty lines of the text preview.
// maxLines <= 0 means no limit.
func Preview(doc archive.Document, maxLines int) string {
	if doc.TextPreview == nil {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(*doc.TextPreview, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if maxLines > 0 && len(lines) == maxLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// Age renders how long ago t was, e.g. "3 minutes ago".
func Age(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// WriteList writes a tab-aligned listing of docs to w.
func WriteList(w io.Writer, docs []archive.Document) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, "No documents.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTAGS\tFILE")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Title, TagLine(d.Tags), FileSummary(d))
	}
	return tw.Flush()
}
