// Package snapshot persists the last successfully fetched document list in a
// local SQLite database so the view can show it before the backend answers.
package snapshot
