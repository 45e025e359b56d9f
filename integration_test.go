//go:build integration
// +build integration

package archive_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	archive "github.com/jason-riddle/archive-go"
)

func getTestClient(t *testing.T) *archive.Client {
	baseURL := os.Getenv("ARCHIVE_BACKEND_URL")
	if baseURL == "" {
		t.Skip("ARCHIVE_BACKEND_URL not set, skipping integration test")
	}

	return archive.NewClient(baseURL, archive.WithTimeout(30*time.Second))
}

func TestIntegration_DocumentLifecycle(t *testing.T) {
	client := getTestClient(t)
	ctx := context.Background()

	title := "integration " + time.Now().Format(time.RFC3339Nano)
	doc, err := client.CreateDocument(ctx, archive.Draft{Title: title, Tags: "it, go"}.Payload())
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	t.Cleanup(func() {
		_ = client.DeleteDocument(context.Background(), doc.ID)
	})

	if doc.Title != title {
		t.Errorf("title = %q, want %q", doc.Title, title)
	}

	updated, err := client.UploadFile(ctx, doc.ID, "note.txt", strings.NewReader("integration file body"))
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if !updated.HasFile() {
		t.Error("expected uploaded document to have a file")
	}

	var buf bytes.Buffer
	if _, err := client.DownloadDocument(ctx, doc.ID, &buf); err != nil {
		t.Fatalf("DownloadDocument failed: %v", err)
	}
	if buf.String() != "integration file body" {
		t.Errorf("downloaded %q", buf.String())
	}

	docs, err := client.ListDocuments(ctx, title)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	found := false
	for _, d := range docs {
		if d.ID == doc.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("created document %s not returned by search", doc.ID)
	}

	if err := client.DeleteDocument(ctx, doc.ID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
}

func TestIntegration_ListDocuments(t *testing.T) {
	client := getTestClient(t)

	docs, err := client.ListDocuments(context.Background(), "")
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}

	t.Logf("Found %d documents", len(docs))
}
