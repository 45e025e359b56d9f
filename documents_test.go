package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func TestClient_ListDocuments(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("method = %v, want GET", r.Method)
			}
			if r.URL.Path != "/api/documents" {
				t.Errorf("path = %v, want /api/documents", r.URL.Path)
			}
			if r.URL.RawQuery != "" {
				t.Errorf("raw query = %q, want empty", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id": 1, "title": "Lease", "tags": ["home"], "mime_type": "application/pdf", "size": 2048}]`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		docs, err := c.ListDocuments(context.Background(), "")
		if err != nil {
			t.Fatalf("ListDocuments failed: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("len(docs) = %d, want 1", len(docs))
		}
		if docs[0].ID != "1" {
			t.Errorf("document ID = %q, want 1", docs[0].ID)
		}
		if !docs[0].HasFile() {
			t.Error("expected document to have a file")
		}
		if docs[0].Size == nil || *docs[0].Size != 2048 {
			t.Errorf("size = %v, want 2048", docs[0].Size)
		}
	})

	t.Run("query is sent once and percent-encoded", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "q=rent%20%26%20bills" {
				t.Errorf("raw query = %q", r.URL.RawQuery)
			}
			if got := r.URL.Query()["q"]; len(got) != 1 || got[0] != "rent & bills" {
				t.Errorf("q = %v, want [rent & bills]", got)
			}
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		if _, err := c.ListDocuments(context.Background(), "rent & bills"); err != nil {
			t.Fatalf("ListDocuments failed: %v", err)
		}
	})

	t.Run("null body yields empty slice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`null`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		docs, err := c.ListDocuments(context.Background(), "")
		if err != nil {
			t.Fatalf("ListDocuments failed: %v", err)
		}
		if docs == nil {
			t.Error("expected non-nil slice")
		}
	})

	t.Run("error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.ListDocuments(context.Background(), "")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		apiErr, ok := err.(*Error)
		if !ok {
			t.Fatalf("expected *Error, got %T", err)
		}
		if apiErr.Op != "ListDocuments" {
			t.Errorf("op = %v, want ListDocuments", apiErr.Op)
		}
	})

	t.Run("parse failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.ListDocuments(context.Background(), "")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "ListDocuments: decode response") {
			t.Errorf("error = %v", err)
		}
	})
}

func TestClient_CreateDocument(t *testing.T) {
	tests := []struct {
		name     string
		draft    Draft
		wantBody string
	}{
		{
			name:     "empty tags and notes",
			draft:    Draft{Title: "Passport"},
			wantBody: `{"title":"Passport","tags":[],"notes":null}`,
		},
		{
			name:     "messy tags",
			draft:    Draft{Title: "Bill", Tags: "a, b ,,c", Notes: "paid"},
			wantBody: `{"title":"Bill","tags":["a","b","c"],"notes":"paid"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/documents" {
					t.Errorf("request = %s %s", r.Method, r.URL.Path)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("content type = %q", r.Header.Get("Content-Type"))
				}
				body, _ := io.ReadAll(r.Body)
				if string(body) != tt.wantBody {
					t.Errorf("body = %s, want %s", body, tt.wantBody)
				}
				var in NewDocument
				_ = json.Unmarshal(body, &in)
				_ = json.NewEncoder(w).Encode(Document{ID: "42", Title: in.Title, Tags: in.Tags, Notes: in.Notes})
			}))
			defer server.Close()

			c := NewClient(server.URL)
			doc, err := c.CreateDocument(context.Background(), tt.draft.Payload())
			if err != nil {
				t.Fatalf("CreateDocument failed: %v", err)
			}
			if doc.ID != "42" || doc.Title != tt.draft.Title {
				t.Errorf("doc = %+v", doc)
			}
		})
	}

	t.Run("nil tags are sent as empty list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			if !bytes.Contains(body, []byte(`"tags":[]`)) {
				t.Errorf("body = %s", body)
			}
			_, _ = w.Write([]byte(`{"id":"a1","title":"x","tags":[]}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		if _, err := c.CreateDocument(context.Background(), NewDocument{Title: "x"}); err != nil {
			t.Fatalf("CreateDocument failed: %v", err)
		}
	})

	t.Run("error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":"title required"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.CreateDocument(context.Background(), NewDocument{})
		if !IsStatus(err, http.StatusUnprocessableEntity) {
			t.Fatalf("expected 422, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "CreateDocument: 422") {
			t.Errorf("error = %v", err)
		}
	})
}

func TestClient_UploadFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/documents/7/upload" {
				t.Errorf("request = %s %s", r.Method, r.URL.Path)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("parse multipart: %v", err)
			}
			if len(r.MultipartForm.File) != 1 {
				t.Errorf("file fields = %d, want 1", len(r.MultipartForm.File))
			}
			f, hdr, err := r.FormFile("file")
			if err != nil {
				t.Fatalf("form file: %v", err)
			}
			defer f.Close()
			data, _ := io.ReadAll(f)
			if string(data) != "scanned bytes" {
				t.Errorf("data = %q", data)
			}
			if hdr.Filename != "scan.pdf" {
				t.Errorf("filename = %q", hdr.Filename)
			}
			_ = json.NewEncoder(w).Encode(Document{
				ID:       "7",
				Title:    "Scan",
				MimeType: strPtr("application/pdf"),
				Size:     int64Ptr(int64(len(data))),
			})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		doc, err := c.UploadFile(context.Background(), "7", "scan.pdf", strings.NewReader("scanned bytes"))
		if err != nil {
			t.Fatalf("UploadFile failed: %v", err)
		}
		if doc.MimeType == nil || *doc.MimeType != "application/pdf" {
			t.Errorf("mime type = %v", doc.MimeType)
		}
	})

	t.Run("id is path escaped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.EscapedPath() != "/api/documents/a%2Fb/upload" {
				t.Errorf("escaped path = %v", r.URL.EscapedPath())
			}
			_, _ = w.Write([]byte(`{"id":"a/b","title":"x","tags":[]}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		if _, err := c.UploadFile(context.Background(), "a/b", "x.txt", strings.NewReader("x")); err != nil {
			t.Fatalf("UploadFile failed: %v", err)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		c := NewClient("http://localhost:8000")
		if _, err := c.UploadFile(context.Background(), "", "x", strings.NewReader("x")); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.UploadFile(context.Background(), "9", "x", strings.NewReader("x"))
		if !IsNotFound(err) {
			t.Fatalf("expected 404, got %v", err)
		}
	})
}

func TestClient_DeleteDocument(t *testing.T) {
	t.Run("success ignores body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/api/documents/3" {
				t.Errorf("request = %s %s", r.Method, r.URL.Path)
			}
			_, _ = w.Write([]byte("not json at all"))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		if err := c.DeleteDocument(context.Background(), "3"); err != nil {
			t.Fatalf("DeleteDocument failed: %v", err)
		}
	})

	t.Run("error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		err := c.DeleteDocument(context.Background(), "3")
		apiErr, ok := err.(*Error)
		if !ok {
			t.Fatalf("expected *Error, got %T", err)
		}
		if apiErr.Op != "DeleteDocument" || apiErr.StatusCode != http.StatusForbidden {
			t.Errorf("err = %+v", apiErr)
		}
	})
}

func TestClient_DownloadURL(t *testing.T) {
	c := NewClient("http://localhost:8000")
	if got, want := c.DownloadURL("12"), "http://localhost:8000/api/documents/12/download"; got != want {
		t.Errorf("DownloadURL() = %v, want %v", got, want)
	}
}

func TestClient_DownloadDocument(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/documents/5/download" {
				t.Errorf("path = %v", r.URL.Path)
			}
			w.Header().Set("Content-Type", "image/png")
			w.Header().Set("Content-Disposition", `attachment; filename="scan.png"`)
			_, _ = w.Write([]byte("PNGDATA"))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		var buf bytes.Buffer
		dl, err := c.DownloadDocument(context.Background(), "5", &buf)
		if err != nil {
			t.Fatalf("DownloadDocument failed: %v", err)
		}
		if buf.String() != "PNGDATA" {
			t.Errorf("body = %q", buf.String())
		}
		if dl.Filename != "scan.png" || dl.ContentType != "image/png" || dl.Size != 7 {
			t.Errorf("download = %+v", dl)
		}
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("no file"))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		var buf bytes.Buffer
		_, err := c.DownloadDocument(context.Background(), "5", &buf)
		if !IsNotFound(err) {
			t.Fatalf("expected 404, got %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("wrote %d bytes on error", buf.Len())
		}
	})
}
