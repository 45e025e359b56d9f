// Package archivetest provides an in-memory archive service for tests.
package archivetest

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	archive "github.com/jason-riddle/archive-go"
)

const maxPreview = 500

// Request is a recorded inbound request.
type Request struct {
	Method    string
	Path      string
	RawQuery  string
	RequestID string
}

// Server is a fake archive service speaking the /api/documents contract.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int
	docs     []archive.Document
	files    map[archive.DocumentID]storedFile
	requests []Request
	failWith int
}

type storedFile struct {
	name        string
	contentType string
	data        []byte
}

// NewServer starts a fake service seeded with docs. Seeded documents keep
// their ids; new ids continue after the largest numeric one.
func NewServer(docs ...archive.Document) *Server {
	s := &Server{
		files: make(map[archive.DocumentID]storedFile),
	}
	for _, d := range docs {
		s.docs = append(s.docs, d.Clone())
		if n, err := strconv.Atoi(string(d.ID)); err == nil && n > s.nextID {
			s.nextID = n
		}
	}

	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/api/documents", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Delete("/{id}", s.remove)
		r.Post("/{id}/upload", s.upload)
		r.Get("/{id}/download", s.download)
	})

	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.EscapedPath(),
			RawQuery:  r.URL.RawQuery,
			RequestID: r.Header.Get("X-Request-ID"),
		})
		fail := s.failWith
		s.mu.Unlock()

		if fail != 0 {
			http.Error(w, http.StatusText(fail), fail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FailWith makes every request fail with status until cleared with 0.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = status
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Documents returns the documents currently stored, newest first.
func (s *Server) Documents() []archive.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]archive.Document, len(s.docs))
	for i, d := range s.docs {
		out[i] = d.Clone()
	}
	return out
}

// File returns the stored file content for id.
func (s *Server) File(id archive.DocumentID) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	return f.data, ok
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))

	s.mu.Lock()
	out := make([]archive.Document, 0, len(s.docs))
	for _, d := range s.docs {
		if q == "" || matches(d, q) {
			out = append(out, d.Clone())
		}
	}
	s.mu.Unlock()

	sendJSON(w, http.StatusOK, out)
}

func matches(d archive.Document, q string) bool {
	fields := append([]string{d.Title}, d.Tags...)
	if d.Notes != nil {
		fields = append(fields, *d.Notes)
	}
	if d.TextPreview != nil {
		fields = append(fields, *d.TextPreview)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in archive.NewDocument
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		http.Error(w, "title is required", http.StatusUnprocessableEntity)
		return
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}

	s.mu.Lock()
	s.nextID++
	doc := archive.Document{
		ID:    archive.DocumentID(strconv.Itoa(s.nextID)),
		Title: in.Title,
		Tags:  in.Tags,
		Notes: in.Notes,
	}
	s.docs = append([]archive.Document{doc}, s.docs...)
	s.mu.Unlock()

	sendJSON(w, http.StatusOK, doc)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	id := archive.DocumentID(chi.URLParam(r, "id"))

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			contentType = byExt
		} else {
			contentType = http.DetectContentType(data)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.docs {
		if s.docs[i].ID != id {
			continue
		}
		size := int64(len(data))
		ct := contentType
		s.docs[i].MimeType = &ct
		s.docs[i].Size = &size
		s.docs[i].TextPreview = nil
		if strings.HasPrefix(ct, "text/") && utf8.Valid(data) {
			preview := string(data)
			if len(preview) > maxPreview {
				preview = preview[:maxPreview]
			}
			s.docs[i].TextPreview = &preview
		}
		s.files[id] = storedFile{name: header.Filename, contentType: ct, data: data}
		sendJSON(w, http.StatusOK, s.docs[i])
		return
	}

	http.Error(w, "document not found", http.StatusNotFound)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	id := archive.DocumentID(chi.URLParam(r, "id"))

	s.mu.Lock()
	f, ok := s.files[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", f.contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.data)))
	_, _ = w.Write(f.data)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := archive.DocumentID(chi.URLParam(r, "id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.docs {
		if s.docs[i].ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			delete(s.files, id)
			sendJSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}
	}

	http.Error(w, fmt.Sprintf("document %s not found", id), http.StatusNotFound)
}

func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
