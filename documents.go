package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
)

// ListDocuments retrieves documents, filtered by query when it is non-empty.
func (c *Client) ListDocuments(ctx context.Context, query string) ([]Document, error) {
	fullURL, err := c.buildURL(documentsAPIPath, query)
	if err != nil {
		return nil, fmt.Errorf("build URL: %w", err)
	}

	var result []Document
	if err := c.doRequestWithURL(ctx, http.MethodGet, fullURL, nil, &result); err != nil {
		return nil, wrapError(err, "ListDocuments")
	}
	if result == nil {
		result = []Document{}
	}

	return result, nil
}

// CreateDocument registers a new document and returns the stored copy.
func (c *Client) CreateDocument(ctx context.Context, doc NewDocument) (*Document, error) {
	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	body, err := jsonBody(doc)
	if err != nil {
		return nil, wrapError(err, "CreateDocument")
	}

	var result Document
	if err := c.doRequest(ctx, http.MethodPost, documentsAPIPath, body, &result); err != nil {
		return nil, wrapError(err, "CreateDocument")
	}

	return &result, nil
}

// UploadFile attaches file content to an existing document and returns the
// updated document. The content is sent as the multipart field "file".
func (c *Client) UploadFile(ctx context.Context, id DocumentID, filename string, content io.Reader) (*Document, error) {
	if id == "" {
		return nil, fmt.Errorf("UploadFile: empty document id")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("UploadFile: create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("UploadFile: read file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("UploadFile: close form: %w", err)
	}

	body := &requestBody{contentType: w.FormDataContentType(), data: buf.Bytes()}

	var result Document
	if err := c.doRequest(ctx, http.MethodPost, documentPath(id, "/upload"), body, &result); err != nil {
		return nil, wrapError(err, "UploadFile")
	}

	return &result, nil
}

// DeleteDocument removes a document. The response body is ignored.
func (c *Client) DeleteDocument(ctx context.Context, id DocumentID) error {
	if id == "" {
		return fmt.Errorf("DeleteDocument: empty document id")
	}

	if err := c.doRequest(ctx, http.MethodDelete, documentPath(id, ""), nil, nil); err != nil {
		return wrapError(err, "DeleteDocument")
	}

	return nil
}

// DownloadURL returns the link that serves the document's file.
func (c *Client) DownloadURL(id DocumentID) string {
	u, err := c.buildURL(documentPath(id, "/download"), "")
	if err != nil {
		return strings.TrimSuffix(c.baseURL, "/") + documentPath(id, "/download")
	}
	return u
}

// DownloadDocument streams the document's file into w.
func (c *Client) DownloadDocument(ctx context.Context, id DocumentID, w io.Writer) (*Download, error) {
	if id == "" {
		return nil, fmt.Errorf("DownloadDocument: empty document id")
	}

	fullURL, err := c.buildURL(documentPath(id, "/download"), "")
	if err != nil {
		return nil, fmt.Errorf("DownloadDocument: %w", err)
	}

	resp, err := c.open(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, wrapError(err, "DownloadDocument")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			Op:         "DownloadDocument",
		}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("DownloadDocument: read body: %w", err)
	}

	dl := &Download{
		ContentType: resp.Header.Get("Content-Type"),
		Size:        n,
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			dl.Filename = params["filename"]
		}
	}

	return dl, nil
}
