package archive

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DocumentID is an opaque document identifier. The archive service may send
// it as a JSON number or a JSON string.
type DocumentID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *DocumentID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid document id: %w", err)
		}
		*id = DocumentID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid document id %s: %w", data, err)
	}
	*id = DocumentID(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler. Ids in canonical integer form are
// written as numbers; anything else, including "007" or "+5", stays a string.
func (id DocumentID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String returns the id as a string.
func (id DocumentID) String() string {
	return string(id)
}

// Document represents an archived document.
type Document struct {
	ID          DocumentID `json:"id"`
	Title       string     `json:"title"`
	Tags        []string   `json:"tags"`
	Notes       *string    `json:"notes,omitempty"`
	MimeType    *string    `json:"mime_type,omitempty"`
	Size        *int64     `json:"size,omitempty"`
	TextPreview *string    `json:"text_preview,omitempty"`
}

// HasFile reports whether a file has been uploaded for the document.
func (d *Document) HasFile() bool {
	return d.MimeType != nil && *d.MimeType != ""
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	c := d
	if d.Tags != nil {
		c.Tags = append([]string(nil), d.Tags...)
	}
	c.Notes = cloneString(d.Notes)
	c.MimeType = cloneString(d.MimeType)
	c.TextPreview = cloneString(d.TextPreview)
	if d.Size != nil {
		size := *d.Size
		c.Size = &size
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// NewDocument is the request body for creating a document.
// Notes is always sent; a nil value encodes as null.
type NewDocument struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
	Notes *string  `json:"notes"`
}

// Download describes a file streamed by DownloadDocument.
type Download struct {
	ContentType string
	Filename    string
	Size        int64
}
