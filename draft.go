package archive

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Draft holds the unsaved form fields for a new document.
// Tags is the raw comma-delimited input.
type Draft struct {
	Title string
	Tags  string
	Notes string
}

// Validate checks that the draft can be submitted.
func (d Draft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required, validation.By(notBlank)),
	)
}

// Payload converts the draft into a create request. Empty notes become null.
func (d Draft) Payload() NewDocument {
	p := NewDocument{
		Title: d.Title,
		Tags:  ParseTags(d.Tags),
	}
	if d.Notes != "" {
		notes := d.Notes
		p.Notes = &notes
	}
	return p
}

// IsZero reports whether all fields are empty.
func (d Draft) IsZero() bool {
	return d == Draft{}
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.ErrRequired
	}
	return nil
}
