// Package state holds the client-side view state of the archive UI.
//
// A Store is owned by the composition root and injected into the controller
// and the view. Every request takes a Ticket from a single monotonic counter
// before it is sent; responses carrying an outdated ticket are discarded.
package state

import (
	"sync"

	archive "github.com/jason-riddle/archive-go"
)

// Ticket is a monotonic request sequence number.
type Ticket uint64

// ViewState is a point-in-time copy of the store.
type ViewState struct {
	Documents []archive.Document
	Loading   bool
	Uploading bool
	Query     string
	Draft     archive.Draft
}

// Store is a concurrency-safe view state container.
type Store struct {
	mu sync.Mutex

	docs  []archive.Document
	query string
	draft archive.Draft

	loading   int
	uploading int

	seq        Ticket
	lastList   Ticket
	listed     bool
	lastEntity map[archive.DocumentID]Ticket
	removed    map[archive.DocumentID]Ticket
	created    map[archive.DocumentID]Ticket
	updated    map[archive.DocumentID]Ticket
}

// New returns an empty store.
func New() *Store {
	return &Store{
		docs:       []archive.Document{},
		lastEntity: make(map[archive.DocumentID]Ticket),
		removed:    make(map[archive.DocumentID]Ticket),
		created:    make(map[archive.DocumentID]Ticket),
		updated:    make(map[archive.DocumentID]Ticket),
	}
}

// next issues a ticket. Callers hold s.mu.
func (s *Store) next() Ticket {
	s.seq++
	return s.seq
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]archive.Document, len(s.docs))
	for i, d := range s.docs {
		docs[i] = d.Clone()
	}

	return ViewState{
		Documents: docs,
		Loading:   s.loading > 0,
		Uploading: s.uploading > 0,
		Query:     s.query,
		Draft:     s.draft,
	}
}

// Document returns a copy of the document with the given id.
func (s *Store) Document(id archive.DocumentID) (archive.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.docs {
		if d.ID == id {
			return d.Clone(), true
		}
	}
	return archive.Document{}, false
}

// Len returns the number of documents held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// SetQuery records the search string.
func (s *Store) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// Query returns the search string.
func (s *Store) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Draft returns the form fields.
func (s *Store) Draft() archive.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the form fields.
func (s *Store) SetDraft(d archive.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

// ResetDraft clears the form fields.
func (s *Store) ResetDraft() {
	s.SetDraft(archive.Draft{})
}

// BeginList marks a list fetch as outstanding. The returned release func
// must be called exactly once when the fetch completes, whatever the outcome.
func (s *Store) BeginList() (Ticket, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.next()
	s.lastList = t
	s.loading++

	var once sync.Once
	return t, func() {
		once.Do(func() {
			s.mu.Lock()
			s.loading--
			s.mu.Unlock()
		})
	}
}

// ApplyList replaces the document list with docs if t is the newest list
// ticket. Documents deleted after t was issued are left out, documents
// created after t was issued are kept at the front and documents updated
// after t was issued keep their local copy. It reports whether the list was
// applied.
func (s *Store) ApplyList(t Ticket, docs []archive.Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.lastList {
		return false
	}

	local := make(map[archive.DocumentID]archive.Document, len(s.docs))
	for _, d := range s.docs {
		local[d.ID] = d
	}

	inList := make(map[archive.DocumentID]bool, len(docs))
	next := make([]archive.Document, 0, len(docs))
	for _, d := range docs {
		if rt, ok := s.removed[d.ID]; ok && rt > t {
			continue
		}
		inList[d.ID] = true
		if ut, ok := s.updated[d.ID]; ok && ut > t {
			if cur, ok := local[d.ID]; ok {
				next = append(next, cur)
				continue
			}
		}
		next = append(next, d.Clone())
	}

	var fresh []archive.Document
	for _, d := range s.docs {
		if ct, ok := s.created[d.ID]; ok && ct > t && !inList[d.ID] {
			fresh = append(fresh, d)
		}
	}

	s.docs = append(fresh, next...)
	s.listed = true
	s.forget(t)
	return true
}

// forget drops bookkeeping that no longer affects lists issued after t.
// Callers hold s.mu.
func (s *Store) forget(t Ticket) {
	for id, rt := range s.removed {
		if rt <= t {
			delete(s.removed, id)
		}
	}
	for id, ct := range s.created {
		if ct <= t {
			delete(s.created, id)
		}
	}
	for id, ut := range s.updated {
		if ut <= t {
			delete(s.updated, id)
		}
	}
}

// Prepend inserts a newly created document at the front of the list.
func (s *Store) Prepend(doc archive.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.next()
	s.created[doc.ID] = t
	delete(s.removed, doc.ID)
	s.docs = append([]archive.Document{doc.Clone()}, s.docs...)
}

// BeginEntity issues a ticket for a request on one document.
func (s *Store) BeginEntity(id archive.DocumentID) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.next()
	s.lastEntity[id] = t
	return t
}

// BeginUpload issues an entity ticket and marks an upload as outstanding.
// The release func must be called once the upload completes.
func (s *Store) BeginUpload(id archive.DocumentID) (Ticket, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.next()
	s.lastEntity[id] = t
	s.uploading++

	var once sync.Once
	return t, func() {
		once.Do(func() {
			s.mu.Lock()
			s.uploading--
			s.mu.Unlock()
		})
	}
}

// ApplyDocument replaces the entry with the given id in place if t is the
// newest ticket for that id. Order and other entries are untouched. It
// reports whether an entry was replaced.
func (s *Store) ApplyDocument(t Ticket, id archive.DocumentID, doc archive.Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastEntity[id] != t {
		return false
	}
	delete(s.lastEntity, id)

	for i := range s.docs {
		if s.docs[i].ID == id {
			s.docs[i] = doc.Clone()
			// Stamped at completion: any list issued before now may hold the old copy.
			s.updated[id] = s.next()
			return true
		}
	}
	return false
}

// Remove filters the document out of the list. Removal always wins over
// responses for the same id that are still in flight.
func (s *Store) Remove(t Ticket, id archive.DocumentID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stamped at completion: any list issued before now may still hold id.
	s.removed[id] = s.next()
	delete(s.created, id)
	delete(s.updated, id)
	if s.lastEntity[id] <= t {
		delete(s.lastEntity, id)
	}

	next := s.docs[:0:0]
	for _, d := range s.docs {
		if d.ID != id {
			next = append(next, d)
		}
	}
	s.docs = next
}

// Seed sets the whole list from a persisted snapshot. It does nothing once
// a fetched list has been applied or documents have been added, and
// reports whether the list was set.
func (s *Store) Seed(docs []archive.Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listed || len(s.docs) > 0 {
		return false
	}

	next := make([]archive.Document, len(docs))
	for i, d := range docs {
		next[i] = d.Clone()
	}
	s.docs = next
	return true
}
