package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded CALM document.
type Document struct {
	ID        string    `json:"id"`
	Data      []byte    `json:"-"`
	Pattern   bool      `json:"pattern"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store keeps uploaded documents in memory. When full, the oldest document
// is evicted.
type Store struct {
	mu           sync.RWMutex
	docs         map[string]*Document
	maxDocuments int
}

// NewStore creates a store holding at most maxDocuments documents.
func NewStore(maxDocuments int) *Store {
	return &Store{
		docs:         make(map[string]*Document),
		maxDocuments: max(maxDocuments, 1),
	}
}

// Create stores a copy of data under a fresh id.
func (s *Store) Create(data []byte, pattern bool) *Document {
	doc := &Document{
		ID:        uuid.New().String(),
		Data:      append([]byte(nil), data...),
		Pattern:   pattern,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.docs) >= s.maxDocuments {
		var oldest *Document
		for _, d := range s.docs {
			if oldest == nil || d.CreatedAt.Before(oldest.CreatedAt) {
				oldest = d
			}
		}
		delete(s.docs, oldest.ID)
	}
	s.docs[doc.ID] = doc
	return doc
}

// Get returns the document with the given id.
func (s *Store) Get(id string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	return d, ok
}

// Delete removes a document. It reports whether the document existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	return true
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
