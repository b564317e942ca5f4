package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/sections/pkg/domain"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.StoredDocument
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.StoredDocument),
	}
}

// Save persists a copy of the document in memory.
func (s *Store) Save(ctx context.Context, doc *domain.StoredDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[doc.ID] = *doc
	return nil
}

// Load retrieves a copy of the document.
func (s *Store) Load(ctx context.Context, id string) (*domain.StoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return &doc, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
