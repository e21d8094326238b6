// Package memory provides an in-process automata.Store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/meikuraledutech/automata"
)

// Store implements automata.Store in memory.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*automata.Document
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		docs: make(map[string]*automata.Document),
	}
}

// SaveDocument keeps a private copy of doc.
func (s *Store) SaveDocument(ctx context.Context, key string, doc *automata.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", automata.ErrInvalidDocument)
	}
	c := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = c
	return nil
}

// GetDocument returns a copy so callers cannot reach into the store.
func (s *Store) GetDocument(ctx context.Context, key string) (*automata.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, automata.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

// DeleteDocument removes key.
func (s *Store) DeleteDocument(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}

// ListDocuments returns the stored keys in order.
func (s *Store) ListDocuments(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.docs))
	for k := range s.docs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}
