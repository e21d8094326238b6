package automata

import (
	"context"
	"errors"
)

var (
	ErrNodeNotFound       = errors.New("automata: node not found")
	ErrAlreadyInitialized = errors.New("automata: root already initialized")
	ErrNotInitialized     = errors.New("automata: root not initialized")
	ErrRootRemoval        = errors.New("automata: root node cannot be removed")
	ErrDispatchInProgress = errors.New("automata: event dispatch in progress")
	ErrInvalidDocument    = errors.New("automata: invalid document")
	ErrDocumentNotFound   = errors.New("automata: document not found")
)

// Store defines the contract for persisting serialized automata.
type Store interface {
	// SaveDocument stores doc under key, replacing any previous document.
	SaveDocument(ctx context.Context, key string, doc *Document) error
	// GetDocument returns ErrDocumentNotFound if key has never been saved.
	GetDocument(ctx context.Context, key string) (*Document, error)
	// DeleteDocument is a no-op for unknown keys.
	DeleteDocument(ctx context.Context, key string) error
	// ListDocuments returns all keys in ascending order.
	ListDocuments(ctx context.Context) ([]string, error)
}
