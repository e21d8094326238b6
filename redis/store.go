// Package redis stores serialized automata in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/meikuraledutech/automata"
	backend "github.com/redis/go-redis/v9"
)

// Store implements automata.Store using Redis. Each document is one JSON
// string; a set at <prefix>index tracks the saved keys.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for documents. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "automata:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k string) string {
	return s.prefix + "doc:" + k
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// SaveDocument writes doc and records key in the index.
func (s *Store) SaveDocument(ctx context.Context, key string, doc *automata.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", automata.ErrInvalidDocument)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("automata: marshal document: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("automata: save document: %w", err)
	}
	return nil
}

// GetDocument reads and decodes the document stored under key.
func (s *Store) GetDocument(ctx context.Context, key string) (*automata.Document, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, automata.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("automata: get document: %w", err)
	}

	var doc automata.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode document %q: %w", automata.ErrInvalidDocument, key, err)
	}
	return &doc, nil
}

// DeleteDocument removes key and its index entry.
func (s *Store) DeleteDocument(ctx context.Context, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(key))
	pipe.SRem(ctx, s.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("automata: delete document: %w", err)
	}
	return nil
}

// ListDocuments returns indexed keys whose document still exists. Index
// entries of expired documents are dropped on the way.
func (s *Store) ListDocuments(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("automata: list documents: %w", err)
	}

	pipe := s.client.Pipeline()
	exists := make([]*backend.IntCmd, len(members))
	for i, m := range members {
		exists[i] = pipe.Exists(ctx, s.key(m))
	}
	if len(members) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("automata: list documents: %w", err)
		}
	}

	keys := make([]string, 0, len(members))
	var stale []any
	for i, m := range members {
		if exists[i].Val() == 0 {
			stale = append(stale, m)
			continue
		}
		keys = append(keys, m)
	}
	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("automata: prune index: %w", err)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
