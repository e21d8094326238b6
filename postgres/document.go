package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
)

// SaveDocument stores a full automaton (nodes + transitions) in one
// transaction, replacing whatever was saved under key before.
// The document must describe a valid tree.
func (s *PGStore) SaveDocument(ctx context.Context, key string, doc *automata.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", automata.ErrInvalidDocument)
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("automata: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Replace semantics: child rows cascade.
	if _, err := tx.Exec(ctx, `DELETE FROM automata WHERE key = $1`, key); err != nil {
		return fmt.Errorf("automata: delete previous: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO automata (key, root_node_id) VALUES ($1, $2)`,
		key, doc.RootNodeID.String(),
	); err != nil {
		return fmt.Errorf("automata: insert automaton: %w", err)
	}

	if err := insertNodes(ctx, tx, key, doc.Nodes); err != nil {
		return err
	}
	if err := insertTransitions(ctx, tx, key, doc.Transitions); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("automata: commit: %w", err)
	}
	return nil
}

// GetDocument loads the automaton saved under key.
// Returns automata.ErrDocumentNotFound if nothing was saved.
func (s *PGStore) GetDocument(ctx context.Context, key string) (*automata.Document, error) {
	var rootStr string
	err := s.db.QueryRow(ctx,
		`SELECT root_node_id FROM automata WHERE key = $1`, key,
	).Scan(&rootStr)
	if err != nil {
		if isNoRows(err) {
			return nil, automata.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("automata: get automaton: %w", err)
	}

	root, err := uuid.Parse(rootStr)
	if err != nil {
		return nil, fmt.Errorf("%w: root id %q: %v", automata.ErrInvalidDocument, rootStr, err)
	}

	nodes, err := listNodes(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	transitions, err := listTransitions(ctx, s.db, key)
	if err != nil {
		return nil, err
	}

	doc := &automata.Document{
		RootNodeID:  root,
		Nodes:       nodes,
		Transitions: transitions,
	}
	// Rows may have been edited outside this package.
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes everything saved under key.
// No error if the key doesn't exist.
func (s *PGStore) DeleteDocument(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM automata WHERE key = $1`, key); err != nil {
		return fmt.Errorf("automata: delete automaton: %w", err)
	}
	return nil
}

// ListDocuments returns all saved keys in order.
func (s *PGStore) ListDocuments(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT key FROM automata ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("automata: list automata: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("automata: scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("automata: rows keys: %w", err)
	}
	return keys, nil
}
