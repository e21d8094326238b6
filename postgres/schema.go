package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS automata (
    key          TEXT PRIMARY KEY,
    root_node_id TEXT NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS automaton_nodes (
    automaton_key TEXT NOT NULL REFERENCES automata(key) ON DELETE CASCADE,
    id            TEXT NOT NULL,
    parent_id     TEXT NOT NULL,
    position      INT  NOT NULL,
    child_index   INT  NOT NULL,
    name          TEXT NOT NULL,
    state         TEXT NOT NULL,
    metadata      JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (automaton_key, id)
);

CREATE TABLE IF NOT EXISTS automaton_transitions (
    automaton_key TEXT NOT NULL REFERENCES automata(key) ON DELETE CASCADE,
    position      INT  NOT NULL,
    from_state    TEXT NOT NULL,
    to_state      TEXT NOT NULL,
    trigger_event TEXT NOT NULL,
    conditions    TEXT[] NOT NULL DEFAULT '{}',
    actions       TEXT[] NOT NULL DEFAULT '{}',
    PRIMARY KEY (automaton_key, position)
);

CREATE INDEX IF NOT EXISTS idx_automaton_nodes_parent ON automaton_nodes(automaton_key, parent_id);
CREATE INDEX IF NOT EXISTS idx_automaton_transitions_match
    ON automaton_transitions(automaton_key, from_state, trigger_event);
`

// CreateSchema creates the automata tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the automata tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS automaton_transitions, automaton_nodes, automata CASCADE;`)
	return err
}
