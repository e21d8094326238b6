package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/automata"
)

// insertTransitions writes the rule table; position preserves the order
// first-match dispatch depends on.
func insertTransitions(ctx context.Context, q querier, key string, transitions []automata.Transition) error {
	for pos, t := range transitions {
		conditions, actions := t.Conditions, t.Actions
		if conditions == nil {
			conditions = []string{}
		}
		if actions == nil {
			actions = []string{}
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO automaton_transitions (automaton_key, position, from_state, to_state, trigger_event, conditions, actions)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			key, pos, t.FromState, t.ToState, t.TriggerEvent, conditions, actions,
		); err != nil {
			return fmt.Errorf("automata: insert transition %d: %w", pos, err)
		}
	}
	return nil
}

// listTransitions returns the rule table saved under key in order.
func listTransitions(ctx context.Context, q querier, key string) ([]automata.Transition, error) {
	rows, err := q.Query(ctx,
		`SELECT from_state, to_state, trigger_event, conditions, actions
		 FROM automaton_transitions WHERE automaton_key = $1 ORDER BY position`, key)
	if err != nil {
		return nil, fmt.Errorf("automata: list transitions: %w", err)
	}
	defer rows.Close()

	transitions := []automata.Transition{}
	for rows.Next() {
		var t automata.Transition
		if err := rows.Scan(&t.FromState, &t.ToState, &t.TriggerEvent, &t.Conditions, &t.Actions); err != nil {
			return nil, fmt.Errorf("automata: scan transition: %w", err)
		}
		if t.Conditions == nil {
			t.Conditions = []string{}
		}
		if t.Actions == nil {
			t.Actions = []string{}
		}
		transitions = append(transitions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("automata: rows transitions: %w", err)
	}
	return transitions, nil
}
