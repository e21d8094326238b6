package postgres

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
)

// insertNodes writes one row per node. position keeps creation order and
// child_index keeps the node's place in its parent's children list.
func insertNodes(ctx context.Context, q querier, key string, nodes []automata.Node) error {
	childIndex := make(map[uuid.UUID]int, len(nodes))
	for _, n := range nodes {
		for i, cid := range n.ChildrenIDs {
			childIndex[cid] = i
		}
	}

	for pos, n := range nodes {
		meta := n.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO automaton_nodes (automaton_key, id, parent_id, position, child_index, name, state, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			key, n.NodeID.String(), n.ParentID.String(), pos, childIndex[n.NodeID], n.Name, n.State, meta,
		); err != nil {
			return fmt.Errorf("automata: insert node %s: %w", n.NodeID, err)
		}
	}
	return nil
}

// listNodes returns the nodes saved under key in creation order with their
// children lists rebuilt.
func listNodes(ctx context.Context, q querier, key string) ([]automata.Node, error) {
	rows, err := q.Query(ctx,
		`SELECT id, parent_id, child_index, name, state, metadata
		 FROM automaton_nodes WHERE automaton_key = $1 ORDER BY position`, key)
	if err != nil {
		return nil, fmt.Errorf("automata: list nodes: %w", err)
	}
	defer rows.Close()

	type childRef struct {
		id    uuid.UUID
		index int
	}
	nodes := []automata.Node{}
	children := make(map[uuid.UUID][]childRef)
	for rows.Next() {
		var (
			idStr, parentStr string
			index            int
			n                automata.Node
		)
		if err := rows.Scan(&idStr, &parentStr, &index, &n.Name, &n.State, &n.Metadata); err != nil {
			return nil, fmt.Errorf("automata: scan node: %w", err)
		}
		if n.NodeID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("%w: node id %q: %v", automata.ErrInvalidDocument, idStr, err)
		}
		if n.ParentID, err = uuid.Parse(parentStr); err != nil {
			return nil, fmt.Errorf("%w: parent id %q: %v", automata.ErrInvalidDocument, parentStr, err)
		}
		if n.Metadata == nil {
			n.Metadata = map[string]string{}
		}
		if n.ParentID != uuid.Nil {
			children[n.ParentID] = append(children[n.ParentID], childRef{id: n.NodeID, index: index})
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("automata: rows nodes: %w", err)
	}

	for i := range nodes {
		refs := children[nodes[i].NodeID]
		slices.SortStableFunc(refs, func(a, b childRef) int { return cmp.Compare(a.index, b.index) })
		nodes[i].ChildrenIDs = make([]uuid.UUID, 0, len(refs))
		for _, r := range refs {
			nodes[i].ChildrenIDs = append(nodes[i].ChildrenIDs, r.id)
		}
	}
	return nodes, nil
}
