package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
	"github.com/spf13/cobra"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print one subsystem as an indented tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readSave(args[0])
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("subsystem")
			a, ok := m.Subsystem(name)
			if !ok {
				return fmt.Errorf("unknown subsystem %q", name)
			}
			ids, _ := cmd.Flags().GetBool("ids")
			printTree(cmd.OutOrStdout(), a, a.RootID(), 0, ids)
			return nil
		},
	}
	subsystemFlag(cmd)
	cmd.Flags().Bool("ids", false, "print node ids")
	return cmd
}

func printTree(w io.Writer, a *automata.Automaton, id uuid.UUID, depth int, ids bool) {
	n, ok := a.GetNode(id)
	if !ok {
		return
	}
	fmt.Fprintf(w, "%s%s [%s]", strings.Repeat("  ", depth), n.Name, n.State)
	if ids {
		fmt.Fprintf(w, " %s", n.NodeID)
	}
	fmt.Fprintln(w)
	for _, cid := range n.ChildrenIDs {
		printTree(w, a, cid, depth+1, ids)
	}
}
