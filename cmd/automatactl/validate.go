package main

import (
	"fmt"

	"github.com/meikuraledutech/automata/rpg"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a save file and summarise each subsystem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readSave(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, name := range rpg.Subsystems {
				a, _ := m.Subsystem(name)
				fmt.Fprintf(w, "%-9s %3d nodes %3d transitions\n", name, a.Len(), len(a.Transitions()))
			}
			fmt.Fprintln(w, "ok")
			return nil
		},
	}
}
