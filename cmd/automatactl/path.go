package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path FILE FROM TO",
		Short: "Report whether two nodes are connected",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("from: %w", err)
			}
			to, err := uuid.Parse(args[2])
			if err != nil {
				return fmt.Errorf("to: %w", err)
			}

			m, err := readSave(args[0])
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("subsystem")
			a, ok := m.Subsystem(name)
			if !ok {
				return fmt.Errorf("unknown subsystem %q", name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.PathExists(from, to))
			return nil
		},
	}
	subsystemFlag(cmd)
	return cmd
}
