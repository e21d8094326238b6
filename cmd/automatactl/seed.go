package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/meikuraledutech/automata/rpg"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Build a save file from a content pack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, _ := cmd.Flags().GetString("content")
			out, _ := cmd.Flags().GetString("out")

			c, err := rpg.LoadContentFile(content)
			if err != nil {
				return err
			}
			m := rpg.NewManager(nil)
			if err := m.Apply(c); err != nil {
				return err
			}
			data, err := json.MarshalIndent(m, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().String("content", "", "YAML content pack")
	cmd.Flags().String("out", "save.json", "save file to write")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}
