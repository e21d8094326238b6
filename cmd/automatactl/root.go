package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/meikuraledutech/automata/rpg"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "automatactl",
		Short:         "Inspect tree automata save files",
		Long:          `automatactl seeds save files from YAML content packs and inspects the quest, dialogue, skill and crafting automata they contain.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSeedCmd(), newValidateCmd(), newTreeCmd(), newPathCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readSave loads an aggregated save file into a fresh manager.
func readSave(path string) (*rpg.Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := rpg.NewManager(nil)
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func subsystemFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("subsystem", "s", rpg.SubsystemQuest, "one of quest, dialogue, skill, crafting")
}
