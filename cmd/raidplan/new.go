package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/raidplan"
)

func newCmd() *cobra.Command {
	var name string
	var scenes int
	var width, height float64
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a raid with empty scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}
			if scenes < 1 {
				return fmt.Errorf("--scenes must be at least 1")
			}
			return runNew(cmd, name, scenes, raidplan.Rectangle(width, height))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Raid name")
	cmd.Flags().IntVar(&scenes, "scenes", 1, "Number of scenes to create")
	cmd.Flags().Float64Var(&width, "width", 100, "Stage width")
	cmd.Flags().Float64Var(&height, "height", 100, "Stage height")
	return cmd
}

func runNew(cmd *cobra.Command, name string, scenes int, stage raidplan.Shape) error {
	ctx := context.Background()

	cfg, log, err := loadEnv()
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	ed := raidplan.NewEditor(raidplan.NewRaidsState(), raidplan.EditorConfig{Logger: log})
	raidID := ed.CreateRaid(name)
	for range scenes {
		ed.CreateScene(raidID, "", stage)
	}

	raid, _ := raidplan.PersistedRaidOf(ed.State(), raidID)
	if err := st.SaveRaid(ctx, raid); err != nil {
		return err
	}
	log.Info("raid created", "raid", raidID, "scenes", scenes)
	fmt.Fprintln(cmd.OutOrStdout(), raidID)
	return nil
}
