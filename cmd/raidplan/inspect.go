package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/raidplan"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <raid-id>",
		Short: "Print a raid's scenes, steps and entity tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
}

func runInspect(raidID string) error {
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

	raid, err := st.LoadRaid(ctx, raidID)
	if err != nil {
		return err
	}
	engine := raidplan.NewEngine(raidplan.NewRaidsState())
	raidplan.RestorePersistedRaid(engine, *raid)
	printRaid(os.Stdout, engine.State(), raidID)
	return nil
}

func printRaid(w io.Writer, s raidplan.RaidsState, raidID string) {
	m := s.Metadata[raidID]
	fmt.Fprintf(w, "%s (%s)\n", m.Name, m.ID)
	for _, sceneID := range m.SceneIDs {
		sc, ok := s.Scenes[sceneID]
		if !ok {
			continue
		}
		sw, sh := sc.Shape.Size()
		fmt.Fprintf(w, "  scene %s (%s) %s %gx%g\n", sc.Name, sc.ID, sc.Shape.Type, sw, sh)
		for i, stepID := range sc.StepIDs {
			fmt.Fprintf(w, "    step %d: %s (%s)\n", i+1, s.Steps[stepID].Name, stepID)
		}
		printEntities(w, s, sc.EntityIDs, 2)
	}
}

func printEntities(w io.Writer, s raidplan.RaidsState, ids []string, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, id := range ids {
		e, ok := s.Entities[id]
		if !ok {
			continue
		}
		if e.IsGroup() {
			fmt.Fprintf(w, "%sgroup %s (%s)\n", indent, e.Name, e.ID)
			printEntities(w, s, e.Properties.Children, depth+1)
			continue
		}
		pos := e.Properties.Position
		keyed := ""
		if pos.IsKeyed() {
			keyed = fmt.Sprintf(" keyed@%d", len(pos.Steps))
		}
		fmt.Fprintf(w, "%sshape %s (%s) at %v%s\n", indent, e.Name, e.ID, pos.Initial, keyed)
	}
}
