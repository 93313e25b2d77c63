package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phanxgames/raidplan"
	"github.com/phanxgames/raidplan/internal/store"
	"github.com/phanxgames/raidplan/internal/viewer"
)

func viewCmd() *cobra.Command {
	var scriptPath string
	var shotsDir string
	var exit bool
	cmd := &cobra.Command{
		Use:   "view <raid-id>",
		Short: "Open a raid in the interactive editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(args[0], scriptPath, shotsDir, exit)
		},
	}
	cmd.Flags().StringVar(&scriptPath, "script", "", "JSON script of input and screenshot steps")
	cmd.Flags().StringVar(&shotsDir, "screenshots", "screenshots", "Directory for screenshots")
	cmd.Flags().BoolVar(&exit, "exit", false, "Quit when the script finishes")
	return cmd
}

func runView(raidID, scriptPath, shotsDir string, exit bool) error {
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

	ed := raidplan.NewEditor(engine.State(), raidplan.EditorConfig{
		Logger:       log,
		MaxUndoDepth: cfg.Editor.MaxUndoDepth,
	})

	var script *viewer.Script
	if scriptPath != "" {
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", scriptPath, err)
		}
		if script, err = viewer.LoadScript(data); err != nil {
			return err
		}
	}

	v, err := viewer.New(ed, raidID, viewer.Config{
		Title:  cfg.Window.Title + " - " + raid.Metadata.Name,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Renderer: raidplan.RendererConfig{
			TransitionDuration: time.Duration(cfg.Editor.TransitionMS) * time.Millisecond,
			HandleDistance:     cfg.Editor.HandleDistancePx,
			HandleRadius:       cfg.Editor.HandleRadiusPx,
			Effects:            raidplan.NewEffectRegistry(raidplan.BuiltinEffects()...),
		},
		ScreenshotDir:      shotsDir,
		Script:             script,
		ExitWhenScriptDone: exit,
		Save: func(r raidplan.PersistedRaid) error {
			return st.SaveRaid(ctx, r)
		},
		Logger: log,
	})
	if err != nil {
		return err
	}

	log.Info("viewer opened", "raid", raidID)
	if err := viewer.Run(v); err != nil {
		return err
	}
	if script != nil {
		for _, err := range script.Errors() {
			log.Warn("script step failed", "err", err)
		}
	}
	if _, err := store.SaveState(ctx, st, ed.State()); err != nil {
		return err
	}
	log.Info("viewer closed, raid saved", "raid", raidID)
	return nil
}
