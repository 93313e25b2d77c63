package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/raidplan"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Store a raid from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0])
		},
	}
}

func runImport(cmd *cobra.Command, path string) error {
	ctx := context.Background()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var raid raidplan.PersistedRaid
	if err := json.Unmarshal(data, &raid); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if raid.Metadata.ID == "" {
		return fmt.Errorf("parsing %s: raid has no id", path)
	}

	cfg, log, err := loadEnv()
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	if err := st.SaveRaid(ctx, raid); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), raid.Metadata.ID)
	return nil
}
