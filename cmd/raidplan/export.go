package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <raid-id>",
		Short: "Write a raid as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func runExport(raidID, out string) error {
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
	data, err := json.MarshalIndent(raid, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling raid: %w", err)
	}
	data = append(data, '\n')

	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	log.Info("raid exported", "raid", raidID, "path", out)
	return nil
}
