package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/raidplan/internal/config"
	"github.com/phanxgames/raidplan/internal/logger"
)

func initCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a project config and create the store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, dsn)
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Store DSN (sqlite:// or postgres://)")
	return cmd
}

func runInit(cmd *cobra.Command, dsn string) error {
	ctx := context.Background()

	cfg := config.Default()
	if dsn != "" {
		cfg.Store.DSN = dsn
	}
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}
	if err := config.Write(configPath, cfg); err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	st, err := openStore(ctx, &cfg, log)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s, store ready at %s\n", configPath, cfg.Store.DSN)
	return nil
}
