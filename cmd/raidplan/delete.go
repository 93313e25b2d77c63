package main

import (
	"context"

	"github.com/spf13/cobra"
)

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <raid-id>",
		Short: "Remove a stored raid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			return st.DeleteRaid(ctx, args[0])
		},
	}
}
