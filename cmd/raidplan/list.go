package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored raids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}
}

func runList() error {
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

	raids, err := st.ListRaids(ctx)
	if err != nil {
		return err
	}
	if len(raids) == 0 {
		fmt.Fprintln(os.Stdout, "No raids found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSCENES\tSAVED")
	for _, r := range raids {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.Name, r.SceneCount, r.SavedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}
