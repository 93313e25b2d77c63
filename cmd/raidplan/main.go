package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/raidplan/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "raidplan",
		Short:         "Plan raid encounters as animated, step-by-step scenes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Project config file")
	root.AddCommand(initCmd())
	root.AddCommand(newCmd())
	root.AddCommand(listCmd())
	root.AddCommand(inspectCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(importCmd())
	root.AddCommand(deleteCmd())
	root.AddCommand(viewCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
