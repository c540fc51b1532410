package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/legal-eagles/govwatch/internal/cli"
	"github.com/legal-eagles/govwatch/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "govwatchd",
		Short: "Govwatch daemon",
		Long:  "Govwatch daemon for monitoring government web pages and serving the knowledge API",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.CycleCmd())
	rootCmd.AddCommand(admin.MigrateCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
