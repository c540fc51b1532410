package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/legal-eagles/govwatch/internal/cli"
	"github.com/legal-eagles/govwatch/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "govwatch",
		Short: "Govwatch CLI - government web page monitoring",
		Long: `Govwatch CLI provides commands to drive the monitoring daemon.

Environment variables:
  GOVWATCH_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.RunCmd())
	rootCmd.AddCommand(client.CheckCmd())
	rootCmd.AddCommand(client.StatusCmd())
	rootCmd.AddCommand(client.ChangesCmd())
	rootCmd.AddCommand(client.DiscoverCmd())
	rootCmd.AddCommand(client.SearchCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
