package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DiscoverResult represents the discover API response.
type DiscoverResult struct {
	Discovered []string `json:"discovered"`
	Count      int      `json:"count"`
}

// DiscoverCmd creates the discover command.
func DiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover candidate pages",
		Long:  "Harvests same-domain links from the monitored sources and lists pages not yet monitored.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDiscover(cmd, outputJSON)
		},
	}

	return cmd
}

func runDiscover(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/monitor/discover", nil)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	var result DiscoverResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if result.Count == 0 {
		fmt.Println("No new pages discovered.")
		return nil
	}

	fmt.Printf("Discovered %d candidate pages:\n", result.Count)
	for _, url := range result.Discovered {
		fmt.Printf("  %s\n", url)
	}
	return nil
}
