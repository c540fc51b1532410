package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StatusResult represents the monitor status API response.
type StatusResult struct {
	MonitoredURLs  int          `json:"monitored_urls"`
	ActivePages    int          `json:"active_pages"`
	IndexDocuments int          `json:"index_documents"`
	LastCycle      *CycleResult `json:"last_cycle,omitempty"`
}

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show monitor status",
		Long:  "Shows the monitored source count, active page records, and knowledge index size.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStatus(cmd, outputJSON)
		},
	}

	return cmd
}

func runStatus(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/monitor/status")
	if err != nil {
		return fmt.Errorf("status request failed: %w", err)
	}

	var result StatusResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Monitored sources:  %d\n", result.MonitoredURLs)
	fmt.Printf("Active pages:       %d\n", result.ActivePages)
	fmt.Printf("Indexed documents:  %d\n", result.IndexDocuments)
	if result.LastCycle != nil {
		fmt.Printf("Last cycle:         %s (%d detected, %d processed)\n",
			result.LastCycle.FinishedAt, result.LastCycle.Detected, result.LastCycle.Processed)
	} else {
		fmt.Println("Last cycle:         never")
	}
	return nil
}
