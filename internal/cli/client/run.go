package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// CycleResult represents the monitor run API response.
type CycleResult struct {
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	Detected   int    `json:"changes_detected"`
	Processed  int    `json:"changes_processed"`
}

// RunCmd creates the run command.
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger a monitoring cycle",
		Long:  "Triggers one full monitoring cycle on the server and reports the result.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runRun(cmd, outputJSON)
		},
	}

	return cmd
}

func runRun(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/monitor/run", nil)
	if err != nil {
		return fmt.Errorf("monitoring cycle failed: %w", err)
	}

	var result CycleResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Cycle finished: %d changes detected, %d processed\n", result.Detected, result.Processed)
	return nil
}
