package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ChangeEntry represents one change log entry in the API response.
type ChangeEntry struct {
	ID             string `json:"id"`
	URL            string `json:"url"`
	ChangeType     string `json:"change_type"`
	OldFingerprint string `json:"old_fingerprint,omitempty"`
	NewFingerprint string `json:"new_fingerprint"`
	DetectedAt     string `json:"detected_at"`
}

// ChangesResult represents the changes API response.
type ChangesResult struct {
	Days    int           `json:"days"`
	Changes []ChangeEntry `json:"changes"`
}

// ChangesCmd creates the changes command.
func ChangesCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "changes",
		Short: "List recent content changes",
		Long:  "Lists the change log entries detected during the last N days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runChanges(cmd, days, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "Look back this many days")

	return cmd
}

func runChanges(cmd *cobra.Command, days int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/monitor/changes?days=%d", days))
	if err != nil {
		return fmt.Errorf("changes request failed: %w", err)
	}

	var result ChangesResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(result.Changes) == 0 {
		fmt.Printf("No changes in the last %d days.\n", result.Days)
		return nil
	}

	fmt.Printf("%d changes in the last %d days:\n\n", len(result.Changes), result.Days)
	for i, change := range result.Changes {
		fmt.Printf("%d. [%s] %s\n", i+1, change.ChangeType, change.URL)
		fmt.Printf("   detected at: %s\n", change.DetectedAt)
		if i < len(result.Changes)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}
	return nil
}
