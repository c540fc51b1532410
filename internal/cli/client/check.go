package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// CheckRequest represents the check-url API request.
type CheckRequest struct {
	URL         string `json:"url"`
	ForceUpdate bool   `json:"force_update,omitempty"`
}

// CheckResult represents the check-url API response.
type CheckResult struct {
	URL            string `json:"url"`
	Changed        bool   `json:"changed"`
	ChangeType     string `json:"change_type,omitempty"`
	OldFingerprint string `json:"old_fingerprint,omitempty"`
	NewFingerprint string `json:"new_fingerprint,omitempty"`
	DetectedAt     string `json:"detected_at,omitempty"`
}

// CheckCmd creates the check command.
func CheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Check a single URL for changes",
		Long:  "Fetches one URL, compares it against the stored fingerprint, and ingests any detected change.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			force, _ := cmd.Flags().GetBool("force")
			return runCheck(cmd, args[0], force, outputJSON)
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Re-ingest the page even if its content is unchanged")

	return cmd
}

func runCheck(cmd *cobra.Command, url string, force, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/monitor/check-url", CheckRequest{URL: url, ForceUpdate: force})
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	var result CheckResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if !result.Changed {
		fmt.Printf("%s: unchanged\n", result.URL)
		return nil
	}

	fmt.Printf("%s: %s\n", result.URL, result.ChangeType)
	if result.OldFingerprint != "" {
		fmt.Printf("  old: %s\n", result.OldFingerprint)
	}
	fmt.Printf("  new: %s\n", result.NewFingerprint)
	if result.DetectedAt != "" {
		fmt.Printf("  detected at: %s\n", result.DetectedAt)
	}
	return nil
}
