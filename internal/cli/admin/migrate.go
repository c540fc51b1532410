package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legal-eagles/govwatch/internal/config"
)

// MigrateCmd returns the migrate command: apply pending schema
// migrations and exit.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runMigrations(cfg.DatabaseURL)
		},
	}
}
