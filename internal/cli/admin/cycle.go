package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/legal-eagles/govwatch/internal/config"
	"github.com/legal-eagles/govwatch/internal/database"
	"github.com/legal-eagles/govwatch/internal/fetch"
	"github.com/legal-eagles/govwatch/internal/index"
	"github.com/legal-eagles/govwatch/internal/jobs"
	"github.com/legal-eagles/govwatch/internal/monitor"
	"github.com/legal-eagles/govwatch/internal/openai"
	"github.com/legal-eagles/govwatch/internal/processor"
	"github.com/legal-eagles/govwatch/internal/repository"
)

// CycleCmd returns the cycle command: one detect-and-ingest pass, then exit.
func CycleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Run one monitoring cycle and exit",
		Long:  "Check every configured source for content changes, ingest the changes, and exit",
		RunE:  runCycle,
	}

	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runCycle(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	urls, err := cfg.MonitoredURLs()
	if err != nil {
		return fmt.Errorf("failed to load monitored sources: %w", err)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no sources configured")
	}

	pageRepo := repository.NewPageRepository(pool)
	changeLogRepo := repository.NewChangeLogRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)

	fetcher := fetch.NewFetcher(fetch.Config{
		Timeout:   cfg.FetchTimeout,
		MaxConns:  cfg.MaxConcurrentFetches,
		UserAgent: cfg.UserAgent,
	})
	defer fetcher.Close()

	mon := monitor.New(fetcher, pageRepo, urls, cfg.MaxConcurrentFetches)

	var knowledgeIndex knowledgeIndexService
	if cfg.HasOpenAI() {
		knowledgeIndex = index.New(openai.NewClient(cfg.OpenAIAPIKey), documentRepo)
	} else {
		knowledgeIndex = &disabledIndex{}
		log.Println("no OpenAI API key configured, knowledge index disabled")
	}

	cycle := jobs.NewMonitorCycle(mon, processor.New(knowledgeIndex, changeLogRepo))
	if err := cycle.RunCycle(ctx); err != nil {
		return err
	}

	if stats := cycle.LastCycle(); stats != nil {
		fmt.Printf("cycle finished: %d changes detected, %d processed\n", stats.Detected, stats.Processed)
	}
	return nil
}
