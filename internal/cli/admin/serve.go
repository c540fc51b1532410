package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/legal-eagles/govwatch/internal/api/handlers"
	"github.com/legal-eagles/govwatch/internal/config"
	"github.com/legal-eagles/govwatch/internal/database"
	"github.com/legal-eagles/govwatch/internal/domain"
	"github.com/legal-eagles/govwatch/internal/fetch"
	"github.com/legal-eagles/govwatch/internal/index"
	"github.com/legal-eagles/govwatch/internal/jobs"
	"github.com/legal-eagles/govwatch/internal/monitor"
	"github.com/legal-eagles/govwatch/internal/openai"
	"github.com/legal-eagles/govwatch/internal/processor"
	"github.com/legal-eagles/govwatch/internal/repository"
	"github.com/legal-eagles/govwatch/internal/server"
	"github.com/legal-eagles/govwatch/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the monitoring daemon and API server",
		Long:  "Start the govwatch API server and the background monitoring worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-worker", false, "Disable the periodic monitoring worker")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
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
	log.Printf("monitoring %d sources", len(urls))

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
		embeddingClient := openai.NewClient(cfg.OpenAIAPIKey)
		knowledgeIndex = index.New(embeddingClient, documentRepo)
		log.Println("knowledge index enabled")
	} else {
		knowledgeIndex = &disabledIndex{}
		log.Println("no OpenAI API key configured, knowledge index disabled")
	}

	proc := processor.New(knowledgeIndex, changeLogRepo)
	cycle := jobs.NewMonitorCycle(mon, proc)

	var worker *jobs.Worker
	noWorker, _ := cmd.Flags().GetBool("no-worker")
	if !noWorker && len(urls) > 0 {
		worker = jobs.NewWorker(cycle, cfg.FetchInterval)
		go worker.Start(ctx)
		log.Printf("monitoring worker started (interval: %v)", cfg.FetchInterval)
	}

	var discoveryWorker *jobs.Worker
	if !noWorker && cfg.DiscoverEnabled && len(urls) > 0 {
		discoveryWorker = jobs.NewWorker(jobs.NewDiscoveryCycle(mon), cfg.DiscoverInterval)
		go discoveryWorker.Start(ctx)
		log.Printf("discovery worker started (interval: %v)", cfg.DiscoverInterval)
	}

	routerCfg := server.RouterConfig{
		MonitorHandler: handlers.NewMonitorHandler(mon, cycle, proc, changeLogRepo, pageRepo, knowledgeIndex),
		SearchHandler:  handlers.NewSearchHandler(knowledgeIndex),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if worker != nil {
		worker.Stop()
	}
	if discoveryWorker != nil {
		discoveryWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// knowledgeIndexService is the full index surface the server wires up.
type knowledgeIndexService interface {
	Upsert(ctx context.Context, doc domain.Document) error
	UpsertBatch(ctx context.Context, docs []domain.Document) error
	DeleteByURL(ctx context.Context, url string) error
	Query(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
	Count(ctx context.Context) (int, error)
}

// disabledIndex stands in when no embedding provider is configured.
// Writes are dropped so change detection keeps running; queries fail.
type disabledIndex struct{}

func (d *disabledIndex) Upsert(ctx context.Context, doc domain.Document) error { return nil }

func (d *disabledIndex) UpsertBatch(ctx context.Context, docs []domain.Document) error { return nil }

func (d *disabledIndex) DeleteByURL(ctx context.Context, url string) error { return nil }

func (d *disabledIndex) Query(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	return nil, domain.ErrIndexUnavailable
}

func (d *disabledIndex) Count(ctx context.Context) (int, error) { return 0, nil }

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
