package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/onetool/internal/api/handlers"
	"github.com/cloo-solutions/onetool/internal/api/middleware"
	"github.com/cloo-solutions/onetool/internal/catalog"
	"github.com/cloo-solutions/onetool/internal/config"
	"github.com/cloo-solutions/onetool/internal/database"
	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/jobs"
	"github.com/cloo-solutions/onetool/internal/repository"
	"github.com/cloo-solutions/onetool/internal/server"
	"github.com/cloo-solutions/onetool/internal/service"
	"github.com/cloo-solutions/onetool/internal/storage"
	"github.com/cloo-solutions/onetool/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the OneTool API server, seed the built-in catalog and run background jobs",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides ONETOOL_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-seed", false, "Skip upserting the built-in tool catalog on startup")
	cmd.Flags().String("migrations", database.DefaultMigrationsSource, "Migration source URL")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.HasSentry() {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: telemetry.DefaultSampleRate(cfg.Environment),
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	pool, err := database.NewPool(ctx, cfg.Database())
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Println("connected to database")

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		source, _ := cmd.Flags().GetString("migrations")
		if _, err := database.Migrate(cfg.DatabaseURL, source); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	accountRepo := repository.NewAccountRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	toolRepo := repository.NewToolRepository(pool)
	prefRepo := repository.NewPreferenceRepository(pool)
	searchLogRepo := repository.NewSearchLogRepository(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(accountRepo, apiKeyRepo, uuidGen)
	catalogSvc := service.NewCatalogService(toolRepo, searchLogRepo, repository.NewTxRunner(pool), cfg.CatalogCacheTTL)
	prefSvc := service.NewPreferenceService(prefRepo, catalogSvc, cfg.PreferenceQuotaBytes)

	if noSeed, _ := cmd.Flags().GetBool("no-seed"); !noSeed {
		n, err := catalogSvc.Seed(ctx, catalog.Builtin())
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		log.Printf("catalog: seeded %d built-in tools", n)
	}

	if cfg.InitAccountName != "" {
		if err := bootstrapInitialAccount(ctx, cfg, authSvc); err != nil {
			return fmt.Errorf("failed to bootstrap initial account: %w", err)
		}
	}

	var workers []*jobs.Worker

	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, cfg.S3())
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)

		if cfg.SnapshotInterval > 0 {
			exporter := jobs.NewSnapshotExporter(catalogSvc, s3Client)
			workers = append(workers, jobs.NewWorker("snapshot", exporter, cfg.SnapshotInterval))
		}
	}

	if cfg.PruneInterval > 0 {
		pruner := jobs.NewSearchLogPruner(searchLogRepo, cfg.SearchLogRetention)
		workers = append(workers, jobs.NewWorker("search-log-pruner", pruner, cfg.PruneInterval))
	}

	reporters := make([]handlers.JobReporter, 0, len(workers))
	for _, w := range workers {
		reporters = append(reporters, w)
		go w.Start(ctx)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go limiter.Run(ctx)
	}

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:     authSvc,
		ToolHandler:       handlers.NewToolHandler(catalogSvc),
		PreferenceHandler: handlers.NewPreferenceHandler(prefSvc),
		CalcHandler:       handlers.NewCalcHandler(service.NewCalculatorService()),
		AuthHandler:       handlers.NewAuthHandler(authSvc),
		HealthHandler:     handlers.NewHealthHandler(pool, reporters...),
		RateLimiter:       limiter,
		AllowedOrigins:    cfg.AllowedOrigins,
		MaxBodyBytes:      cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	log.Println("shutting down...")

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// bootstrapAuth is the part of service.AuthService used at startup.
type bootstrapAuth interface {
	GetAccountByName(ctx context.Context, name string) (*domain.Account, error)
	CreateAccount(ctx context.Context, name string) (*domain.Account, error)
	GetAPIKeyByHash(ctx context.Context, token string) (*domain.APIKey, error)
	CreateAPIKeyWithToken(ctx context.Context, accountID, name, token string) error
}

func bootstrapInitialAccount(ctx context.Context, cfg *config.Config, authSvc bootstrapAuth) error {
	account, err := authSvc.GetAccountByName(ctx, cfg.InitAccountName)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return fmt.Errorf("failed to check existing account: %w", err)
	}

	if account == nil {
		account, err = authSvc.CreateAccount(ctx, cfg.InitAccountName)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		log.Printf("bootstrap: created account '%s' (id: %s)", account.Name, account.ID)
	} else {
		log.Printf("bootstrap: account '%s' already exists (id: %s)", account.Name, account.ID)
	}

	if cfg.InitAPIKey != "" {
		if !service.IsValidAPIToken(cfg.InitAPIKey) {
			return fmt.Errorf("invalid ONETOOL_INIT_API_KEY format (expected 'otk_<64 hex chars>')")
		}

		existingKey, err := authSvc.GetAPIKeyByHash(ctx, cfg.InitAPIKey)
		switch {
		case err == nil && existingKey != nil:
			log.Printf("bootstrap: API key already exists (id: %s)", existingKey.ID)
			return nil
		case err != nil && !errors.Is(err, domain.ErrAPIKeyNotFound):
			return fmt.Errorf("failed to check existing API key: %w", err)
		}

		if err := authSvc.CreateAPIKeyWithToken(ctx, account.ID, "bootstrap", cfg.InitAPIKey); err != nil {
			return fmt.Errorf("failed to create API key: %w", err)
		}
		log.Printf("bootstrap: created API key")
	}

	return nil
}
