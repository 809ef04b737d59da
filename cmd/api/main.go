package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/customorder-backend/api/controllers"
	"github.com/angelmondragon/customorder-backend/api/routes"
	"github.com/angelmondragon/customorder-backend/internal/attempts"
	"github.com/angelmondragon/customorder-backend/internal/catalog"
	"github.com/angelmondragon/customorder-backend/internal/draft"
	"github.com/angelmondragon/customorder-backend/internal/forms"
	"github.com/angelmondragon/customorder-backend/internal/orders"
	"github.com/angelmondragon/customorder-backend/internal/submission"
	"github.com/angelmondragon/customorder-backend/internal/validation"
	"github.com/angelmondragon/customorder-backend/internal/wizard"
	"github.com/angelmondragon/customorder-backend/pkg/config"
	"github.com/angelmondragon/customorder-backend/pkg/db"
	"github.com/angelmondragon/customorder-backend/pkg/emailjs"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/angelmondragon/customorder-backend/pkg/metrics"
	"github.com/angelmondragon/customorder-backend/pkg/migrate"
	"github.com/angelmondragon/customorder-backend/pkg/redis"
	"github.com/angelmondragon/customorder-backend/pkg/storage"
	"github.com/angelmondragon/customorder-backend/pkg/storage/drive"
	"github.com/angelmondragon/customorder-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      logger.ParseFormat(cfg.App.LogFormat),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api stopped with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.App.Location()
	if err != nil {
		return fmt.Errorf("resolving timezone: %w", err)
	}

	cat, err := loadCatalog(cfg.App.CatalogFile)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pingers := map[string]db.Pinger{}
	collaborators := map[string]controllers.StateReporter{}

	// Drafts and the submit throttle live in redis; without it drafts stay
	// in process memory.
	var drafts draft.Store = draft.NewMemoryStore()
	var limiter routes.RateLimiter
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, rerr := redis.New(ctx, cfg.Redis, logg)
		if rerr != nil {
			return fmt.Errorf("bootstrap redis: %w", rerr)
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
		drafts = draft.NewRedisStore(redisClient, cfg.Form.DraftTTL)
		limiter = redisClient
		pingers["redis"] = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, drafts are kept in memory")
	}
	bestEffort := draft.NewBestEffort(drafts, logg)

	uploader := buildStorage(ctx, cfg, logg)
	if uploader != nil {
		collaborators["storage"] = uploader
	}

	mailer := emailjs.NewClient(cfg.EmailJS, logg)
	if ierr := mailer.Init(ctx); ierr != nil {
		logg.Warn(logg.WithField(ctx, "error", ierr.Error()), "emailjs not ready, submissions will be refused")
	}
	collaborators["emailjs"] = mailer

	controller := wizard.NewController(validation.NewEngine(loc), cat, nil)
	assembler := orders.NewAssembler(cat, loc)

	opts := []submission.Option{
		submission.WithLogger(logg),
		submission.WithMetrics(metrics.NewSubmissionMetrics(registry)),
		submission.WithNoticeTimings(submission.NoticeTimings{
			AutoDismiss: cfg.Form.NoticeAutoDismiss,
			ResetDelay:  cfg.Form.ResetDelay,
		}),
	}
	if uploader != nil {
		opts = append(opts, submission.WithUploader(submission.NewLogoStore(uploader, time.Now, loc)))
	}

	var attemptRepo *attempts.Repository
	if cfg.FeatureFlags.AuditEnabled {
		dbClient, derr := db.New(ctx, cfg.DB, logg)
		if derr != nil {
			return fmt.Errorf("bootstrap audit database: %w", derr)
		}
		defer func() { err = multierr.Append(err, dbClient.Close()) }()

		if migrate.AutoApplyEnabled(cfg) {
			sqlDB, serr := dbClient.SQL()
			if serr != nil {
				return fmt.Errorf("audit sql handle: %w", serr)
			}
			if merr := migrate.AutoApply(ctx, cfg, logg, sqlDB); merr != nil {
				return fmt.Errorf("dev migrations: %w", merr)
			}
		}
		attemptRepo, err = attempts.NewRepository(dbClient.DB())
		if err != nil {
			return err
		}
		opts = append(opts, submission.WithAudit(attemptRepo))
		pingers["database"] = dbClient
	}

	pipeline, err := submission.NewPipeline(controller, assembler, mailer, bestEffort, opts...)
	if err != nil {
		return fmt.Errorf("build submission pipeline: %w", err)
	}
	formService, err := forms.NewService(controller, assembler, pipeline, bestEffort, logg)
	if err != nil {
		return fmt.Errorf("build form service: %w", err)
	}

	deps := routes.Dependencies{
		Catalog:       cat,
		Forms:         formService,
		RateLimiter:   limiter,
		HTTPMetrics:   metrics.NewHTTPMetrics(registry),
		Gatherer:      registry,
		Pingers:       pingers,
		Collaborators: collaborators,
	}
	if attemptRepo != nil {
		deps.Attempts = attemptRepo
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"storage":  cfg.Storage.Provider,
		"audit":    cfg.FeatureFlags.AuditEnabled,
		"emailjs":  mailer.State(),
		"timezone": loc.String(),
		"products": len(cat.Products()),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if lerr := server.ListenAndServe(); lerr != nil && !errors.Is(lerr, http.ErrServerClosed) {
			serveErr <- lerr
		}
		close(serveErr)
	}()

	select {
	case lerr := <-serveErr:
		if lerr != nil {
			return fmt.Errorf("api server stopped unexpectedly: %w", lerr)
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return catalog.Load(raw)
}

// buildStorage returns the configured logo backend after its init
// handshake, or nil when storage is disabled or misconfigured. A failed
// init still returns the backend so its state shows up in readiness.
func buildStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) storage.Uploader {
	var (
		backend storage.Uploader
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Provider)) {
	case "drive":
		backend, err = drive.NewClient(ctx, cfg.Storage, cfg.GCP, logg)
	case "gcs":
		backend, err = gcs.NewClient(ctx, cfg.Storage, cfg.GCP, logg)
	default:
		logg.Info(ctx, "logo storage disabled")
		return nil
	}
	if err != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{"provider": cfg.Storage.Provider, "error": err.Error()}), "logo storage unavailable")
		return nil
	}
	if err := backend.Init(ctx); err != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{"provider": cfg.Storage.Provider, "error": err.Error()}), "logo storage init failed, uploads will be skipped")
	}
	return backend
}
