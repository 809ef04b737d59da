// Command orderform runs the custom order wizard in a terminal, keeping the
// draft in a local slot file between runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/customorder-backend/internal/catalog"
	"github.com/angelmondragon/customorder-backend/internal/draft"
	"github.com/angelmondragon/customorder-backend/internal/orders"
	"github.com/angelmondragon/customorder-backend/internal/submission"
	"github.com/angelmondragon/customorder-backend/internal/validation"
	"github.com/angelmondragon/customorder-backend/internal/wizard"
	"github.com/angelmondragon/customorder-backend/pkg/config"
	"github.com/angelmondragon/customorder-backend/pkg/emailjs"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/angelmondragon/customorder-backend/pkg/storage"
	"github.com/angelmondragon/customorder-backend/pkg/storage/drive"
	"github.com/angelmondragon/customorder-backend/pkg/storage/gcs"
)

func main() {
	slotDir := flag.String("slot-dir", defaultSlotDir(), "directory holding the saved draft")
	slot := flag.String("slot", "", "optional slot name, for keeping several drafts")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so they do not interleave with the prompts.
	logg := logger.New(logger.Options{
		ServiceName: "orderform",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      logger.ParseFormat(cfg.App.LogFormat),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
	})

	if err := run(cfg, logg, *slotDir, *slot); err != nil {
		if errors.Is(err, errAborted) || errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "aborted; your progress is saved")
			os.Exit(130)
		}
		logg.Error(context.Background(), "orderform failed", err)
		os.Exit(1)
	}
}

func defaultSlotDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "customorder")
	}
	return ".customorder"
}

func run(cfg *config.Config, logg *logger.Logger, slotDir, slot string) error {
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

	drafts := draft.NewBestEffort(draft.NewFileSlot(slotDir), logg)

	mailer := emailjs.NewClient(cfg.EmailJS, logg)
	if ierr := mailer.Init(ctx); ierr != nil {
		logg.Warn(logg.WithField(ctx, "error", ierr.Error()), "emailjs not ready, submissions will be refused")
	}

	controller := wizard.NewController(validation.NewEngine(loc), cat, nil)
	assembler := orders.NewAssembler(cat, loc)

	opts := []submission.Option{
		submission.WithLogger(logg),
		submission.WithNoticeTimings(submission.NoticeTimings{
			AutoDismiss: cfg.Form.NoticeAutoDismiss,
			ResetDelay:  cfg.Form.ResetDelay,
		}),
	}
	if uploader := buildStorage(ctx, cfg, logg); uploader != nil {
		opts = append(opts, submission.WithUploader(submission.NewLogoStore(uploader, time.Now, loc)))
	}
	pipeline, err := submission.NewPipeline(controller, assembler, mailer, drafts, opts...)
	if err != nil {
		return fmt.Errorf("build submission pipeline: %w", err)
	}

	r := &runner{
		prompt:     surveyPrompter{},
		controller: controller,
		assembler:  assembler,
		submitter:  pipeline,
		drafts:     drafts,
		key:        draft.Key(slot),
		out:        os.Stdout,
		readFile:   os.ReadFile,
	}
	return r.Run(ctx)
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
		return nil
	}
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "logo storage unavailable")
		return nil
	}
	if err := backend.Init(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "logo storage init failed, uploads will be skipped")
	}
	return backend
}
