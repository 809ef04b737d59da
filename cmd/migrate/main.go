package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/angelmondragon/customorder-backend/pkg/config"
	"github.com/angelmondragon/customorder-backend/pkg/db"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/angelmondragon/customorder-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

const usage = `usage: migrate [-dir DIR] <command> [arg]

commands:
  up              apply all pending audit migrations
  down            roll back the latest migration
  redo            roll back and re-apply the latest migration
  status          print applied and pending migrations
  version N       migrate up or down to version N
  create NAME     write a new timestamped SQL migration
  validate        check migration files without a database`

var errUsage = errors.New("invalid arguments")

// invocation is one parsed command line.
type invocation struct {
	command string
	arg     string
	dir     string
}

// offline commands only touch files on disk.
func (inv invocation) offline() bool {
	return inv.command == "create" || inv.command == "validate"
}

func parseInvocation(args []string, stderr io.Writer) (invocation, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprintln(stderr, usage) }
	dir := fs.String("dir", "", "migrations directory on disk (default: embedded set, or "+migrate.DefaultDir+" for create/validate)")
	if err := fs.Parse(args); err != nil {
		return invocation{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return invocation{}, errUsage
	}
	inv := invocation{command: strings.ToLower(rest[0]), dir: *dir}
	switch inv.command {
	case "up", "down", "redo", "status", "validate":
		if len(rest) != 1 {
			return invocation{}, fmt.Errorf("%w: %s takes no argument", errUsage, inv.command)
		}
	case "version", "create":
		if len(rest) != 2 || strings.TrimSpace(rest[1]) == "" {
			return invocation{}, fmt.Errorf("%w: %s needs exactly one argument", errUsage, inv.command)
		}
		inv.arg = rest[1]
	default:
		fs.Usage()
		return invocation{}, fmt.Errorf("%w: unknown command %q", errUsage, inv.command)
	}
	if inv.offline() && inv.dir == "" {
		inv.dir = migrate.DefaultDir
	}
	return inv, nil
}

func runOffline(inv invocation, stdout io.Writer) error {
	switch inv.command {
	case "create":
		path, err := migrate.CreateSQLMigration(inv.dir, inv.arg)
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Fprintln(stdout, "created migration:", path)
	case "validate":
		if err := migrate.ValidateDir(inv.dir); err != nil {
			return fmt.Errorf("validate migrations: %w", err)
		}
		fmt.Fprintln(stdout, "migration validation passed")
	}
	return nil
}

func run(ctx context.Context, inv invocation, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("audit database: %w", err)
	}
	defer func() {
		if cerr := dbClient.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sqlDB, err := dbClient.SQL()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	if inv.command == "version" {
		return migrate.MigrateToVersion(ctx, sqlDB, inv.dir, inv.arg)
	}
	return migrate.Run(ctx, sqlDB, inv.dir, inv.command)
}

func main() {
	inv, err := parseInvocation(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}
	if inv.offline() {
		if err := runOffline(inv, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      logger.ParseFormat(cfg.App.LogFormat),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"command": inv.command,
	})

	if err := run(ctx, inv, cfg, logg); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migration finished")
}
