package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/skillpath-backend/internal/app"
	"github.com/yungbote/skillpath-backend/internal/platform/db"
	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "skillpath",
		Short:         "Skillpath learning backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newMigrateKeysCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background job workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), autoMigrate, func(ctx context.Context, a *app.App) error {
				return a.Run(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", true, "apply schema migrations before serving")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			theDB, err := db.Open(cfg.DB, log)
			if err != nil {
				return err
			}
			defer db.Close(theDB)
			return db.Migrate(theDB, log)
		},
	}
}

func newMigrateKeysCmd() *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "migrate-keys",
		Short: "Re-encrypt stored API keys written with the legacy cipher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), false, func(ctx context.Context, a *app.App) error {
				report, err := a.Services.APIKeys.MigrateLegacy(ctx, batch)
				a.Log.Info("API key migration finished",
					"scanned", report.Scanned,
					"migrated", report.Migrated,
					"failed", report.Failed,
				)
				if err != nil {
					return err
				}
				if report.Failed > 0 {
					return fmt.Errorf("%d keys could not be migrated", report.Failed)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 100, "rows loaded per batch")
	return cmd
}

func bootstrap() (app.Config, *logger.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return app.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return app.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func withApp(parent context.Context, migrate bool, fn func(context.Context, *app.App) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, log, cfg, migrate)
	if err != nil {
		log.Error("startup failed", "error", err)
		log.Sync()
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
