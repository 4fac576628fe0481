package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Kyz7/storefront/internal/config"
	"github.com/Kyz7/storefront/internal/database"
	"github.com/Kyz7/storefront/internal/logger"
	"github.com/Kyz7/storefront/internal/role"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "storefront",
	Short:        "Storefront API server and maintenance commands",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(createSuperuserCmd)
}

// bootstrap loads configuration, connects and brings the schema and the
// permission catalog up to date. Every command starts here.
func bootstrap(ctx context.Context) (*config.Config, *logrus.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	log := logger.New(cfg)

	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	log.Info("database migrated")

	if err := database.RunMigrations(db, log); err != nil {
		log.WithError(err).Warn("SQL migrations failed, list filters may be slower")
	}

	added, err := role.SyncPermissions(ctx, db)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("permission sync failed: %w", err)
	}
	if added > 0 {
		log.WithField("added", added).Info("permissions synced")
	}

	if err := role.SeedDefaultRoles(ctx, db); err != nil {
		log.WithError(err).Warn("failed to seed default roles")
	}

	return cfg, log, db, nil
}
