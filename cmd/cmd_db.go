package main

import (
	"fmt"

	"github.com/Kyz7/storefront/internal/catalog"
	"github.com/Kyz7/storefront/internal/database"
	"github.com/Kyz7/storefront/internal/middleware"
	"github.com/Kyz7/storefront/internal/user"
	"github.com/Kyz7/storefront/internal/validation"
	"github.com/spf13/cobra"
)

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and sync permissions, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		applied, err := database.GetAppliedMigrations(db)
		if err != nil {
			return err
		}
		for _, m := range applied {
			log.WithField("applied_at", m.AppliedAt).Info(m.Version)
		}
		return nil
	},
}

var (
	seedCategories int
	seedProducts   int
)

// storefront seed --categories 5 --products 50
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create sample categories and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		if err := catalog.NewService(db).Seed(cmd.Context(), seedCategories, seedProducts); err != nil {
			return err
		}
		log.WithFields(map[string]interface{}{
			"categories": seedCategories,
			"products":   seedProducts,
		}).Info("catalog seeded")
		return nil
	},
}

var superuser user.CreateUserInput

// storefront createsuperuser --username admin --email admin@example.com --password ...
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an active superuser account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if superuser.Name == "" {
			superuser.Name = superuser.Username
		}
		if err := validation.Struct(superuser); err != nil {
			return err
		}

		_, log, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		svc := user.NewService(db, middleware.NewResolver(db))
		u, err := svc.CreateSuperuser(cmd.Context(), superuser)
		if err != nil {
			return err
		}
		log.WithField("id", u.ID).Info(fmt.Sprintf("superuser %s created", u.Username))
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCategories, "categories", 5, "number of categories")
	seedCmd.Flags().IntVar(&seedProducts, "products", 50, "number of products")

	createSuperuserCmd.Flags().StringVar(&superuser.Username, "username", "", "login name (required)")
	createSuperuserCmd.Flags().StringVar(&superuser.Email, "email", "", "e-mail address (required)")
	createSuperuserCmd.Flags().StringVar(&superuser.Password, "password", "", "password, at least 8 characters (required)")
	createSuperuserCmd.Flags().StringVar(&superuser.Name, "name", "", "display name, defaults to the username")
	_ = createSuperuserCmd.MarkFlagRequired("username")
	_ = createSuperuserCmd.MarkFlagRequired("email")
	_ = createSuperuserCmd.MarkFlagRequired("password")
}
