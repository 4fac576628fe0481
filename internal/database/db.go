package database

import (
	"github.com/Kyz7/storefront/internal/config"
	"github.com/Kyz7/storefront/internal/logger"
	"github.com/Kyz7/storefront/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Gorm(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	return db, nil
}

// Migrate registers the explicit link tables and auto-migrates every model.
func Migrate(db *gorm.DB) error {
	joins := []struct {
		model interface{}
		field string
		join  interface{}
	}{
		{&models.User{}, "Roles", &models.UserRole{}},
		{&models.Role{}, "Users", &models.UserRole{}},
		{&models.Role{}, "Permissions", &models.RolePermission{}},
		{&models.Permission{}, "Roles", &models.RolePermission{}},
	}
	for _, j := range joins {
		if err := db.SetupJoinTable(j.model, j.field, j.join); err != nil {
			return errors.Wrapf(err, "setup join table for %s", j.field)
		}
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Role{},
		&models.Permission{},
		&models.UserRole{},
		&models.RolePermission{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
	)
	if err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}
