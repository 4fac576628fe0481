package database

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type Migration struct {
	ID        uint   `gorm:"primaryKey"`
	Version   string `gorm:"uniqueIndex;size:255"`
	AppliedAt time.Time
}

// RunMigrations applies the embedded SQL files in name order, skipping
// versions already recorded in the migrations table.
func RunMigrations(db *gorm.DB, log *logrus.Logger) error {
	return runMigrations(db, log, migrationFiles, "migrations")
}

func runMigrations(db *gorm.DB, log *logrus.Logger, files fs.FS, dir string) error {
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return errors.Wrap(err, "create migrations table")
	}

	names, err := fs.Glob(files, path.Join(dir, "*.sql"))
	if err != nil {
		return errors.Wrap(err, "read migrations directory")
	}
	sort.Strings(names)

	for _, file := range names {
		version := path.Base(file)
		entry := log.WithField("migration", version)

		var count int64
		if err := db.Model(&Migration{}).Where("version = ?", version).Count(&count).Error; err != nil {
			return errors.Wrapf(err, "check migration %s", version)
		}
		if count > 0 {
			entry.Debug("skipping migration, already applied")
			continue
		}

		sqlContent, err := fs.ReadFile(files, file)
		if err != nil {
			return errors.Wrapf(err, "read migration %s", version)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(sqlContent)).Error; err != nil {
				return errors.Wrapf(err, "execute migration %s", version)
			}
			return tx.Create(&Migration{Version: version, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return err
		}
		entry.Info("applied migration")
	}

	return nil
}

func GetAppliedMigrations(db *gorm.DB) ([]Migration, error) {
	var migrations []Migration
	if err := db.Order("applied_at DESC").Find(&migrations).Error; err != nil {
		return nil, err
	}
	return migrations, nil
}
