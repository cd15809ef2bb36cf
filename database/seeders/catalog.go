package seeders

import (
	"context"

	"github.com/shashiranjanraj/rocketcart/app/services"
	"github.com/shashiranjanraj/rocketcart/config"
	"github.com/shashiranjanraj/rocketcart/pkg/logger"
	"github.com/shashiranjanraj/rocketcart/pkg/storage"
	"gorm.io/gorm"
)

func init() {
	Register("catalog", SeedCatalog)
}

// SeedCatalog replaces the catalog with CATALOG_SEED_FILE from the default
// disk. Without the setting it does nothing.
func SeedCatalog(ctx context.Context, db *gorm.DB) error {
	path := config.CatalogSeedFile()
	if path == "" {
		logger.Info("seed: CATALOG_SEED_FILE not set, catalog left alone")
		return nil
	}

	disk, err := storage.Use("")
	if err != nil {
		return err
	}
	_, _, err = services.NewCatalogService(db, nil).Import(ctx, disk, path)
	return err
}
