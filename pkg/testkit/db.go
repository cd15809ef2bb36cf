package testkit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shashiranjanraj/rocketcart/app/models"
	_ "github.com/shashiranjanraj/rocketcart/database/migrations"
	"github.com/shashiranjanraj/rocketcart/pkg/database"
	"github.com/shashiranjanraj/rocketcart/pkg/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// DB opens a migrated in-memory SQLite database private to t. It is closed
// when the test ends.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	_, err = migration.New(db).Run()
	require.NoError(t, err)
	return db
}

// Product builds an unreserved product with a whole-number price.
func Product(id, name string, price int64, quantity int) models.Product {
	return models.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Quantity: quantity,
	}
}
