package migrations

import (
	"github.com/shashiranjanraj/rocketcart/app/models"
	"github.com/shashiranjanraj/rocketcart/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260101000000_create_carts_table", &CreateCartsTable{})
	migration.Register("20260101000001_create_products_table", &CreateProductsTable{})
}

// -------- 0001: carts --------

type CreateCartsTable struct{}

func (m *CreateCartsTable) Up(db *gorm.DB) error {
	return db.Migrator().CreateTable(&models.Cart{})
}

func (m *CreateCartsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("carts")
}

// -------- 0002: products --------

// Products carry the cart_id foreign key (ON DELETE SET NULL), so they are
// created after carts and dropped before them.
type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}
