package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/rocketcart/app/models"
	"github.com/shashiranjanraj/rocketcart/pkg/metrics"
	"gorm.io/gorm"
)

// CartRepository handles database operations for Cart.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) WithTx(tx *gorm.DB) *CartRepository {
	return &CartRepository{db: tx}
}

// List returns at most limit carts. Asking for two is enough to tell "one"
// from "none" and "several".
func (r *CartRepository) List(ctx context.Context, limit int) ([]models.Cart, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	carts := []models.Cart{}
	err := r.db.WithContext(ctx).Order("id").Limit(limit).Find(&carts).Error
	return carts, err
}

// Create inserts a new cart with a generated id.
func (r *CartRepository) Create(ctx context.Context) (models.Cart, error) {
	defer metrics.ObserveDBQuery("insert", time.Now())

	cart := models.Cart{}
	err := r.db.WithContext(ctx).Create(&cart).Error
	return cart, err
}

// DeleteAll removes every cart.
func (r *CartRepository) DeleteAll(ctx context.Context) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Cart{}).Error
}
