package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/rocketcart/app/models"
	"github.com/shashiranjanraj/rocketcart/config"
	"github.com/shashiranjanraj/rocketcart/pkg/cache"
	"github.com/shashiranjanraj/rocketcart/pkg/metrics"
	"github.com/shashiranjanraj/rocketcart/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogSizeKey caches the product count. Only a catalog reload changes it.
const CatalogSizeKey = "rocketcart:catalog:size"

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

// Count returns the total number of products, whatever their state.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return orm.New(r.db).Model(&models.Product{}).CachedCount(ctx, CatalogSizeKey, config.CacheTTL())
}

// ForgetCount drops the cached product count.
func (r *ProductRepository) ForgetCount(ctx context.Context) error {
	return cache.Forget(ctx, CatalogSizeKey)
}

// FindByID returns gorm.ErrRecordNotFound when no product has id.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := orm.New(r.db).Model(&models.Product{}).Where("id = ?", id).First(ctx, &p)
	return p, err
}

// FindForUpdate is FindByID with a row lock held until the surrounding
// transaction ends. SQLite ignores the lock and serialises writers instead.
func (r *ProductRepository) FindForUpdate(ctx context.Context, id string) (models.Product, error) {
	defer metrics.ObserveDBQuery("select_for_update", time.Now())

	var p models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error
	return p, err
}

// All returns every product ordered by id.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := orm.New(r.db).Model(&models.Product{}).Order("id").Get(ctx, &products)
	return products, err
}

// Available returns every product with stock, ordered by id.
func (r *ProductRepository) Available(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := orm.New(r.db).Model(&models.Product{}).Scopes(models.Available).Order("id").Get(ctx, &products)
	return products, err
}

// InCart returns the products reserved in cartID, ordered by id. With lock
// set the rows stay locked until the transaction ends.
func (r *ProductRepository) InCart(ctx context.Context, cartID string, lock bool) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	q := r.db.WithContext(ctx).Scopes(models.InCart(cartID)).Order("id")
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	products := []models.Product{}
	err := q.Find(&products).Error
	return products, err
}

// MoveToCart links an unreserved, in-stock product to cartID and zeroes its
// quantity. It reports how many rows matched the guard (0 or 1).
func (r *ProductRepository) MoveToCart(ctx context.Context, id, cartID string) (int64, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND cart_id IS NULL AND quantity > ?", id, 0).
		Updates(map[string]interface{}{"cart_id": cartID, "quantity": 0})
	return res.RowsAffected, res.Error
}

// ReturnToStock unlinks a product reserved in cartID and sets its quantity
// to one unit.
func (r *ProductRepository) ReturnToStock(ctx context.Context, id, cartID string) (int64, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND cart_id = ?", id, cartID).
		Updates(map[string]interface{}{"cart_id": nil, "quantity": 1})
	return res.RowsAffected, res.Error
}

// ClearCart unlinks exactly ids from cartID, leaving quantities alone.
func (r *ProductRepository) ClearCart(ctx context.Context, cartID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	defer metrics.ObserveDBQuery("update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("cart_id = ? AND id IN ?", cartID, ids).
		Update("cart_id", nil)
	return res.RowsAffected, res.Error
}

// DeleteAll removes every product.
func (r *ProductRepository) DeleteAll(ctx context.Context) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Product{}).Error
}

// CreateAll inserts products in batches.
func (r *ProductRepository) CreateAll(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	defer metrics.ObserveDBQuery("insert", time.Now())

	return r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(&products, 100).Error
}
