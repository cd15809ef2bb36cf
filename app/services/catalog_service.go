package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shashiranjanraj/rocketcart/app/models"
	"github.com/shashiranjanraj/rocketcart/app/repositories"
	"github.com/shashiranjanraj/rocketcart/pkg/event"
	"github.com/shashiranjanraj/rocketcart/pkg/logger"
	"github.com/shashiranjanraj/rocketcart/pkg/storage"
	"github.com/shashiranjanraj/rocketcart/pkg/validate"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EventCatalogReplaced fires after a bulk load commits. Payload: models.Cart.
const EventCatalogReplaced = "catalog.replaced"

// maxPriceDigits matches the decimal(15,2) column.
const maxPriceDigits = 15

// CatalogService owns product lookups and the destructive bulk load.
type CatalogService struct {
	db       *gorm.DB
	products *repositories.ProductRepository
	carts    *repositories.CartRepository
	events   *event.Dispatcher
}

// NewCatalogService wires the service to db. A nil events uses the
// process-wide dispatcher.
func NewCatalogService(db *gorm.DB, events *event.Dispatcher) *CatalogService {
	if events == nil {
		events = event.Default()
	}
	return &CatalogService{
		db:       db,
		products: repositories.NewProductRepository(db),
		carts:    repositories.NewCartRepository(db),
		events:   events,
	}
}

// Count returns the number of products regardless of state.
func (s *CatalogService) Count(ctx context.Context) (int64, error) {
	return s.products.Count(ctx)
}

// Get looks a product up by exact id.
func (s *CatalogService) Get(ctx context.Context, id string) (models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	return p, err
}

// Available lists the products that can be reserved.
func (s *CatalogService) Available(ctx context.Context) ([]models.Product, error) {
	return s.products.Available(ctx)
}

// ReplaceAll wipes products and carts, inserts products and creates the one
// cart, all in one transaction. It returns the new cart.
func (s *CatalogService) ReplaceAll(ctx context.Context, products []models.Product) (models.Cart, error) {
	for i := range products {
		if err := validateProduct(products[i]); err != nil {
			return models.Cart{}, fmt.Errorf("record %d: %w", i, err)
		}
	}
	rows := dedupe(ctx, products)

	var cart models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productRepo := s.products.WithTx(tx)
		cartRepo := s.carts.WithTx(tx)

		if err := productRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete products: %w", err)
		}
		if err := cartRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete carts: %w", err)
		}
		if err := productRepo.CreateAll(ctx, rows); err != nil {
			return fmt.Errorf("insert products: %w", err)
		}

		var err error
		cart, err = cartRepo.Create(ctx)
		if err != nil {
			return fmt.Errorf("create cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Cart{}, err
	}

	if err := s.products.ForgetCount(ctx); err != nil {
		logger.WithCtx(ctx).Warn("catalog: forget cached size", "error", err)
	}
	s.events.Fire(ctx, EventCatalogReplaced, cart)
	return cart, nil
}

// Import loads the JSON catalog at path on disk and replaces the catalog
// with it. It returns the new cart and the number of records read.
func (s *CatalogService) Import(ctx context.Context, disk storage.Disk, path string) (models.Cart, int, error) {
	rc, err := disk.Open(ctx, path)
	if err != nil {
		return models.Cart{}, 0, err
	}
	defer rc.Close()

	products, err := DecodeCatalog(rc)
	if err != nil {
		return models.Cart{}, 0, fmt.Errorf("%s: %w", path, err)
	}
	cart, err := s.ReplaceAll(ctx, products)
	if err != nil {
		return models.Cart{}, 0, err
	}

	logger.WithCtx(ctx).Info("catalog: imported", "path", path, "records", len(products), "cart_id", cart.ID)
	return cart, len(products), nil
}

// Export writes every product to path on disk in the import format. Cart
// membership is not part of the format.
func (s *CatalogService) Export(ctx context.Context, disk storage.Disk, path string) (int, error) {
	products, err := s.products.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}

	var buf bytes.Buffer
	if err := EncodeCatalog(&buf, products); err != nil {
		return 0, err
	}
	if err := disk.Put(ctx, path, &buf); err != nil {
		return 0, err
	}
	return len(products), nil
}

// ProductRecord is one entry of a catalog import file. Price accepts JSON
// numbers and strings.
type ProductRecord struct {
	ID       string          `json:"id"       validate:"required,max=64,printable"`
	Name     string          `json:"name"     validate:"required,max=256"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gte=0"`
}

// DecodeCatalog reads a JSON array of ProductRecord, keeping file order.
func DecodeCatalog(r io.Reader) ([]models.Product, error) {
	var records []ProductRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	out := make([]models.Product, 0, len(records))
	for _, rec := range records {
		out = append(out, models.Product{
			ID:       strings.TrimSpace(rec.ID),
			Name:     strings.TrimSpace(rec.Name),
			Price:    rec.Price,
			Quantity: rec.Quantity,
		})
	}
	return out, nil
}

// EncodeCatalog writes products as an indented JSON array of ProductRecord.
func EncodeCatalog(w io.Writer, products []models.Product) error {
	records := make([]ProductRecord, len(products))
	for i, p := range products {
		records[i] = ProductRecord{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: p.Quantity}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// dedupe keeps the first record of each id and normalises the row for
// insertion. Later duplicates are logged and skipped.
func dedupe(ctx context.Context, products []models.Product) []models.Product {
	seen := make(map[string]bool, len(products))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if seen[p.ID] {
			logger.WithCtx(ctx).Warn("catalog: duplicate product id skipped", "product_id", p.ID)
			continue
		}
		seen[p.ID] = true
		p.CartID = nil
		p.Cart = nil
		p.Price = p.Price.Round(2)
		out = append(out, p)
	}
	return out
}

// validateProduct applies the record tags, then the price checks the tags
// cannot express.
func validateProduct(p models.Product) error {
	rec := ProductRecord{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: p.Quantity}
	if err := validate.Check(rec); err != nil {
		return fmt.Errorf("%w: product %q: %v", ErrInvalidRecord, p.ID, err)
	}

	switch {
	case p.Price.IsNegative():
		return fmt.Errorf("%w: product %q: negative price", ErrInvalidRecord, p.ID)
	case len(p.Price.Round(2).Truncate(0).Abs().String())+2 > maxPriceDigits:
		return fmt.Errorf("%w: product %q: price exceeds %d digits", ErrInvalidRecord, p.ID, maxPriceDigits)
	}
	return nil
}
