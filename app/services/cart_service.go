package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shashiranjanraj/rocketcart/app/models"
	"github.com/shashiranjanraj/rocketcart/app/repositories"
	"github.com/shashiranjanraj/rocketcart/pkg/event"
	"github.com/shashiranjanraj/rocketcart/pkg/logger"
	"github.com/shashiranjanraj/rocketcart/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart event names. Payload: CartEvent.
const (
	EventReserved   = "cart.reserved"
	EventReleased   = "cart.released"
	EventCheckedOut = "cart.checked_out"
)

// CartEvent describes a committed cart transition. TotalCost is the cart
// value right after a reserve or release, and the charged amount for a
// checkout.
type CartEvent struct {
	Type       string          `json:"type"`
	CartID     string          `json:"cart_id"`
	ProductIDs []string        `json:"product_ids"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

// Contents is a snapshot of the cart.
type Contents struct {
	Products  []models.Product
	TotalCost decimal.Decimal
}

// CartService runs the reservation state machine against the single cart.
// The cart id is resolved once by NewCartService; every operation checks,
// inside its own transaction, that this cart is still the only one.
type CartService struct {
	db       *gorm.DB
	products *repositories.ProductRepository
	carts    *repositories.CartRepository
	events   *event.Dispatcher
	cartID   string
}

// NewCartService resolves the cart handle. It fails with ErrInvariant unless
// exactly one cart exists.
func NewCartService(ctx context.Context, db *gorm.DB, events *event.Dispatcher) (*CartService, error) {
	if events == nil {
		events = event.Default()
	}
	s := &CartService{
		db:       db,
		products: repositories.NewProductRepository(db),
		carts:    repositories.NewCartRepository(db),
		events:   events,
	}

	cart, err := s.singleton(ctx, s.carts)
	if err != nil {
		return nil, err
	}
	s.cartID = cart.ID
	return s, nil
}

// CartID is the id of the cart this service operates on.
func (s *CartService) CartID() string {
	return s.cartID
}

// Reserve moves an available, unreserved product into the cart, pulling all
// of its stock: quantity becomes 0.
func (s *CartService) Reserve(ctx context.Context, id string) error {
	var total decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.verify(ctx, tx); err != nil {
			return err
		}
		products := s.products.WithTx(tx)

		p, err := products.FindForUpdate(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("reserve %q: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("reserve %q: %w", id, err)
		}
		if p.Reserved() {
			return fmt.Errorf("reserve %q: %w", id, ErrConflict)
		}
		if !p.Available() {
			return fmt.Errorf("reserve %q: out of stock: %w", id, ErrNotFound)
		}

		n, err := products.MoveToCart(ctx, id, s.cartID)
		if err != nil {
			return fmt.Errorf("reserve %q: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("reserve %q: %w", id, ErrConflict)
		}

		total, err = s.total(ctx, products)
		return err
	})

	count(metrics.CartReservations, err)
	if err != nil {
		return err
	}

	logger.WithCtx(ctx).Info("cart: product reserved", "product_id", id, "cart_id", s.cartID)
	s.fire(ctx, EventReserved, []string{id}, total)
	return nil
}

// Release takes a reserved product out of the cart and puts one unit back
// in stock. The quantity held before Reserve is not restored.
func (s *CartService) Release(ctx context.Context, id string) error {
	var total decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.verify(ctx, tx); err != nil {
			return err
		}
		products := s.products.WithTx(tx)

		p, err := products.FindForUpdate(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("release %q: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("release %q: %w", id, err)
		}
		if !s.holds(p) {
			return fmt.Errorf("release %q: %w", id, ErrNotInCart)
		}

		n, err := products.ReturnToStock(ctx, id, s.cartID)
		if err != nil {
			return fmt.Errorf("release %q: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("release %q: %w", id, ErrNotInCart)
		}

		total, err = s.total(ctx, products)
		return err
	})

	count(metrics.CartReleases, err)
	if err != nil {
		return err
	}

	logger.WithCtx(ctx).Info("cart: product released", "product_id", id, "cart_id", s.cartID)
	s.fire(ctx, EventReleased, []string{id}, total)
	return nil
}

// Item returns a product only while it is reserved.
func (s *CartService) Item(ctx context.Context, id string) (models.Product, error) {
	var out models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.verify(ctx, tx); err != nil {
			return err
		}

		p, err := s.products.WithTx(tx).FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart item %q: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("cart item %q: %w", id, err)
		}
		if !s.holds(p) {
			return fmt.Errorf("cart item %q: %w", id, ErrNotInCart)
		}
		out = p
		return nil
	})
	return out, err
}

// Contents lists the reserved products and the sum of their prices. An
// empty cart is a valid result with a zero total.
func (s *CartService) Contents(ctx context.Context) (Contents, error) {
	var out Contents
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.verify(ctx, tx); err != nil {
			return err
		}
		items, err := s.products.WithTx(tx).InCart(ctx, s.cartID, false)
		if err != nil {
			return fmt.Errorf("cart contents: %w", err)
		}
		out = Contents{Products: items, TotalCost: models.Total(items)}
		return nil
	})
	return out, err
}

// Checkout captures the reserved set and its total, then empties the cart
// in the same transaction. Quantities stay as they are. Unlike Contents, an
// empty cart is an error (ErrEmptyCart).
func (s *CartService) Checkout(ctx context.Context) (Contents, error) {
	var out Contents
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.verify(ctx, tx); err != nil {
			return err
		}
		products := s.products.WithTx(tx)

		items, err := products.InCart(ctx, s.cartID, true)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if len(items) == 0 {
			return fmt.Errorf("checkout: %w", ErrEmptyCart)
		}

		ids := make([]string, len(items))
		for i, p := range items {
			ids[i] = p.ID
		}
		n, err := products.ClearCart(ctx, s.cartID, ids)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if n != int64(len(ids)) {
			return fmt.Errorf("checkout: cleared %d of %d products: %w", n, len(ids), ErrConflict)
		}

		out = Contents{Products: items, TotalCost: models.Total(items)}
		return nil
	})

	count(metrics.CartCheckouts, err)
	if err != nil {
		return Contents{}, err
	}

	metrics.CartCheckoutValue.Observe(out.TotalCost.InexactFloat64())
	logger.WithCtx(ctx).Info("cart: checked out",
		"cart_id", s.cartID,
		"products", len(out.Products),
		"total_cost", out.TotalCost.StringFixed(2),
	)

	ids := make([]string, len(out.Products))
	for i, p := range out.Products {
		ids[i] = p.ID
	}
	s.fire(ctx, EventCheckedOut, ids, out.TotalCost)
	return out, nil
}

// total is the cart value as seen inside the caller's transaction.
func (s *CartService) total(ctx context.Context, products *repositories.ProductRepository) (decimal.Decimal, error) {
	items, err := products.InCart(ctx, s.cartID, false)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cart total: %w", err)
	}
	return models.Total(items), nil
}

func (s *CartService) holds(p models.Product) bool {
	return p.CartID != nil && *p.CartID == s.cartID
}

// verify re-reads the carts inside tx.
func (s *CartService) verify(ctx context.Context, tx *gorm.DB) error {
	cart, err := s.singleton(ctx, s.carts.WithTx(tx))
	if err != nil {
		return err
	}
	if cart.ID != s.cartID {
		return fmt.Errorf("%w: cart %s replaced by %s", ErrInvariant, s.cartID, cart.ID)
	}
	return nil
}

func (s *CartService) singleton(ctx context.Context, carts *repositories.CartRepository) (models.Cart, error) {
	found, err := carts.List(ctx, 2)
	if err != nil {
		return models.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	switch len(found) {
	case 0:
		return models.Cart{}, fmt.Errorf("%w: no cart exists", ErrInvariant)
	case 1:
		return found[0], nil
	default:
		return models.Cart{}, fmt.Errorf("%w: more than one cart exists", ErrInvariant)
	}
}

func (s *CartService) fire(ctx context.Context, name string, ids []string, total decimal.Decimal) {
	s.events.Fire(ctx, name, CartEvent{
		Type:       name,
		CartID:     s.cartID,
		ProductIDs: ids,
		TotalCost:  total,
	})
}

func count(c *prometheus.CounterVec, err error) {
	c.WithLabelValues(resultLabel(err)).Inc()
}
