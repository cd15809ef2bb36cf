package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shashiranjanraj/rocketcart/app/models"
	"github.com/shashiranjanraj/rocketcart/pkg/event"
	"github.com/shashiranjanraj/rocketcart/pkg/testkit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	events  *event.Dispatcher
	catalog *CatalogService
	cart    *CartService
}

func newFixture(t *testing.T, products ...models.Product) *fixture {
	t.Helper()
	ctx := context.Background()

	db := testkit.DB(t)
	events := event.NewDispatcher()
	catalog := NewCatalogService(db, events)

	_, err := catalog.ReplaceAll(ctx, products)
	require.NoError(t, err)

	cart, err := NewCartService(ctx, db, events)
	require.NoError(t, err)

	return &fixture{db: db, events: events, catalog: catalog, cart: cart}
}

func (f *fixture) product(t *testing.T, id string) models.Product {
	t.Helper()
	p, err := f.catalog.Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

func ids(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestCartWalkthrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		testkit.Product("a", "Apple", 10, 5),
		testkit.Product("b", "Banana", 5, 0),
	)

	available, err := f.catalog.Available(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(available))

	err = f.cart.Reserve(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.cart.Reserve(ctx, "a"))
	a := f.product(t, "a")
	assert.Equal(t, 0, a.Quantity)
	require.NotNil(t, a.CartID)
	assert.Equal(t, f.cart.CartID(), *a.CartID)

	contents, err := f.cart.Contents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(contents.Products))
	assert.True(t, decimal.NewFromInt(10).Equal(contents.TotalCost))

	done, err := f.cart.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(done.Products))
	assert.True(t, decimal.NewFromInt(10).Equal(done.TotalCost))

	a = f.product(t, "a")
	assert.Nil(t, a.CartID)
	assert.Equal(t, 0, a.Quantity)

	available, err = f.catalog.Available(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)

	contents, err = f.cart.Contents(ctx)
	require.NoError(t, err)
	assert.Empty(t, contents.Products)
	assert.True(t, contents.TotalCost.IsZero())
}

func TestReserveTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testkit.Product("a", "Apple", 10, 5))

	require.NoError(t, f.cart.Reserve(ctx, "a"))
	before := f.product(t, "a")

	err := f.cart.Reserve(ctx, "a")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, before, f.product(t, "a"))
}

func TestReserveUnknownProduct(t *testing.T) {
	f := newFixture(t, testkit.Product("a", "Apple", 10, 5))

	err := f.cart.Reserve(context.Background(), "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestReleaseRestocksOneUnit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testkit.Product("a", "Apple", 10, 5))

	require.NoError(t, f.cart.Reserve(ctx, "a"))
	require.NoError(t, f.cart.Release(ctx, "a"))

	a := f.product(t, "a")
	assert.Nil(t, a.CartID)
	assert.Equal(t, 1, a.Quantity)

	available, err := f.catalog.Available(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(available))
}

func TestReleaseUnreserved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testkit.Product("a", "Apple", 10, 5))
	before := f.product(t, "a")

	err := f.cart.Release(ctx, "a")
	assert.ErrorIs(t, err, ErrNotInCart)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, f.product(t, "a"))

	err = f.cart.Release(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrNotInCart))
}

func TestItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		testkit.Product("a", "Apple", 10, 5),
		testkit.Product("b", "Banana", 5, 3),
	)
	require.NoError(t, f.cart.Reserve(ctx, "a"))

	p, err := f.cart.Item(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Apple", p.Name)

	_, err = f.cart.Item(ctx, "b")
	assert.ErrorIs(t, err, ErrNotInCart)

	_, err = f.cart.Item(ctx, "c")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutEmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testkit.Product("a", "Apple", 10, 5))

	contents, err := f.cart.Contents(ctx)
	require.NoError(t, err)
	assert.Empty(t, contents.Products)

	_, err = f.cart.Checkout(ctx)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutSumsPrices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		models.Product{ID: "a", Name: "Apple", Price: decimal.RequireFromString("10.75"), Quantity: 1},
		models.Product{ID: "b", Name: "Banana", Price: decimal.RequireFromString("4.50"), Quantity: 9},
		testkit.Product("c", "Cherry", 3, 2),
	)
	require.NoError(t, f.cart.Reserve(ctx, "a"))
	require.NoError(t, f.cart.Reserve(ctx, "b"))

	out, err := f.cart.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(out.Products))
	assert.Equal(t, "15.25", out.TotalCost.StringFixed(2))

	contents, err := f.cart.Contents(ctx)
	require.NoError(t, err)
	assert.Empty(t, contents.Products)
	assert.Equal(t, 2, f.product(t, "c").Quantity)
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testkit.Product("a", "Apple", 10, 5))

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.cart.Reserve(ctx, "a")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, wins)
}

func TestMutationsFireEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testkit.Product("a", "Apple", 10, 5))

	var got []CartEvent
	record := func(_ context.Context, payload interface{}) {
		got = append(got, payload.(CartEvent))
	}
	f.events.Listen(EventReserved, record)
	f.events.Listen(EventReleased, record)
	f.events.Listen(EventCheckedOut, record)

	require.NoError(t, f.cart.Reserve(ctx, "a"))
	require.NoError(t, f.cart.Release(ctx, "a"))
	assert.Error(t, f.cart.Release(ctx, "a"))
	require.NoError(t, f.cart.Reserve(ctx, "a"))
	_, err := f.cart.Checkout(ctx)
	require.NoError(t, err)

	require.Len(t, got, 4)
	assert.Equal(t, EventReserved, got[0].Type)
	assert.True(t, decimal.NewFromInt(10).Equal(got[0].TotalCost))
	assert.True(t, got[1].TotalCost.IsZero())
	assert.Equal(t, EventReleased, got[1].Type)
	assert.Equal(t, EventReserved, got[2].Type)
	assert.Equal(t, EventCheckedOut, got[3].Type)
	assert.Equal(t, []string{"a"}, got[3].ProductIDs)
	assert.True(t, decimal.NewFromInt(10).Equal(got[3].TotalCost))
}

func TestCartInvariant(t *testing.T) {
	ctx := context.Background()

	t.Run("no cart", func(t *testing.T) {
		db := testkit.DB(t)
		_, err := NewCartService(ctx, db, nil)
		assert.ErrorIs(t, err, ErrInvariant)
	})

	t.Run("second cart", func(t *testing.T) {
		f := newFixture(t, testkit.Product("a", "Apple", 10, 5))
		require.NoError(t, f.db.Create(&models.Cart{}).Error)

		err := f.cart.Reserve(ctx, "a")
		assert.ErrorIs(t, err, ErrInvariant)
		assert.Equal(t, 5, f.product(t, "a").Quantity)

		_, err = f.cart.Contents(ctx)
		assert.ErrorIs(t, err, ErrInvariant)

		_, err = f.cart.Item(ctx, "a")
		assert.ErrorIs(t, err, ErrInvariant)

		_, err = NewCartService(ctx, f.db, nil)
		assert.ErrorIs(t, err, ErrInvariant)
	})

	t.Run("cart replaced by reload", func(t *testing.T) {
		f := newFixture(t, testkit.Product("a", "Apple", 10, 5))
		_, err := f.catalog.ReplaceAll(ctx, []models.Product{testkit.Product("a", "Apple", 10, 5)})
		require.NoError(t, err)

		err = f.cart.Reserve(ctx, "a")
		assert.ErrorIs(t, err, ErrInvariant)

		_, err = f.cart.Item(ctx, "a")
		assert.ErrorIs(t, err, ErrInvariant, "not ErrNotInCart")
	})
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "not_found", resultLabel(ErrNotInCart))
	assert.Equal(t, "conflict", resultLabel(ErrConflict))
	assert.Equal(t, "empty", resultLabel(ErrEmptyCart))
	assert.Equal(t, "invariant", resultLabel(ErrInvariant))
	assert.Equal(t, "error", resultLabel(errors.New("boom")))
}
