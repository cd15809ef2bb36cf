package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shashiranjanraj/rocketcart/app/models"
	"github.com/shashiranjanraj/rocketcart/pkg/event"
	"github.com/shashiranjanraj/rocketcart/pkg/storage"
	"github.com/shashiranjanraj/rocketcart/pkg/testkit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceAll(t *testing.T) {
	ctx := context.Background()
	db := testkit.DB(t)
	events := event.NewDispatcher()
	catalog := NewCatalogService(db, events)

	var replaced []models.Cart
	events.Listen(EventCatalogReplaced, func(_ context.Context, p interface{}) {
		replaced = append(replaced, p.(models.Cart))
	})

	first, err := catalog.ReplaceAll(ctx, []models.Product{
		testkit.Product("a", "Apple", 10, 5),
		testkit.Product("b", "Banana", 5, 0),
		testkit.Product("a", "Apple again", 99, 1),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	n, err := catalog.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	a, err := catalog.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Apple", a.Name)

	second, err := catalog.ReplaceAll(ctx, []models.Product{testkit.Product("c", "Cherry", 3, 2)})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = catalog.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err = catalog.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var carts []models.Cart
	require.NoError(t, db.Find(&carts).Error)
	require.Len(t, carts, 1)
	assert.Equal(t, second.ID, carts[0].ID)

	require.Len(t, replaced, 2)
	assert.Equal(t, second.ID, replaced[1].ID)
}

func TestReplaceAllRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogService(testkit.DB(t), event.NewDispatcher())

	_, err := catalog.ReplaceAll(ctx, []models.Product{testkit.Product("keep", "Keep", 1, 1)})
	require.NoError(t, err)

	cases := map[string]models.Product{
		"empty id":       testkit.Product("", "Nameless", 1, 1),
		"long id":        testkit.Product(strings.Repeat("x", 65), "Long", 1, 1),
		"empty name":     testkit.Product("a", "", 1, 1),
		"long name":      testkit.Product("a", strings.Repeat("n", 257), 1, 1),
		"negative price": testkit.Product("a", "Apple", -1, 1),
		"huge price":     {ID: "a", Name: "Apple", Price: decimal.RequireFromString("12345678901234"), Quantity: 1},
		"negative qty":   testkit.Product("a", "Apple", 1, -1),
		"control char":   testkit.Product("a\n", "Apple", 1, 1),
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.ReplaceAll(ctx, []models.Product{p})
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}

	// A rejected load leaves the previous catalog in place.
	_, err = catalog.Get(ctx, "keep")
	assert.NoError(t, err)
}

func TestReplaceAllCountsCharacters(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogService(testkit.DB(t), event.NewDispatcher())

	id := strings.Repeat("é", 64)
	name := strings.Repeat("ü", 256)
	_, err := catalog.ReplaceAll(ctx, []models.Product{testkit.Product(id, name, 1, 1)})
	require.NoError(t, err)

	p, err := catalog.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, name, p.Name)

	_, err = catalog.ReplaceAll(ctx, []models.Product{testkit.Product(id+"é", "Apple", 1, 1)})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestAvailableIgnoresCartMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		testkit.Product("a", "Apple", 10, 5),
		testkit.Product("b", "Banana", 5, 2),
	)

	// A reserved row with stock can only come from outside the engine; the
	// view still lists it.
	cartID := f.cart.CartID()
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", "b").Update("cart_id", cartID).Error)

	available, err := f.catalog.Available(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(available))
}

func TestDecodeCatalog(t *testing.T) {
	in := `[
		{"id": " a ", "name": "Apple", "price": 10.5, "quantity": 5},
		{"id": "b", "name": "Banana", "price": "5.00", "quantity": 0}
	]`

	products, err := DecodeCatalog(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, "10.50", products[0].Price.StringFixed(2))
	assert.Equal(t, "5.00", products[1].Price.StringFixed(2))
	assert.Equal(t, 0, products[1].Quantity)

	_, err = DecodeCatalog(strings.NewReader(`{"id":"a"}`))
	assert.Error(t, err)
}

func TestImportExport(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocal(t.TempDir())
	catalog := NewCatalogService(testkit.DB(t), event.NewDispatcher())

	require.NoError(t, disk.Put(ctx, "in.json", strings.NewReader(
		`[{"id":"a","name":"Apple","price":"10.25","quantity":5},{"id":"b","name":"Banana","price":5,"quantity":0}]`,
	)))

	cart, n, err := catalog.Import(ctx, disk, "in.json")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotEmpty(t, cart.ID)

	written, err := catalog.Export(ctx, disk, "out/catalog.json")
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	rc, err := disk.Open(ctx, "out/catalog.json")
	require.NoError(t, err)
	defer rc.Close()
	back, err := DecodeCatalog(rc)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "10.25", back[0].Price.StringFixed(2))
	assert.Equal(t, "b", back[1].ID)

	_, _, err = catalog.Import(ctx, disk, "missing.json")
	assert.ErrorIs(t, err, storage.ErrNotExist)
}
