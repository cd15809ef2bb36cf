package kernel

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/shashiranjanraj/rocketcart/app/models"
	"github.com/shashiranjanraj/rocketcart/app/services"
	"github.com/shashiranjanraj/rocketcart/pkg/event"
	"github.com/shashiranjanraj/rocketcart/pkg/testkit"
	"github.com/shashiranjanraj/rocketcart/pkg/ws"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	db := testkit.DB(t)
	events := event.NewDispatcher()
	catalog := services.NewCatalogService(db, events)
	_, err := catalog.ReplaceAll(ctx, []models.Product{
		{ID: "a", Name: "Apple", Price: decimal.RequireFromString("10.99"), Quantity: 5},
		testkit.Product("b", "Banana", 5, 0),
	})
	require.NoError(t, err)

	cart, err := services.NewCartService(ctx, db, events)
	require.NoError(t, err)

	k, err := NewHTTPKernel(Deps{DB: db, Catalog: catalog, Cart: cart, Hub: ws.NewHub()})
	require.NoError(t, err)
	return k.Handler()
}

func TestCartAPI(t *testing.T) {
	h := newHandler(t)

	testkit.Run(t, h, []testkit.Scenario{
		{Name: "catalog size", URL: "/catalog/size", ExpectedCode: 200,
			ExpectedBody: `{"success":true,"count":2}`},
		{Name: "available", URL: "/catalog/available", ExpectedCode: 200,
			ExpectedBody: `{"success":true,"products":[{"id":"a","name":"Apple","price":10,"quantity":5}]}`},
		{Name: "show product", URL: "/catalog/b", ExpectedCode: 200,
			ExpectedBody: `{"success":true,"products":[{"id":"b","name":"Banana","price":5,"quantity":0}]}`},
		{Name: "unknown product", URL: "/catalog/zzz", ExpectedCode: 404,
			ExpectedBody: `{"success":false}`},
		{Name: "empty cart", URL: "/cart", ExpectedCode: 200,
			ExpectedBody: `{"success":true,"products":[],"total_cost":0}`},
		{Name: "checkout empty", Method: "POST", URL: "/cart/checkout", ExpectedCode: 422,
			ExpectedBody: `{"success":false}`},
		{Name: "reserve out of stock", Method: "POST", URL: "/cart/item/b", ExpectedCode: 404,
			ExpectedBody: `{"success":false}`},
		{Name: "reserve", Method: "POST", URL: "/cart/item/a", ExpectedCode: 200,
			ExpectedBody: `{"success":true}`},
		{Name: "reserve again", Method: "POST", URL: "/cart/item/a", ExpectedCode: 409,
			ExpectedBody: `{"success":false}`},
		{Name: "cart item", URL: "/cart/item/a", ExpectedCode: 200,
			ExpectedBody: `{"success":true,"products":[{"id":"a","name":"Apple","price":10,"quantity":0}]}`},
		{Name: "cart item not reserved", URL: "/cart/item/b", ExpectedCode: 404,
			ExpectedBody: `{"success":false}`},
		{Name: "cart with trailing slash", URL: "/cart/", ExpectedCode: 200,
			ExpectedBody: `{"success":true,"products":[{"id":"a","name":"Apple","price":10,"quantity":0}],"total_cost":10}`},
		{Name: "checkout", Method: "POST", URL: "/cart/checkout", ExpectedCode: 200,
			ExpectedBody: `{"success":true,"products":[{"id":"a","name":"Apple","price":10,"quantity":0}],"total_cost":10}`},
		{Name: "cart after checkout", URL: "/cart", ExpectedCode: 200,
			ExpectedBody: `{"success":true,"products":[],"total_cost":0}`},
		{Name: "available after checkout", URL: "/catalog/available", ExpectedCode: 200,
			ExpectedBody: `{"success":true,"products":[]}`},
		{Name: "release unreserved", Method: "DELETE", URL: "/cart/item/a", ExpectedCode: 404,
			ExpectedBody: `{"success":false}`},
		{Name: "health", URL: "/healthz", ExpectedCode: 200,
			ExpectedBody: `{"success":true}`},
		{Name: "unknown route", URL: "/nope", ExpectedCode: 404,
			ExpectedBody: `{"success":false}`},
		{Name: "wrong method", Method: "PUT", URL: "/cart/checkout", ExpectedCode: 405,
			ExpectedBody: `{"success":false}`},
	})
}

func TestReserveRelease(t *testing.T) {
	h := newHandler(t)

	testkit.Run(t, h, []testkit.Scenario{
		{Name: "reserve", Method: "POST", URL: "/cart/item/a", ExpectedCode: 200},
		{Name: "release", Method: "DELETE", URL: "/cart/item/a", ExpectedCode: 200,
			ExpectedBody: `{"success":true}`},
		{Name: "restocked with one unit", URL: "/catalog/a", ExpectedCode: 200,
			ExpectedBody: `{"success":true,"products":[{"id":"a","name":"Apple","price":10,"quantity":1}]}`},
	})
}

func TestGraphQLEndpoint(t *testing.T) {
	h := newHandler(t)

	rec := testkit.Do(h, "POST", "/graphql", `{"query":"mutation { reserve(id: \"a\") }"}`, nil)
	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"data":{"reserve":true}}`, rec.Body.String())

	rec = testkit.Do(h, "POST", "/graphql", `{"query":"{ cart { totalCost } }"}`, nil)
	assert.JSONEq(t, `{"data":{"cart":{"totalCost":10}}}`, rec.Body.String())

	rec = testkit.Do(h, "POST", "/graphql", `not json`, nil)
	assert.Equal(t, 400, rec.Code)
}

func TestMetricsAndRequestID(t *testing.T) {
	h := newHandler(t)

	rec := testkit.Do(h, "GET", "/cart", "", map[string]string{"X-Request-ID": "trace-1"})
	assert.Equal(t, "trace-1", rec.Header().Get("X-Request-ID"))

	rec = testkit.Do(h, "GET", "/metrics", "", nil)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `rocketcart_http_requests_total{method="GET",route="/cart",status="200"}`))
}

func TestRoutesListed(t *testing.T) {
	k, err := NewHTTPKernel(Deps{Hub: ws.NewHub()})
	require.NoError(t, err)

	names := map[string]string{}
	for _, r := range k.Routes() {
		names[r.Name] = r.Method + " " + r.Path
	}
	assert.Equal(t, "POST /cart/item/{id}", names["cart.reserve"])
	assert.Equal(t, "DELETE /cart/item/{id}", names["cart.release"])
	assert.Equal(t, "GET /ws/cart", names["ws.cart"])
	assert.Equal(t, "POST /graphql", names["graphql"])
	assert.Len(t, names, 12)
}
