package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/cart/item/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	before := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/cart/item/{id}", "418"))
	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cart/item/"+id, nil))
	}

	after := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/cart/item/{id}", "418"))
	assert.Equal(t, before+2, after)
	assert.Zero(t, testutil.ToFloat64(RequestInFlight))
}

func TestHandlerExposesCartCollectors(t *testing.T) {
	CartReservations.WithLabelValues("ok").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `rocketcart_cart_reservations_total{result="ok"}`), body)
	assert.Contains(t, body, "rocketcart_http_requests_in_flight")
}
