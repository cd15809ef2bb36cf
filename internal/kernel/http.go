// Package kernel assembles the HTTP handler: global middleware, the REST
// routes, GraphQL, the cart websocket feed and /metrics.
package kernel

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/shashiranjanraj/rocketcart/app/controllers"
	appgraphql "github.com/shashiranjanraj/rocketcart/app/graphql"
	"github.com/shashiranjanraj/rocketcart/app/routes"
	"github.com/shashiranjanraj/rocketcart/app/services"
	"github.com/shashiranjanraj/rocketcart/config"
	"github.com/shashiranjanraj/rocketcart/pkg/database"
	"github.com/shashiranjanraj/rocketcart/pkg/graphql"
	"github.com/shashiranjanraj/rocketcart/pkg/metrics"
	"github.com/shashiranjanraj/rocketcart/pkg/middleware"
	"github.com/shashiranjanraj/rocketcart/pkg/reqid"
	"github.com/shashiranjanraj/rocketcart/pkg/response"
	"github.com/shashiranjanraj/rocketcart/pkg/router"
	"github.com/shashiranjanraj/rocketcart/pkg/ws"
	"gorm.io/gorm"
)

// Deps is everything the handlers need. A zero Deps still builds a router,
// which is enough for listing routes.
type Deps struct {
	DB      *gorm.DB
	Catalog *services.CatalogService
	Cart    *services.CartService
	Hub     *ws.Hub
}

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(d Deps) (*HTTPKernel, error) {
	r := router.New()

	// Outermost first: metrics see total latency, the request id exists
	// before anything logs, Recovery has the request logger.
	r.Use(metrics.Middleware())
	r.Use(chimw.StripSlashes)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins())))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Failure(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Failure(w, http.StatusMethodNotAllowed)
	})

	routes.RegisterAPI(r, routes.Controllers{
		Catalog: controllers.NewCatalogController(d.Catalog),
		Cart:    controllers.NewCartController(d.Cart),
		Health: controllers.NewHealthController(func(ctx context.Context) error {
			return database.Ping(ctx, d.DB)
		}),
	})

	schema, err := appgraphql.NewSchema(d.Catalog, d.Cart)
	if err != nil {
		return nil, err
	}
	r.Post("/graphql", "graphql", graphql.Handler(schema))

	if d.Hub != nil {
		r.Get("/ws/cart", "ws.cart", d.Hub.Handler())
	}
	r.Get("/metrics", "metrics", metrics.Handler())

	return &HTTPKernel{router: r}, nil
}

func (k *HTTPKernel) Handler() http.Handler {
	return k.router.Handler()
}

func (k *HTTPKernel) Routes() []router.Route {
	return k.router.Routes()
}
