package routes

import (
	"github.com/shashiranjanraj/rocketcart/app/controllers"
	"github.com/shashiranjanraj/rocketcart/pkg/router"
)

// Controllers are the handlers RegisterAPI mounts.
type Controllers struct {
	Catalog *controllers.CatalogController
	Cart    *controllers.CartController
	Health  *controllers.HealthController
}

// RegisterAPI mounts the REST endpoints. /catalog/size and /catalog/available
// are registered before /catalog/{id}; chi prefers static segments anyway.
func RegisterAPI(r *router.Router, c Controllers) {
	r.Get("/healthz", "health", c.Health.Show)

	catalog := r.Group("/catalog")
	catalog.Get("/size", "catalog.size", c.Catalog.Size)
	catalog.Get("/available", "catalog.available", c.Catalog.Available)
	catalog.Get("/{id}", "catalog.show", c.Catalog.Show)

	cart := r.Group("/cart")
	cart.Get("/", "cart.show", c.Cart.Show)
	cart.Get("/item/{id}", "cart.item", c.Cart.Item)
	cart.Post("/item/{id}", "cart.reserve", c.Cart.Reserve)
	cart.Delete("/item/{id}", "cart.release", c.Cart.Release)
	cart.Post("/checkout", "cart.checkout", c.Cart.Checkout)
}
