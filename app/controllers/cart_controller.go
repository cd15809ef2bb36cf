package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/rocketcart/app/services"
	"github.com/shashiranjanraj/rocketcart/pkg/response"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

// Show answers GET /cart. An empty cart is a success.
func (c *CartController) Show(w http.ResponseWriter, r *http.Request) {
	contents, err := c.cart.Contents(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, cartView(contents))
}

// Item answers GET /cart/item/{id}.
func (c *CartController) Item(w http.ResponseWriter, r *http.Request) {
	p, err := c.cart.Item(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, productsBody{Success: true, Products: []Product{productView(p)}})
}

// Reserve answers POST /cart/item/{id}.
func (c *CartController) Reserve(w http.ResponseWriter, r *http.Request) {
	if err := c.cart.Reserve(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w)
}

// Release answers DELETE /cart/item/{id}.
func (c *CartController) Release(w http.ResponseWriter, r *http.Request) {
	if err := c.cart.Release(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.OK(w)
}

// Checkout answers POST /cart/checkout.
func (c *CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	contents, err := c.cart.Checkout(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, cartView(contents))
}

func cartView(c services.Contents) cartBody {
	return cartBody{
		Success:   true,
		Products:  productViews(c.Products),
		TotalCost: Units(c.TotalCost),
	}
}
