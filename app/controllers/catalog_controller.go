package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/rocketcart/app/services"
	"github.com/shashiranjanraj/rocketcart/pkg/response"
)

type CatalogController struct {
	catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// Size answers GET /catalog/size.
func (c *CatalogController) Size(w http.ResponseWriter, r *http.Request) {
	n, err := c.catalog.Count(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, countBody{Success: true, Count: n})
}

// Available answers GET /catalog/available.
func (c *CatalogController) Available(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalog.Available(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, productsBody{Success: true, Products: productViews(products)})
}

// Show answers GET /catalog/{id}.
func (c *CatalogController) Show(w http.ResponseWriter, r *http.Request) {
	p, err := c.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, productsBody{Success: true, Products: []Product{productView(p)}})
}
