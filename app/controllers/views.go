package controllers

import (
	"github.com/shashiranjanraj/rocketcart/app/models"
	"github.com/shopspring/decimal"
)

// Product is the wire form of models.Product. Prices are whole units with
// the fraction dropped.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type countBody struct {
	Success bool  `json:"success"`
	Count   int64 `json:"count"`
}

type productsBody struct {
	Success  bool      `json:"success"`
	Products []Product `json:"products"`
}

type cartBody struct {
	Success   bool      `json:"success"`
	Products  []Product `json:"products"`
	TotalCost int64     `json:"total_cost"`
}

// Units truncates d toward zero.
func Units(d decimal.Decimal) int64 {
	return d.IntPart()
}

func productView(p models.Product) Product {
	return Product{ID: p.ID, Name: p.Name, Price: Units(p.Price), Quantity: p.Quantity}
}

func productViews(products []models.Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = productView(p)
	}
	return out
}
