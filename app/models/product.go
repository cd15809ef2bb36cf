package models

import "github.com/shopspring/decimal"

// Product is a catalog entry. CartID links it to the single cart while the
// product is reserved.
type Product struct {
	ID       string          `gorm:"primaryKey;size:64"            json:"id"`
	Name     string          `gorm:"size:256;not null"             json:"name"`
	Price    decimal.Decimal `gorm:"type:decimal(15,2);not null"   json:"price"`
	Quantity int             `gorm:"not null"                      json:"quantity"`
	CartID   *string         `gorm:"size:36;index"                 json:"-"`
	Cart     *Cart           `gorm:"constraint:OnDelete:SET NULL"  json:"-"`
}

// Reserved reports whether the product currently sits in the cart.
func (p Product) Reserved() bool {
	return p.CartID != nil
}

// Total sums the prices of products. One reserved product counts once,
// whatever its quantity.
func Total(products []Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	return total
}
