package models

import "gorm.io/gorm"

// Available is the availability policy: a product can be reserved while it
// has stock. Cart membership is not part of it.
func (p Product) Available() bool {
	return p.Quantity > 0
}

// Available is the query form of Product.Available.
//
//	db.Scopes(models.Available).Find(&products)
func Available(db *gorm.DB) *gorm.DB {
	return db.Where("quantity > ?", 0)
}

// InCart narrows a product query to the rows reserved in cartID.
func InCart(cartID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("cart_id = ?", cartID)
	}
}
