package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the product does not exist or is not available.
	ErrNotFound = errors.New("not found")
	// ErrNotInCart is the not-found flavour for products that exist but are
	// not reserved. errors.Is(ErrNotInCart, ErrNotFound) holds.
	ErrNotInCart = fmt.Errorf("%w in cart", ErrNotFound)
	// ErrConflict: the product is already reserved.
	ErrConflict = errors.New("already in cart")
	// ErrEmptyCart: checkout with nothing reserved.
	ErrEmptyCart = errors.New("nothing to checkout")
	// ErrInvariant: zero or several carts, or the cart changed under a
	// running service. Fatal to the request, not to the process.
	ErrInvariant = errors.New("cart invariant violated")
	// ErrInvalidRecord: a catalog import row failed validation.
	ErrInvalidRecord = errors.New("invalid product record")
)

// resultLabel names err for metric labels.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrEmptyCart):
		return "empty"
	case errors.Is(err, ErrInvariant):
		return "invariant"
	default:
		return "error"
	}
}
