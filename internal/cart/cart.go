// Package cart holds the pure list operations behind carts and wishlists.
// Every function returns a fresh slice and leaves its input untouched.
package cart

import (
	"collect-and-cruise/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Index returns the position of product in items, or -1.
func Index(items []models.CartItem, product primitive.ObjectID) int {
	for i, it := range items {
		if it.Product == product {
			return i
		}
	}
	return -1
}

// Upsert overwrites the quantity of an existing line or appends a new one.
// Quantities are replaced, never summed.
func Upsert(items []models.CartItem, product primitive.ObjectID, qty int) []models.CartItem {
	out := clone(items)
	if i := Index(out, product); i >= 0 {
		out[i].Qty = qty
		return out
	}
	return append(out, models.CartItem{Product: product, Qty: qty})
}

// Remove drops the line for product. A missing product is a no-op.
func Remove(items []models.CartItem, product primitive.ObjectID) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, it := range items {
		if it.Product != product {
			out = append(out, it)
		}
	}
	return out
}

// Merge folds a guest cart into an account cart. Local quantities win for
// products present on both sides; the result has one line per product.
func Merge(server, local []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(server)+len(local))
	for _, it := range server {
		out = Upsert(out, it.Product, it.Qty)
	}
	for _, it := range local {
		out = Upsert(out, it.Product, it.Qty)
	}
	return out
}

func clone(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items), len(items)+1)
	copy(out, items)
	return out
}

// Has reports whether id is in list.
func Has(list []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// AddWish adds id to the set if it is not already there.
func AddWish(list []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(list), len(list)+1)
	copy(out, list)
	if Has(out, id) {
		return out
	}
	return append(out, id)
}

// RemoveWish drops id from the set.
func RemoveWish(list []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ToggleWish removes id when present and adds it otherwise. The bool is
// true when id ended up in the list.
func ToggleWish(list []primitive.ObjectID, id primitive.ObjectID) ([]primitive.ObjectID, bool) {
	if Has(list, id) {
		return RemoveWish(list, id), false
	}
	return AddWish(list, id), true
}
