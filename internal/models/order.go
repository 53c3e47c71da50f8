package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order is an immutable snapshot of a cart taken at checkout.
type Order struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User       primitive.ObjectID `bson:"user" json:"user"`
	OrderItems []CartItem         `bson:"orderItems" json:"orderItems"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	IsPaid     bool               `bson:"isPaid" json:"isPaid"`
	PaidAt     *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Contains reports whether product is one of the order's lines.
func (o *Order) Contains(product primitive.ObjectID) bool {
	for _, it := range o.OrderItems {
		if it.Product == product {
			return true
		}
	}
	return false
}
