package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one line of a cart or an order snapshot.
type CartItem struct {
	Product primitive.ObjectID `bson:"product" json:"product"`
	Qty     int                `bson:"qty" json:"qty"`
}

// User is the account document. Cart and wishlist are embedded and owned
// exclusively by the user; Version guards read-modify-write of both.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"`
	IsAdmin   bool                 `bson:"isAdmin" json:"isAdmin"`
	Cart      []CartItem           `bson:"cart" json:"cart"`
	Wishlist  []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	Version   int64                `bson:"version" json:"-"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeEmail lowercases and trims an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName is the name shown on reviews.
func (u *User) DisplayName() string {
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}
