// Package store declares the persistence ports used by the services.
package store

import (
	"context"
	"errors"

	"collect-and-cruise/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrConflict means the document changed since it was read.
	ErrConflict = errors.New("version conflict")
)

type Users interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Update writes email, password and isAdmin.
	Update(ctx context.Context, u *models.User) error
	// UpsertByEmail creates or overwrites the credentials of the account.
	UpsertByEmail(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteAll(ctx context.Context) error
	// SaveCart and SaveWishlist succeed only when the stored version equals
	// version; the stored version is then incremented.
	SaveCart(ctx context.Context, id primitive.ObjectID, version int64, cart []models.CartItem) error
	SaveWishlist(ctx context.Context, id primitive.ObjectID, version int64, wishlist []primitive.ObjectID) error
}

type Products interface {
	Create(ctx context.Context, p *models.Product) error
	InsertMany(ctx context.Context, ps []models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// FindByIDs returns the products that exist, keyed by id.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	// List filters by a case-insensitive substring of the name when keyword
	// is not empty.
	List(ctx context.Context, keyword string) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteAll(ctx context.Context) error
}

type Orders interface {
	Create(ctx context.Context, o *models.Order) error
	ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.Order, error)
	FindForUser(ctx context.Context, id, user primitive.ObjectID) (*models.Order, error)
	HasPurchased(ctx context.Context, user, product primitive.ObjectID) (bool, error)
}

// Store bundles the collections an application instance needs.
type Store struct {
	Users    Users
	Products Products
	Orders   Orders
}
