package services

import (
	"context"
	"errors"

	"collect-and-cruise/internal/apperr"
	"collect-and-cruise/internal/cart"
	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistService struct {
	users    store.Users
	products store.Products
}

func NewWishlistService(users store.Users, products store.Products) *WishlistService {
	return &WishlistService{users: users, products: products}
}

func (s *WishlistService) Get(ctx context.Context, userID primitive.ObjectID) ([]models.Product, error) {
	u, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, u.Wishlist)
}

// Add puts a product on the wishlist; adding twice is harmless.
func (s *WishlistService) Add(ctx context.Context, userID primitive.ObjectID, productHex string) ([]models.Product, error) {
	productID, err := s.existingProduct(ctx, productHex)
	if err != nil {
		return nil, err
	}
	u, err := retryVersioned(ctx, s.users, userID, func(u *models.User) error {
		if cart.Has(u.Wishlist, productID) {
			return nil
		}
		u.Wishlist = cart.AddWish(u.Wishlist, productID)
		return s.users.SaveWishlist(ctx, u.ID, u.Version, u.Wishlist)
	})
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, u.Wishlist)
}

func (s *WishlistService) Remove(ctx context.Context, userID primitive.ObjectID, productHex string) ([]models.Product, error) {
	productID, err := ParseID(productHex)
	if err != nil {
		return nil, err
	}
	u, err := retryVersioned(ctx, s.users, userID, func(u *models.User) error {
		if !cart.Has(u.Wishlist, productID) {
			return nil
		}
		u.Wishlist = cart.RemoveWish(u.Wishlist, productID)
		return s.users.SaveWishlist(ctx, u.ID, u.Version, u.Wishlist)
	})
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, u.Wishlist)
}

// Toggle removes the product when present and adds it otherwise. The
// membership decision is made on the version that gets written, so two
// concurrent toggles never both add.
func (s *WishlistService) Toggle(ctx context.Context, userID primitive.ObjectID, productHex string) ([]models.Product, bool, error) {
	productID, err := ParseID(productHex)
	if err != nil {
		return nil, false, err
	}
	var added bool
	u, err := retryVersioned(ctx, s.users, userID, func(u *models.User) error {
		if !cart.Has(u.Wishlist, productID) {
			if _, err := s.existingProduct(ctx, productHex); err != nil {
				return err
			}
		}
		u.Wishlist, added = cart.ToggleWish(u.Wishlist, productID)
		return s.users.SaveWishlist(ctx, u.ID, u.Version, u.Wishlist)
	})
	if err != nil {
		return nil, false, err
	}
	list, err := s.populate(ctx, u.Wishlist)
	return list, added, err
}

func (s *WishlistService) existingProduct(ctx context.Context, productHex string) (primitive.ObjectID, error) {
	productID, err := ParseID(productHex)
	if err != nil {
		return productID, err
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return productID, apperr.NotFound("Product not found")
		}
		return productID, storeFailure("find product", err)
	}
	return productID, nil
}

func (s *WishlistService) populate(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeFailure("populate wishlist", err)
	}
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}
