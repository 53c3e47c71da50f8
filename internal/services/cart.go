package services

import (
	"context"
	"errors"
	"log"

	"collect-and-cruise/internal/apperr"
	"collect-and-cruise/internal/cart"
	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartService struct {
	users    store.Users
	products store.Products
}

func NewCartService(users store.Users, products store.Products) *CartService {
	return &CartService{users: users, products: products}
}

// Get returns the caller's cart with product details joined in.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) ([]models.CartLine, error) {
	u, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, u.ID, u.Cart)
}

// Add sets the quantity for a product, replacing any previous quantity.
func (s *CartService) Add(ctx context.Context, userID primitive.ObjectID, productHex string, qty int) ([]models.CartLine, error) {
	if qty <= 0 {
		return nil, apperr.BadRequest("Quantity must be a positive integer")
	}
	productID, err := ParseID(productHex)
	if err != nil {
		return nil, err
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, storeFailure("find product", err)
	}

	u, err := retryVersioned(ctx, s.users, userID, func(u *models.User) error {
		u.Cart = cart.Upsert(u.Cart, productID, qty)
		return s.users.SaveCart(ctx, u.ID, u.Version, u.Cart)
	})
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, u.ID, u.Cart)
}

// Remove deletes the line for a product; an absent product changes nothing.
func (s *CartService) Remove(ctx context.Context, userID primitive.ObjectID, productHex string) ([]models.CartLine, error) {
	productID, err := ParseID(productHex)
	if err != nil {
		return nil, err
	}

	u, err := retryVersioned(ctx, s.users, userID, func(u *models.User) error {
		if cart.Index(u.Cart, productID) < 0 {
			return nil
		}
		u.Cart = cart.Remove(u.Cart, productID)
		return s.users.SaveCart(ctx, u.ID, u.Version, u.Cart)
	})
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, u.ID, u.Cart)
}

// Merge folds a guest cart into the account cart. Local quantities
// overwrite server ones and lines for products that no longer exist are
// dropped without error.
func (s *CartService) Merge(ctx context.Context, userID primitive.ObjectID, local []models.CartItem) ([]models.CartLine, error) {
	for _, it := range local {
		if it.Qty <= 0 {
			return nil, apperr.BadRequest("Quantity must be a positive integer")
		}
	}

	known, err := s.products.FindByIDs(ctx, productIDs(local))
	if err != nil {
		return nil, storeFailure("find products", err)
	}
	resolvable := make([]models.CartItem, 0, len(local))
	for _, it := range local {
		if _, ok := known[it.Product]; !ok {
			log.Printf("merge cart %s: dropping unknown product %s", userID.Hex(), it.Product.Hex())
			continue
		}
		resolvable = append(resolvable, it)
	}

	u, err := retryVersioned(ctx, s.users, userID, func(u *models.User) error {
		if len(resolvable) == 0 {
			return nil
		}
		u.Cart = cart.Merge(u.Cart, resolvable)
		return s.users.SaveCart(ctx, u.ID, u.Version, u.Cart)
	})
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, u.ID, u.Cart)
}

// populate joins product summaries into the cart. Lines whose product has
// been deleted are left out and pruned from the stored cart.
func (s *CartService) populate(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) ([]models.CartLine, error) {
	products, err := s.products.FindByIDs(ctx, productIDs(items))
	if err != nil {
		return nil, storeFailure("populate cart", err)
	}
	live, stale := splitCart(items, products)
	if len(stale) > 0 {
		if err := pruneCart(ctx, s.users, userID, stale); err != nil {
			log.Printf("prune cart %s: %v", userID.Hex(), err)
		}
	}
	lines := make([]models.CartLine, 0, len(live))
	for _, it := range live {
		p := products[it.Product]
		lines = append(lines, models.CartLine{Product: p.Summary(), Qty: it.Qty})
	}
	return lines, nil
}
