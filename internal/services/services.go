// Package services implements the storefront operations on top of the
// store ports. Errors returned to handlers are *apperr.Error values.
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

// maxAttempts bounds the optimistic retries of a cart or wishlist write.
const maxAttempts = 3

// ParseID turns a hex id into an ObjectID. Malformed ids are reported as
// missing resources.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("Resource not found")
	}
	return id, nil
}

func storeFailure(op string, err error) error {
	log.Printf("%s: %v", op, err)
	return apperr.Internal("Internal server error", err)
}

func loadUser(ctx context.Context, users store.Users, id primitive.ObjectID) (*models.User, error) {
	u, err := users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, storeFailure("find user", err)
	}
	return u, nil
}

// retryVersioned re-reads the user and reapplies write until the version
// check passes or the attempts run out.
func retryVersioned(ctx context.Context, users store.Users, id primitive.ObjectID, write func(u *models.User) error) (*models.User, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		u, err := loadUser(ctx, users, id)
		if err != nil {
			return nil, err
		}
		err = write(u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return nil, err
			}
			return nil, storeFailure("save user", err)
		}
		log.Printf("version conflict on user %s, attempt %d", id.Hex(), attempt+1)
	}
	return nil, apperr.Conflict("Concurrent update, please retry")
}

// pruneCart drops the cart lines whose product is in stale.
func pruneCart(ctx context.Context, users store.Users, userID primitive.ObjectID, stale []primitive.ObjectID) error {
	_, err := retryVersioned(ctx, users, userID, func(u *models.User) error {
		pruned := u.Cart
		for _, id := range stale {
			pruned = cart.Remove(pruned, id)
		}
		if len(pruned) == len(u.Cart) {
			return nil
		}
		u.Cart = pruned
		return users.SaveCart(ctx, u.ID, u.Version, pruned)
	})
	return err
}

// splitCart separates lines whose product exists from those whose product
// has been deleted.
func splitCart(items []models.CartItem, known map[primitive.ObjectID]models.Product) (live []models.CartItem, stale []primitive.ObjectID) {
	live = make([]models.CartItem, 0, len(items))
	for _, it := range items {
		if _, ok := known[it.Product]; ok {
			live = append(live, it)
		} else {
			stale = append(stale, it.Product)
		}
	}
	return live, stale
}

func productIDs(items []models.CartItem) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(items))
	for i, it := range items {
		ids[i] = it.Product
	}
	return ids
}
