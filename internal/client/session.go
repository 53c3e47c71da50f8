package client

import (
	"context"
	"errors"
	"sync"

	"collect-and-cruise/internal/cart"
	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrLoginRequired is returned for account-only actions in guest mode.
var ErrLoginRequired = errors.New("login required")

// Session holds the shopper's state. Without a login the cart lives in the
// CartStore; after login the server owns it.
type Session struct {
	api   *Client
	local CartStore

	mu       sync.Mutex
	user     *services.UserInfo
	cart     []models.CartLine
	wishlist []models.Product
}

func NewSession(api *Client, local CartStore) *Session {
	return &Session{api: api, local: local}
}

func (s *Session) User() *services.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) LoggedIn() bool { return s.User() != nil }

// Login authenticates, merges the guest cart into the account and clears
// the local store.
func (s *Session) Login(ctx context.Context, email, password string) error {
	info, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.adopt(ctx, info)
}

// Register creates the account and then behaves like Login.
func (s *Session) Register(ctx context.Context, email, password string) error {
	info, err := s.api.Register(ctx, email, password)
	if err != nil {
		return err
	}
	return s.adopt(ctx, info)
}

// adopt installs the token and loads the account state. On failure the
// token is withdrawn so the session stays a guest session.
func (s *Session) adopt(ctx context.Context, info *services.UserInfo) error {
	s.api.SetToken(info.Token)
	if err := s.load(ctx, info); err != nil {
		s.api.SetToken("")
		return err
	}
	return nil
}

func (s *Session) load(ctx context.Context, info *services.UserInfo) error {
	guest, err := s.local.Load()
	if err != nil {
		return err
	}
	var lines []models.CartLine
	if len(guest) > 0 {
		lines, err = s.api.MergeCart(ctx, guest)
	} else {
		lines, err = s.api.Cart(ctx)
	}
	if err != nil {
		return err
	}
	// Cleared only after a successful merge.
	if err := s.local.Clear(); err != nil {
		return err
	}
	wishlist, err := s.api.Wishlist(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.user = info
	s.cart = lines
	s.wishlist = wishlist
	s.mu.Unlock()
	return nil
}

// Logout forgets the token and the cached account state. The local guest
// cart starts out empty.
func (s *Session) Logout() {
	s.api.SetToken("")
	s.mu.Lock()
	s.user = nil
	s.cart = nil
	s.wishlist = nil
	s.mu.Unlock()
}

// GuestCart returns the locally stored cart.
func (s *Session) GuestCart() ([]models.CartItem, error) {
	return s.local.Load()
}

// Cart returns the account cart, or nil in guest mode.
func (s *Session) Cart() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartLine(nil), s.cart...)
}

// AddToCart sets the quantity of a product. Guests write the local store
// with the same overwrite semantics as the server.
func (s *Session) AddToCart(ctx context.Context, productID string, qty int) error {
	if !s.LoggedIn() {
		if qty <= 0 {
			return &APIError{Status: 400, Message: "Quantity must be a positive integer"}
		}
		id, err := primitive.ObjectIDFromHex(productID)
		if err != nil {
			return &APIError{Status: 404, Message: "Resource not found"}
		}
		items, err := s.local.Load()
		if err != nil {
			return err
		}
		return s.local.Save(cart.Upsert(items, id, qty))
	}
	lines, err := s.api.AddToCart(ctx, productID, qty)
	if err != nil {
		return err
	}
	s.setCart(lines)
	return nil
}

func (s *Session) RemoveFromCart(ctx context.Context, productID string) error {
	if !s.LoggedIn() {
		id, err := primitive.ObjectIDFromHex(productID)
		if err != nil {
			return nil
		}
		items, err := s.local.Load()
		if err != nil {
			return err
		}
		return s.local.Save(cart.Remove(items, id))
	}
	lines, err := s.api.RemoveFromCart(ctx, productID)
	if err != nil {
		return err
	}
	s.setCart(lines)
	return nil
}

func (s *Session) setCart(lines []models.CartLine) {
	s.mu.Lock()
	s.cart = lines
	s.mu.Unlock()
}

func (s *Session) Wishlist() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Product(nil), s.wishlist...)
}

// InWishlist reports whether the product is on the cached wishlist.
func (s *Session) InWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.wishlist {
		if p.ID.Hex() == productID {
			return true
		}
	}
	return false
}

// ToggleWishlist adds or removes the product. Guests get ErrLoginRequired.
func (s *Session) ToggleWishlist(ctx context.Context, productID string) (bool, error) {
	if !s.LoggedIn() {
		return false, ErrLoginRequired
	}
	list, added, err := s.api.ToggleWishlist(ctx, productID)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	s.wishlist = list
	s.mu.Unlock()
	return added, nil
}

// Checkout places the order and refreshes the cached cart.
func (s *Session) Checkout(ctx context.Context) (*models.Order, error) {
	if !s.LoggedIn() {
		return nil, ErrLoginRequired
	}
	order, err := s.api.Checkout(ctx)
	if err != nil {
		return nil, err
	}
	lines, err := s.api.Cart(ctx)
	if err != nil {
		return order, err
	}
	s.setCart(lines)
	return order, nil
}
