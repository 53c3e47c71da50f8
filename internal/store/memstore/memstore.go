// Package memstore keeps documents in process memory. It backs
// STORE_DRIVER=memory and the tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func New() store.Store {
	return store.Store{
		Users:    NewUsers(),
		Products: NewProducts(),
		Orders:   NewOrders(),
	}
}

// ----- Users -----

type Users struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewUsers() *Users {
	return &Users{users: make(map[primitive.ObjectID]*models.User)}
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Cart = append([]models.CartItem{}, u.Cart...)
	c.Wishlist = append([]primitive.ObjectID{}, u.Wishlist...)
	return &c
}

func (s *Users) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Cart == nil {
		u.Cart = []models.CartItem{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []primitive.ObjectID{}
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID.Hex() < users[j].ID.Hex() })
	return users, nil
}

func (s *Users) Update(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	for id, other := range s.users {
		if id != u.ID && other.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	existing.Email = u.Email
	existing.Password = u.Password
	existing.IsAdmin = u.IsAdmin
	existing.UpdatedAt = time.Now()
	return nil
}

func (s *Users) UpsertByEmail(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			existing.Password = u.Password
			existing.IsAdmin = u.IsAdmin
			existing.UpdatedAt = time.Now()
			u.ID = existing.ID
			s.mu.Unlock()
			return nil
		}
	}
	s.mu.Unlock()
	return s.Create(ctx, u)
}

func (s *Users) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Users) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[primitive.ObjectID]*models.User)
	return nil
}

func (s *Users) SaveCart(ctx context.Context, id primitive.ObjectID, version int64, items []models.CartItem) error {
	return s.save(id, version, func(u *models.User) {
		u.Cart = append([]models.CartItem{}, items...)
	})
}

func (s *Users) SaveWishlist(ctx context.Context, id primitive.ObjectID, version int64, wishlist []primitive.ObjectID) error {
	return s.save(id, version, func(u *models.User) {
		u.Wishlist = append([]primitive.ObjectID{}, wishlist...)
	})
}

func (s *Users) save(id primitive.ObjectID, version int64, apply func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.Version != version {
		return store.ErrConflict
	}
	apply(u)
	u.Version++
	u.UpdatedAt = time.Now()
	return nil
}

// ----- Products -----

type Products struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]*models.Product
}

func NewProducts() *Products {
	return &Products{products: make(map[primitive.ObjectID]*models.Product)}
}

func copyProduct(p *models.Product) *models.Product {
	c := *p
	c.Reviews = append([]models.Review{}, p.Reviews...)
	return &c
}

func (s *Products) Create(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(p)
	return nil
}

func (s *Products) insert(p *models.Product) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = copyProduct(p)
}

func (s *Products) InsertMany(ctx context.Context, ps []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range ps {
		s.insert(&ps[i])
	}
	return nil
}

func (s *Products) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyProduct(p), nil
}

func (s *Products) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[primitive.ObjectID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			found[id] = *copyProduct(p)
		}
	}
	return found, nil
}

func (s *Products) List(ctx context.Context, keyword string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyword = strings.ToLower(keyword)
	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if keyword != "" && !strings.Contains(strings.ToLower(p.Name), keyword) {
			continue
		}
		products = append(products, *copyProduct(p))
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID.Hex() < products[j].ID.Hex() })
	return products, nil
}

func (s *Products) Update(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	s.products[p.ID] = copyProduct(p)
	return nil
}

func (s *Products) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Products) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[primitive.ObjectID]*models.Product)
	return nil
}

// ----- Orders -----

type Orders struct {
	mu     sync.RWMutex
	orders []models.Order
}

func NewOrders() *Orders {
	return &Orders{}
}

func (s *Orders) Create(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	c := *o
	c.OrderItems = append([]models.CartItem{}, o.OrderItems...)
	s.orders = append(s.orders, c)
	return nil
}

func (s *Orders) ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []models.Order{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		if s.orders[i].User == user {
			orders = append(orders, s.orders[i])
		}
	}
	return orders, nil
}

func (s *Orders) FindForUser(ctx context.Context, id, user primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == id && o.User == user {
			c := o
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Orders) HasPurchased(ctx context.Context, user, product primitive.ObjectID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.User == user && o.IsPaid && o.Contains(product) {
			return true, nil
		}
	}
	return false, nil
}
