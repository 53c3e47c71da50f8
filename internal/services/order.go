package services

import (
	"context"
	"errors"
	"log"
	"time"

	"collect-and-cruise/internal/apperr"
	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/store"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderService struct {
	users    store.Users
	products store.Products
	orders   store.Orders
	now      func() time.Time
}

func NewOrderService(users store.Users, products store.Products, orders store.Orders) *OrderService {
	return &OrderService{users: users, products: products, orders: orders, now: time.Now}
}

// Checkout turns the caller's cart into a paid order and empties the cart.
// Lines for deleted products are pruned first. Payment is mocked and stock
// is left untouched.
func (s *OrderService) Checkout(ctx context.Context, userID primitive.ObjectID) (*models.Order, error) {
	u, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	products, err := s.products.FindByIDs(ctx, productIDs(u.Cart))
	if err != nil {
		return nil, storeFailure("find products", err)
	}
	items, stale := splitCart(u.Cart, products)
	if len(stale) > 0 {
		if err := pruneCart(ctx, s.users, userID, stale); err != nil {
			log.Printf("prune cart %s: %v", userID.Hex(), err)
		}
	}
	if len(items) == 0 {
		return nil, apperr.BadRequest("Your cart is empty")
	}
	prices := make(map[primitive.ObjectID]float64, len(products))
	for id, p := range products {
		prices[id] = p.Price
	}

	paidAt := s.now()
	order := &models.Order{
		User:       u.ID,
		OrderItems: items,
		TotalPrice: Total(items, prices),
		IsPaid:     true,
		PaidAt:     &paidAt,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, storeFailure("create order", err)
	}

	// The order is already placed; a failed clear is logged, not returned.
	if err := pruneCart(ctx, s.users, userID, productIDs(items)); err != nil {
		log.Printf("clear cart %s after order %s: %v", userID.Hex(), order.ID.Hex(), err)
	}
	return order, nil
}

// Total sums qty x unit price in decimal and rounds to cents.
func Total(items []models.CartItem, prices map[primitive.ObjectID]float64) float64 {
	sum := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(prices[it.Product]).Mul(decimal.NewFromInt(int64(it.Qty)))
		sum = sum.Add(line)
	}
	return sum.Round(2).InexactFloat64()
}

func (s *OrderService) List(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeFailure("list orders", err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, userID primitive.ObjectID, orderHex string) (*models.Order, error) {
	orderID, err := ParseID(orderHex)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, storeFailure("find order", err)
	}
	return order, nil
}

// HasPurchased reports whether a paid order of the user contains the product.
func (s *OrderService) HasPurchased(ctx context.Context, userID primitive.ObjectID, productHex string) (bool, error) {
	productID, err := ParseID(productHex)
	if err != nil {
		return false, err
	}
	ok, err := s.orders.HasPurchased(ctx, userID, productID)
	if err != nil {
		return false, storeFailure("has purchased", err)
	}
	return ok, nil
}
