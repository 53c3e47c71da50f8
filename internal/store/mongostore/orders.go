package mongostore

import (
	"context"
	"errors"
	"time"

	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ordersCollection = "orders"

type Orders struct {
	collection *mongo.Collection
}

func NewOrders(db *mongo.Database) *Orders {
	return &Orders{collection: db.Collection(ordersCollection)}
}

func (s *Orders) Create(ctx context.Context, o *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	_, err := s.collection.InsertOne(ctx, o)
	return err
}

func (s *Orders) ListByUser(ctx context.Context, user primitive.ObjectID) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.collection.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Orders) FindForUser(ctx context.Context, id, user primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order models.Order
	if err := s.collection.FindOne(ctx, bson.M{"_id": id, "user": user}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *Orders) HasPurchased(ctx context.Context, user, product primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := s.collection.CountDocuments(ctx, bson.M{
		"user":               user,
		"isPaid":             true,
		"orderItems.product": product,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
