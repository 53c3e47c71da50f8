package mongostore

import (
	"context"
	"fmt"
	"log"
	"time"

	"collect-and-cruise/internal/store"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// opTimeout bounds every single store call.
const opTimeout = 5 * time.Second

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	log.Println("Successfully connected to MongoDB")
	return client, nil
}

// New wires the collections of db into a store.Store.
func New(db *mongo.Database) store.Store {
	return store.Store{
		Users:    NewUsers(db),
		Products: NewProducts(db),
		Orders:   NewOrders(db),
	}
}

// EnsureIndexes creates the indexes the queries rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bsonKeys("email", 1),
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	if _, err := db.Collection(productsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bsonKeys("name", 1)},
		{Keys: bsonKeys("category", 1)},
	}); err != nil {
		return fmt.Errorf("products indexes: %w", err)
	}

	if _, err := db.Collection(ordersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bsonKeys("user", 1, "createdAt", -1)},
		{Keys: bsonKeys("user", 1, "orderItems.product", 1)},
	}); err != nil {
		return fmt.Errorf("orders indexes: %w", err)
	}
	return nil
}
