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

const usersCollection = "users"

type Users struct {
	collection *mongo.Collection
}

func NewUsers(db *mongo.Database) *Users {
	return &Users{collection: db.Collection(usersCollection)}
}

func (s *Users) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

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

	if _, err := s.collection.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Users) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var user models.User
	if err := s.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"password": 0}).SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Users) Update(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"email":     u.Email,
		"password":  u.Password,
		"isAdmin":   u.IsAdmin,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Users) UpsertByEmail(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"password":  u.Password,
			"isAdmin":   u.IsAdmin,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"cart":      []models.CartItem{},
			"wishlist":  []primitive.ObjectID{},
			"version":   int64(0),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var saved models.User
	if err := s.collection.FindOneAndUpdate(ctx, bson.M{"email": u.Email}, update, opts).Decode(&saved); err != nil {
		return err
	}
	*u = saved
	return nil
}

func (s *Users) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Users) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := s.collection.DeleteMany(ctx, bson.M{})
	return err
}

func (s *Users) SaveCart(ctx context.Context, id primitive.ObjectID, version int64, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	return s.saveVersioned(ctx, id, version, "cart", items)
}

func (s *Users) SaveWishlist(ctx context.Context, id primitive.ObjectID, version int64, wishlist []primitive.ObjectID) error {
	if wishlist == nil {
		wishlist = []primitive.ObjectID{}
	}
	return s.saveVersioned(ctx, id, version, "wishlist", wishlist)
}

func (s *Users) saveVersioned(ctx context.Context, id primitive.ObjectID, version int64, field string, value interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "version": version}
	update := bson.M{
		"$set": bson.M{field: value, "updatedAt": time.Now()},
		"$inc": bson.M{"version": 1},
	}
	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrConflict
	}
	return nil
}

func bsonKeys(pairs ...interface{}) bson.D {
	keys := bson.D{}
	for i := 0; i+1 < len(pairs); i += 2 {
		keys = append(keys, bson.E{Key: pairs[i].(string), Value: pairs[i+1]})
	}
	return keys
}
