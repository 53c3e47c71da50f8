package mongostore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const productsCollection = "products"

type Products struct {
	collection *mongo.Collection
}

func NewProducts(db *mongo.Database) *Products {
	return &Products{collection: db.Collection(productsCollection)}
}

func prepareInsert(p *models.Product, now time.Time) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Reviews == nil {
		p.Reviews = []models.Review{}
	}
	p.CreatedAt, p.UpdatedAt = now, now
}

func (s *Products) Create(ctx context.Context, p *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	prepareInsert(p, time.Now())
	_, err := s.collection.InsertOne(ctx, p)
	return err
}

func (s *Products) InsertMany(ctx context.Context, ps []models.Product) error {
	if len(ps) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now()
	docs := make([]interface{}, len(ps))
	for i := range ps {
		prepareInsert(&ps[i], now)
		docs[i] = ps[i]
	}
	_, err := s.collection.InsertMany(ctx, docs)
	return err
}

func (s *Products) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var product models.Product
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Products) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	found := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

func (s *Products) List(ctx context.Context, keyword string) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{}
	if keyword != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	}
	cur, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Products) Update(ctx context.Context, p *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	p.UpdatedAt = time.Now()
	if p.Reviews == nil {
		p.Reviews = []models.Review{}
	}
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Products) Delete(ctx context.Context, id primitive.ObjectID) error {
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

func (s *Products) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := s.collection.DeleteMany(ctx, bson.M{})
	return err
}
