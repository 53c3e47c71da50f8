package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryMainline  Category = "Mainline"
	CategoryPremium   Category = "Premium"
	CategoryExclusive Category = "Exclusive"
	CategoryOther     Category = "Other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMainline, CategoryPremium, CategoryExclusive, CategoryOther:
		return true
	}
	return false
}

type Review struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Category      Category           `bson:"category" json:"category"`
	Price         float64            `bson:"price" json:"price"`
	StockQuantity int                `bson:"stockQuantity" json:"stockQuantity"`
	ImageURL      string             `bson:"imageUrl" json:"imageUrl"`
	Reviews       []Review           `bson:"reviews" json:"reviews"`
	Rating        float64            `bson:"rating" json:"rating"`
	NumReviews    int                `bson:"numReviews" json:"numReviews"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Summary is the subset of product fields joined into cart lines.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		ImageURL:      p.ImageURL,
		StockQuantity: p.StockQuantity,
	}
}

type ProductSummary struct {
	ID            primitive.ObjectID `json:"_id"`
	Name          string             `json:"name"`
	Price         float64            `json:"price"`
	ImageURL      string             `json:"imageUrl"`
	StockQuantity int                `json:"stockQuantity"`
}

// CartLine is a cart entry with its product populated.
type CartLine struct {
	Product ProductSummary `json:"product"`
	Qty     int            `json:"qty"`
}

// ReviewedBy reports whether user already left a review.
func (p *Product) ReviewedBy(user primitive.ObjectID) bool {
	for _, r := range p.Reviews {
		if r.User == user {
			return true
		}
	}
	return false
}

// Recalculate refreshes the aggregate rating from the embedded reviews.
func (p *Product) Recalculate() {
	p.NumReviews = len(p.Reviews)
	if p.NumReviews == 0 {
		p.Rating = 0
		return
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Rating = float64(sum) / float64(p.NumReviews)
}
