package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"collect-and-cruise/internal/apperr"
	"collect-and-cruise/internal/imagehost"
	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductInput carries the admin-editable product fields. Nil fields are
// left unchanged on update and required on create.
type ProductInput struct {
	Name          *string
	Description   *string
	Category      *string
	Price         *float64
	StockQuantity *int
}

// Image is an uploaded file waiting to be stored.
type Image struct {
	Filename string
	Body     io.Reader
}

type CatalogService struct {
	products store.Products
	orders   store.Orders
	images   imagehost.Uploader
	now      func() time.Time
}

func NewCatalogService(products store.Products, orders store.Orders, images imagehost.Uploader) *CatalogService {
	return &CatalogService{products: products, orders: orders, images: images, now: time.Now}
}

// List returns every product, or those whose name contains keyword
// case-insensitively.
func (s *CatalogService) List(ctx context.Context, keyword string) ([]models.Product, error) {
	products, err := s.products.List(ctx, strings.TrimSpace(keyword))
	if err != nil {
		return nil, storeFailure("list products", err)
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, idHex string) (*models.Product, error) {
	id, err := ParseID(idHex)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *CatalogService) find(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, storeFailure("find product", err)
	}
	return p, nil
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput, image *Image) (*models.Product, error) {
	if image == nil {
		return nil, apperr.BadRequest("No image file uploaded")
	}
	if in.Name == nil || in.Description == nil || in.Category == nil || in.Price == nil || in.StockQuantity == nil {
		return nil, apperr.BadRequest("Name, description, category, price and stockQuantity are required")
	}
	p := &models.Product{Reviews: []models.Review{}}
	if err := apply(p, in); err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}
	p.ImageURL = url

	if err := s.products.Create(ctx, p); err != nil {
		return nil, storeFailure("create product", err)
	}
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, idHex string, in ProductInput, image *Image) (*models.Product, error) {
	id, err := ParseID(idHex)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(p, in); err != nil {
		return nil, err
	}
	if image != nil {
		url, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		p.ImageURL = url
	}
	if err := s.products.Update(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, storeFailure("update product", err)
	}
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, idHex string) error {
	id, err := ParseID(idHex)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return storeFailure("delete product", err)
	}
	return nil
}

// AddReview records a verified purchaser's rating and refreshes the
// product's aggregate rating.
func (s *CatalogService) AddReview(ctx context.Context, reviewer *models.User, productHex string, rating int, comment string) (*models.Product, error) {
	comment = strings.TrimSpace(comment)
	if rating < 1 || rating > 5 {
		return nil, apperr.BadRequest("Rating must be between 1 and 5")
	}
	if comment == "" {
		return nil, apperr.BadRequest("Comment is required")
	}
	p, err := s.Get(ctx, productHex)
	if err != nil {
		return nil, err
	}

	bought, err := s.orders.HasPurchased(ctx, reviewer.ID, p.ID)
	if err != nil {
		return nil, storeFailure("has purchased", err)
	}
	if !bought {
		return nil, apperr.Forbidden("Only verified purchasers can review this product")
	}
	if p.ReviewedBy(reviewer.ID) {
		return nil, apperr.BadRequest("Product already reviewed")
	}

	p.Reviews = append(p.Reviews, models.Review{
		ID:        primitive.NewObjectID(),
		Name:      reviewer.DisplayName(),
		Rating:    rating,
		Comment:   comment,
		User:      reviewer.ID,
		CreatedAt: s.now(),
	})
	p.Recalculate()
	if err := s.products.Update(ctx, p); err != nil {
		return nil, storeFailure("save review", err)
	}
	return p, nil
}

func (s *CatalogService) upload(ctx context.Context, image *Image) (string, error) {
	url, err := s.images.Upload(ctx, image.Filename, image.Body)
	if err != nil {
		return "", apperr.Internal("Error uploading image", err)
	}
	return url, nil
}

func apply(p *models.Product, in ProductInput) error {
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return apperr.BadRequest("Name is required")
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return apperr.BadRequest("Description is required")
		}
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		c := models.Category(*in.Category)
		if !c.Valid() {
			return apperr.BadRequest("Category must be one of Mainline, Premium, Exclusive, Other")
		}
		p.Category = c
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return apperr.BadRequest("Price must not be negative")
		}
		p.Price = *in.Price
	}
	if in.StockQuantity != nil {
		if *in.StockQuantity < 0 {
			return apperr.BadRequest("Stock quantity must not be negative")
		}
		p.StockQuantity = *in.StockQuantity
	}
	return nil
}
