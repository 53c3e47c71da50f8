package services

import (
	"context"
	"fmt"

	"collect-and-cruise/internal/auth"
	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/store"
)

const (
	SeedAdminEmail = "admin@example.com"
	SeedPassword   = "123456"
	sampleImageURL = "https://res.cloudinary.com/demo/image/upload/sample.jpg"
)

var sampleUsers = []struct {
	email   string
	isAdmin bool
}{
	{SeedAdminEmail, true},
	{"user1@example.com", false},
	{"user2@example.com", false},
}

func sampleProducts() []models.Product {
	return []models.Product{
		{
			Name:          "HotWheels '87 Ford Sierra Cosworth",
			Description:   "Classic rally car from HotWheels Mainline series.",
			Category:      models.CategoryMainline,
			Price:         249,
			StockQuantity: 10,
			ImageURL:      sampleImageURL,
		},
		{
			Name:          "HotWheels Lamborghini Countach",
			Description:   "Iconic 80s supercar from HotWheels Premium lineup.",
			Category:      models.CategoryPremium,
			Price:         499,
			StockQuantity: 5,
			ImageURL:      sampleImageURL,
		},
	}
}

// DestroyData wipes users and products.
func DestroyData(ctx context.Context, st store.Store) error {
	if err := st.Users.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	if err := st.Products.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	return nil
}

// ImportSampleData replaces users and products with the sample catalog.
func ImportSampleData(ctx context.Context, st store.Store) error {
	if err := DestroyData(ctx, st); err != nil {
		return err
	}
	hash, err := auth.HashPassword(SeedPassword)
	if err != nil {
		return err
	}
	for _, su := range sampleUsers {
		u := &models.User{Email: su.email, Password: hash, IsAdmin: su.isAdmin}
		if err := st.Users.Create(ctx, u); err != nil {
			return fmt.Errorf("create %s: %w", su.email, err)
		}
	}
	if err := st.Products.InsertMany(ctx, sampleProducts()); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	return nil
}

// ResetAdmin creates or restores the default admin account.
func ResetAdmin(ctx context.Context, users store.Users) (*models.User, error) {
	hash, err := auth.HashPassword(SeedPassword)
	if err != nil {
		return nil, err
	}
	admin := &models.User{Email: SeedAdminEmail, Password: hash, IsAdmin: true}
	if err := users.UpsertByEmail(ctx, admin); err != nil {
		return nil, fmt.Errorf("reset admin: %w", err)
	}
	return admin, nil
}
