package services

import (
	"context"
	"errors"

	"collect-and-cruise/internal/apperr"
	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/store"
)

type AdminService struct {
	users store.Users
}

func NewAdminService(users store.Users) *AdminService {
	return &AdminService{users: users}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeFailure("list users", err)
	}
	return users, nil
}

func (s *AdminService) GetUser(ctx context.Context, idHex string) (*models.User, error) {
	id, err := ParseID(idHex)
	if err != nil {
		return nil, err
	}
	return loadUser(ctx, s.users, id)
}

// UpdateUser changes the email when one is given and always sets isAdmin.
func (s *AdminService) UpdateUser(ctx context.Context, idHex string, email string, isAdmin bool) (*models.User, error) {
	u, err := s.GetUser(ctx, idHex)
	if err != nil {
		return nil, err
	}
	if email = models.NormalizeEmail(email); email != "" {
		u.Email = email
	}
	u.IsAdmin = isAdmin
	if err := s.users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, apperr.BadRequest("Email already in use")
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound("User not found")
		}
		return nil, storeFailure("update user", err)
	}
	return u, nil
}

// DeleteUser removes a regular account. Admin accounts cannot be deleted.
func (s *AdminService) DeleteUser(ctx context.Context, idHex string) error {
	u, err := s.GetUser(ctx, idHex)
	if err != nil {
		return err
	}
	if u.IsAdmin {
		return apperr.BadRequest("Cannot delete admin user")
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return storeFailure("delete user", err)
	}
	return nil
}
