package services

import (
	"context"
	"errors"
	"strings"

	"collect-and-cruise/internal/apperr"
	"collect-and-cruise/internal/auth"
	"collect-and-cruise/internal/models"
	"collect-and-cruise/internal/store"
)

const invalidCredentials = "Invalid email or password"

// UserInfo is returned by register and login.
type UserInfo struct {
	ID      string `json:"_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

type AuthService struct {
	users  store.Users
	tokens *auth.Tokens
}

func NewAuthService(users store.Users, tokens *auth.Tokens) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*UserInfo, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.BadRequest("Email and password are required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.BadRequest("User already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, storeFailure("find user by email", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("Invalid user data", err)
	}
	user := &models.User{Email: email, Password: hashed}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.BadRequest("User already exists")
		}
		return nil, storeFailure("create user", err)
	}
	return s.issue(user)
}

// Login answers unknown emails and wrong passwords identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*UserInfo, error) {
	user, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized(invalidCredentials)
		}
		return nil, storeFailure("find user by email", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, apperr.Unauthorized(invalidCredentials)
	}
	return s.issue(user)
}

// Authenticate resolves a bearer token to its user. The password hash is
// cleared on the returned value.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Unauthorized("Not authorized, no token")
	}
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthorized("Not authorized, token failed")
	}
	oid, err := ParseID(id)
	if err != nil {
		return nil, apperr.Unauthorized("Not authorized, token failed")
	}
	user, err := s.users.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized("Not authorized, token failed")
		}
		return nil, storeFailure("find user", err)
	}
	user.Password = ""
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*UserInfo, error) {
	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, apperr.Internal("Could not issue token", err)
	}
	return &UserInfo{
		ID:      user.ID.Hex(),
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Token:   token,
	}, nil
}
