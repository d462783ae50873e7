package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"linksdash/internal/errx"
)

// CreateUserInput represents the parameters for creating a user.
type CreateUserInput struct {
	Name      string
	Email     *string
	AvatarURL *string
}

// Service defines the business logic operations on users.
type Service interface {
	Create(ctx context.Context, in CreateUserInput) (User, error)
	List(ctx context.Context, limit int) ([]User, error)
}

type service struct {
	repo Repository
}

// NewService creates a new service instance.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Create persists a new user, unless an email is given and a user with that
// exact email already exists, in which case the existing record is returned
// unchanged. Without an email there is nothing to dedup on, so a new record
// is always created.
func (s *service) Create(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "users.service.Create"

	if strings.TrimSpace(in.Name) == "" {
		return User{}, errx.E(op, errx.Invalid, errors.New("name is required"))
	}

	if in.Email != nil && *in.Email != "" {
		existing, err := s.repo.GetByEmail(ctx, *in.Email)
		if err != nil {
			return User{}, errx.E(op, errx.KindOf(err), err)
		}
		if existing != nil {
			return *existing, nil
		}
	}

	created, err := s.repo.Create(ctx, User{
		Name:      in.Name,
		Email:     in.Email,
		AvatarURL: in.AvatarURL,
	})
	if err != nil {
		return User{}, errx.E(op, errx.KindOf(err), err)
	}
	return created, nil
}

// List returns up to limit users, newest first.
func (s *service) List(ctx context.Context, limit int) ([]User, error) {
	const op = "users.service.List"

	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < MinLimit || limit > MaxLimit {
		return nil, errx.E(op, errx.Invalid, fmt.Errorf("limit must be between %d and %d", MinLimit, MaxLimit))
	}

	found, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, errx.E(op, errx.KindOf(err), err)
	}
	return found, nil
}
