package users

import "context"

// Repository defines the persistence operations for User entities.
type Repository interface {
	Create(ctx context.Context, user User) (User, error)
	// GetByEmail returns the user with the exact email, or (nil, nil) when
	// no such user exists.
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit int) ([]User, error)
}
