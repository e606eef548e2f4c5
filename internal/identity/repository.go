package identity

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned by repositories when no document matches.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateKey is returned by repositories when an insert violates the
	// unique mobileNumber or email index.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Repository persists users.
type Repository interface {
	// FindByMobileOrEmail returns the first user whose mobile number equals
	// mobile or whose email equals email.
	FindByMobileOrEmail(ctx context.Context, mobile, email string) (User, error)
	// Create inserts user and returns it with the store-assigned ID.
	Create(ctx context.Context, user User) (User, error)
	// EnsureIndexes creates the unique constraints on mobile number and email.
	EnsureIndexes(ctx context.Context) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
