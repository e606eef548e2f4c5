package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users []User
}

// NewMemoryRepository builds an in-memory user store for development and tests.
// Uniqueness of mobile number and email is enforced under the write lock.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) FindByMobileOrEmail(_ context.Context, mobile, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := r.lookup(mobile, email); ok {
		return user, nil
	}
	return User{}, ErrUserNotFound
}

func (r *memoryRepository) Create(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.lookup(user.MobileNumber, user.Email); exists {
		return User{}, ErrDuplicateKey
	}
	user.ID = uuid.NewString()
	r.users = append(r.users, user)
	return user, nil
}

func (r *memoryRepository) EnsureIndexes(context.Context) error { return nil }

func (r *memoryRepository) Ping(context.Context) error { return nil }

func (r *memoryRepository) lookup(mobile, email string) (User, bool) {
	for _, user := range r.users {
		if user.MobileNumber == mobile || user.Email == email {
			return user, true
		}
	}
	return User{}, false
}
