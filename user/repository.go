package user

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = stderrors.New("user: not found")

// Repository stores user accounts. Hosts plug in their own persistence;
// MemoryRepository is provided for tests and single-process setups.
type Repository interface {
	// FindByEmail returns the user with the given email, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create stores a new user and assigns its ID.
	Create(ctx context.Context, u *User) error

	// Update persists changes to an existing user.
	Update(ctx context.Context, u *User) error
}

// MemoryRepository is an in-memory Repository keyed by lower-cased email.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*User)}
}

// FindByEmail implements Repository.
func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// Create implements Repository.
func (r *MemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	copied := *u
	r.users[strings.ToLower(u.Email)] = &copied
	return nil
}

// Update implements Repository.
func (r *MemoryRepository) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, ok := r.users[key]; !ok {
		return ErrNotFound
	}
	copied := *u
	r.users[key] = &copied
	return nil
}
