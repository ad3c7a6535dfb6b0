package repositories

import (
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a user; usernames and emails are unique.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.UserName == user.UserName || u.Email == user.Email {
			return apperr.Conflict("UserExists", "username or email already registered")
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return nil
}

// GetByUsername returns a user by username.
func (r *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.find(username, func(u models.User) bool { return u.UserName == username })
}

// GetByEmail returns a user by email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.find(email, func(u models.User) bool { return u.Email == email })
}

// GetByID returns a user by ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	return r.find(id, func(u models.User) bool { return u.ID == id })
}

func (r *MockUserRepository) find(key string, match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user", key)
}
