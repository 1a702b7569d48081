package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shutdown-tracker/internal/errs"
	"shutdown-tracker/internal/models"
)

type UserStore struct {
	mu    sync.RWMutex
	users []models.User
}

// NewUserStore seeds the store with users; missing ids are generated.
func NewUserStore(users ...models.User) *UserStore {
	s := &UserStore{}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		s.users = append(s.users, u)
	}
	return s
}

func (s *UserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, errs.NotFound("get user", "user", nil)
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, errs.NotFound("get user", "user", nil)
}

func (s *UserStore) UpdateAccessLevel(_ context.Context, id uuid.UUID, level models.AccessLevel) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].AccessLevel = level
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, errs.NotFound("update user", "user", nil)
}

func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, u.Email) {
			return errs.Validation("create user", "email already registered", "email")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users = append(s.users, *u)
	return nil
}

func (s *UserStore) RecordLogin(_ context.Context, id uuid.UUID, provider string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Provider = provider
			t := at
			s.users[i].LastLoginAt = &t
			return nil
		}
	}
	return errs.NotFound("record login", "user", nil)
}
