package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"shutdown-tracker/internal/errs"
	"shutdown-tracker/internal/models"
)

type SessionStore struct {
	mu     sync.Mutex
	tokens []models.RefreshToken
	now    func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, rt *models.RefreshToken, maxActive int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	kept := s.tokens[:0]
	var active []int
	for _, t := range s.tokens {
		if t.UserID == rt.UserID && t.ExpiresAt.Before(now) {
			continue
		}
		kept = append(kept, t)
		if t.UserID == rt.UserID && !t.Revoked {
			active = append(active, len(kept)-1)
		}
	}
	s.tokens = kept

	if maxActive > 0 && len(active) >= maxActive {
		sort.Slice(active, func(i, j int) bool {
			return s.tokens[active[i]].CreatedAt.Before(s.tokens[active[j]].CreatedAt)
		})
		for _, idx := range active[:len(active)-maxActive+1] {
			s.tokens[idx].Revoked = true
		}
	}

	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	s.tokens = append(s.tokens, *rt)
	return nil
}

func (s *SessionStore) FindActive(_ context.Context, jti, tokenHash string) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for i := range s.tokens {
		t := s.tokens[i]
		if t.JTI == jti && t.TokenHash == tokenHash && !t.Revoked && t.ExpiresAt.After(now) {
			return &t, nil
		}
	}
	return nil, errs.NotFound("find session", "refresh token", nil)
}

func (s *SessionStore) Revoke(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tokens {
		if s.tokens[i].ID == id {
			s.tokens[i].Revoked = true
		}
	}
	return nil
}

func (s *SessionStore) RevokeByJTI(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tokens {
		if s.tokens[i].JTI == jti {
			s.tokens[i].Revoked = true
		}
	}
	return nil
}

// Active counts a user's live sessions; used by tests.
func (s *SessionStore) Active(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, t := range s.tokens {
		if t.UserID == userID && !t.Revoked && t.ExpiresAt.After(now) {
			n++
		}
	}
	return n
}
