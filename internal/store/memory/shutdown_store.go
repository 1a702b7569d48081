package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"shutdown-tracker/internal/errs"
	"shutdown-tracker/internal/models"
)

// ShutdownStore keeps records in memory for tests and STORAGE=memory runs.
type ShutdownStore struct {
	mu    sync.RWMutex
	order []uuid.UUID // insertion order, oldest first
	data  map[uuid.UUID]*models.Shutdown
	calls int
}

func NewShutdownStore() *ShutdownStore {
	return &ShutdownStore{data: make(map[uuid.UUID]*models.Shutdown)}
}

func (s *ShutdownStore) List(_ context.Context) ([]models.Shutdown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	out := make([]models.Shutdown, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, *s.data[s.order[i]].Clone())
	}
	return out, nil
}

func (s *ShutdownStore) Get(_ context.Context, id uuid.UUID) (*models.Shutdown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	rec, ok := s.data[id]
	if !ok {
		return nil, errs.NotFound("get shutdown", "shutdown", nil)
	}
	return rec.Clone(), nil
}

func (s *ShutdownStore) Create(_ context.Context, rec *models.Shutdown) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.data[rec.ID] = rec.Clone()
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *ShutdownStore) Update(_ context.Context, rec *models.Shutdown) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if _, ok := s.data[rec.ID]; !ok {
		return errs.NotFound("update shutdown", "shutdown", nil)
	}
	s.data[rec.ID] = rec.Clone()
	return nil
}

func (s *ShutdownStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if _, ok := s.data[id]; !ok {
		return errs.NotFound("delete shutdown", "shutdown", nil)
	}
	delete(s.data, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Calls returns how many store operations have run. Test-only helper.
func (s *ShutdownStore) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}
