package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// MemoryUserStore is the in-process UserStore used when no database is configured.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
	now   func() time.Time
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[string]domain.User),
		now:   time.Now,
	}
}

func (s *MemoryUserStore) Create(_ context.Context, user *domain.User) error {
	user.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Email != "" && s.emailTaken(user.Email) {
		return domain.ErrEmailExists
	}

	user.RegisteredAt = s.now().UTC()
	user.LoginCount = 0
	user.LastLoginAt = nil
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (s *MemoryUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emailTaken(email), nil
}

func (s *MemoryUserStore) emailTaken(email string) bool {
	for _, u := range s.users {
		if u.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryUserStore) RecordLogin(_ context.Context, id string, at time.Time) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	at = at.UTC()
	user.LastLoginAt = &at
	user.LoginCount++
	s.users[id] = user
	return &user, nil
}

// List returns users ordered by registration time.
func (s *MemoryUserStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].RegisteredAt.Equal(users[j].RegisteredAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].RegisteredAt.Before(users[j].RegisteredAt)
	})
	return users, nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// MemoryAccessLog keeps the most recent access events in a bounded slice.
type MemoryAccessLog struct {
	mu       sync.RWMutex
	events   []domain.AccessEvent
	capacity int
}

// NewMemoryAccessLog keeps at most capacity events; zero means 1000.
func NewMemoryAccessLog(capacity int) *MemoryAccessLog {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryAccessLog{capacity: capacity}
}

func (l *MemoryAccessLog) Append(_ context.Context, event domain.AccessEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)
	if over := len(l.events) - l.capacity; over > 0 {
		l.events = append([]domain.AccessEvent(nil), l.events[over:]...)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (l *MemoryAccessLog) Recent(_ context.Context, limit int) ([]domain.AccessEvent, error) {
	if limit <= 0 {
		return nil, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	n := min(limit, len(l.events))
	out := make([]domain.AccessEvent, 0, n)
	for i := len(l.events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.events[i])
	}
	return out, nil
}
