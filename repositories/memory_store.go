package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ravigill3969/textgen-quota/models"
)

type resourceKey struct {
	method   string
	endpoint string
}

// MemoryStore keeps users, quotas and usage counters in process. It
// implements UserRepository, QuotaRepository and UsageRepository behind one
// lock so user deletion cascades to the quota record like the SQL schema.
type MemoryStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	emails    map[string]uuid.UUID
	quotas    map[uuid.UUID]*models.QuotaRecord
	resources map[resourceKey]*models.Resource
	events    map[string]struct{}
	nextResID int64
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[uuid.UUID]*models.User),
		emails:    make(map[string]uuid.UUID),
		quotas:    make(map[uuid.UUID]*models.QuotaRecord),
		resources: make(map[resourceKey]*models.Resource),
		events:    make(map[string]struct{}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func emailKey(email string) string {
	return strings.TrimSpace(email)
}

func (s *MemoryStore) Create(_ context.Context, user *models.User, apiCalls int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(user.Email)
	if _, ok := s.emails[key]; ok {
		return ErrDuplicate
	}

	now := s.now()
	user.ID = uuid.New()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.users[user.ID] = &stored
	s.emails[key] = user.ID
	s.quotas[user.ID] = &models.QuotaRecord{UserID: user.ID, APICalls: apiCalls, LastReset: now}
	return nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[emailKey(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := *s.users[id]
	return &u, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *stored
	return &u, nil
}

func (s *MemoryStore) ListUsers(_ context.Context, defaultCalls int) ([]models.SafeUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.SafeUser, 0, len(s.users))
	for _, u := range s.users {
		calls := defaultCalls
		if q, ok := s.quotas[u.ID]; ok {
			calls = q.APICalls
		}
		users = append(users, models.SafeUser{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			IsAdmin:   u.IsAdmin,
			APICalls:  calls,
			CreatedAt: u.CreatedAt,
		})
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].Email < users[j].Email
	})
	return users, nil
}

func (s *MemoryStore) UpdateUsername(_ context.Context, id uuid.UUID, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	stored.Username = username
	stored.UpdatedAt = s.now()
	u := *stored
	return &u, nil
}

func (s *MemoryStore) DeleteNonAdmin(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	if stored.IsAdmin {
		return ErrProtected
	}
	delete(s.emails, emailKey(stored.Email))
	delete(s.users, id)
	delete(s.quotas, id)
	return nil
}

func (s *MemoryStore) Decrement(_ context.Context, userID uuid.UUID, fallback int) (models.QuotaResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotas[userID]
	if !ok {
		if _, exists := s.users[userID]; !exists {
			return models.QuotaResult{}, ErrNotFound
		}
		s.quotas[userID] = &models.QuotaRecord{UserID: userID, APICalls: fallback, LastReset: s.now()}
		return models.QuotaResult{Remaining: fallback, Charged: true, Defaulted: true}, nil
	}
	if q.APICalls <= 0 {
		return models.QuotaResult{Remaining: 0}, nil
	}
	q.APICalls--
	return models.QuotaResult{Remaining: q.APICalls, Charged: true}, nil
}

func (s *MemoryStore) GetOrCreate(_ context.Context, userID uuid.UUID, initial int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q, ok := s.quotas[userID]; ok {
		return q.APICalls, nil
	}
	if _, exists := s.users[userID]; !exists {
		return 0, ErrNotFound
	}
	s.quotas[userID] = &models.QuotaRecord{UserID: userID, APICalls: initial, LastReset: s.now()}
	return initial, nil
}

func (s *MemoryStore) Credit(_ context.Context, topUp models.TopUp, initial int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.events[topUp.EventID]; seen {
		return 0, false, nil
	}
	if _, exists := s.users[topUp.UserID]; !exists {
		return 0, false, ErrNotFound
	}
	s.events[topUp.EventID] = struct{}{}

	q, ok := s.quotas[topUp.UserID]
	if !ok {
		q = &models.QuotaRecord{UserID: topUp.UserID, APICalls: initial}
		s.quotas[topUp.UserID] = q
	}
	q.APICalls += topUp.Calls
	q.LastReset = s.now()
	return q.APICalls, true, nil
}

func (s *MemoryStore) Increment(_ context.Context, method, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := resourceKey{method: method, endpoint: endpoint}
	if res, ok := s.resources[key]; ok {
		res.Requests++
		return nil
	}
	s.nextResID++
	s.resources[key] = &models.Resource{ID: s.nextResID, Method: method, Endpoint: endpoint, Requests: 1}
	return nil
}

func (s *MemoryStore) ListResources(_ context.Context) ([]models.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resources := make([]models.Resource, 0, len(s.resources))
	for _, res := range s.resources {
		resources = append(resources, *res)
	}
	sort.Slice(resources, func(i, j int) bool {
		if resources[i].Requests != resources[j].Requests {
			return resources[i].Requests > resources[j].Requests
		}
		return resources[i].ID < resources[j].ID
	})
	return resources, nil
}

var (
	_ UserRepository  = (*MemoryStore)(nil)
	_ QuotaRepository = (*MemoryStore)(nil)
	_ UsageRepository = (*MemoryStore)(nil)

	_ UserRepository  = (*PostgresUserRepository)(nil)
	_ QuotaRepository = (*PostgresQuotaRepository)(nil)
	_ UsageRepository = (*PostgresUsageRepository)(nil)
)
