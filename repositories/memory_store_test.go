package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravigill3969/textgen-quota/models"
)

func seedUser(t *testing.T, s *MemoryStore, email string, admin bool, calls int) *models.User {
	t.Helper()
	u := &models.User{Username: "user", Email: email, PasswordHash: "hash", IsAdmin: admin}
	require.NoError(t, s.Create(context.Background(), u, calls))
	return u
}

func TestMemoryStoreCreateDuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s, "a@example.com", false, 20)

	err := s.Create(context.Background(), &models.User{Email: "a@example.com"}, 20)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStoreDecrementNeverNegative(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s, "a@example.com", false, 3)
	ctx := context.Background()

	var charged int
	for i := 0; i < 5; i++ {
		res, err := s.Decrement(ctx, u.ID, 19)
		require.NoError(t, err)
		if res.Charged {
			charged++
		}
		assert.GreaterOrEqual(t, res.Remaining, 0)
	}
	assert.Equal(t, 3, charged)

	remaining, err := s.GetOrCreate(ctx, u.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestMemoryStoreConcurrentDecrement(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s, "a@example.com", false, 20)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Decrement(context.Background(), u.ID, 19)
		}()
	}
	wg.Wait()

	remaining, err := s.GetOrCreate(context.Background(), u.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestMemoryStoreDeleteCascadesAndProtectsAdmins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	admin := seedUser(t, s, "admin@example.com", true, 20)
	user := seedUser(t, s, "user@example.com", false, 20)

	assert.ErrorIs(t, s.DeleteNonAdmin(ctx, admin.ID), ErrProtected)
	require.NoError(t, s.DeleteNonAdmin(ctx, user.ID))
	assert.ErrorIs(t, s.DeleteNonAdmin(ctx, user.ID), ErrNotFound)

	_, err := s.GetOrCreate(ctx, user.ID, 20)
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := s.ListUsers(ctx, 20)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, admin.ID, users[0].ID)
}

func TestMemoryStoreCreditIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com", false, 2)
	topUp := models.TopUp{EventID: "evt_1", UserID: u.ID, Calls: 10}

	remaining, applied, err := s.Credit(ctx, topUp, 20)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 12, remaining)

	_, applied, err = s.Credit(ctx, topUp, 20)
	require.NoError(t, err)
	assert.False(t, applied)

	_, _, err = s.Credit(ctx, models.TopUp{EventID: "evt_2", UserID: uuid.New(), Calls: 1}, 20)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUsageCounter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Increment(ctx, "POST", "/api/v1/generate"))
	}
	require.NoError(t, s.Increment(ctx, "GET", "/api/v1/generate"))

	resources, err := s.ListResources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, int64(4), resources[0].Requests)
	assert.Equal(t, "POST", resources[0].Method)
	assert.Equal(t, int64(1), resources[1].Requests)
}

func TestMemoryStoreMissingQuotaRecord(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := seedUser(t, s, "a@example.com", false, 20)
	b := seedUser(t, s, "b@example.com", false, 20)
	delete(s.quotas, a.ID)
	delete(s.quotas, b.ID)

	res, err := s.Decrement(ctx, a.ID, 19)
	require.NoError(t, err)
	assert.Equal(t, models.QuotaResult{Remaining: 19, Charged: true, Defaulted: true}, res)

	remaining, err := s.GetOrCreate(ctx, b.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)

	users, err := s.ListUsers(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
