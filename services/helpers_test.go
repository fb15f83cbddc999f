package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ravigill3969/textgen-quota/models"
	"github.com/ravigill3969/textgen-quota/repositories"
	"github.com/ravigill3969/textgen-quota/utils"
)

const testSecret = "test-secret-that-is-at-least-32-bytes!!"

type stubGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	delay   time.Duration
	calls   atomic.Int32
	prompts []string
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

func (g *stubGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

type testEnv struct {
	store  *repositories.MemoryStore
	tokens *utils.TokenService
	quota  *QuotaService
	auth   *AuthService
}

func newTestEnv(t *testing.T, enforce bool) *testEnv {
	t.Helper()
	store := repositories.NewMemoryStore()
	tokens := utils.NewTokenService([]byte(testSecret), time.Hour)
	quota := NewQuotaService(store, 20, enforce)
	return &testEnv{
		store:  store,
		tokens: tokens,
		quota:  quota,
		auth:   NewAuthService(store, quota, tokens),
	}
}

func (e *testEnv) register(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), models.RegisterForm{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return u
}

// setCalls drains or tops up a user's quota to exactly n.
func (e *testEnv) setCalls(t *testing.T, u *models.User, n int) {
	t.Helper()
	ctx := context.Background()
	current, err := e.quota.Read(ctx, u.ID)
	require.NoError(t, err)
	for ; current > n; current-- {
		_, err := e.quota.Decrement(ctx, u.ID)
		require.NoError(t, err)
	}
	if current < n {
		_, _, err := e.quota.Credit(ctx, models.TopUp{EventID: "seed-" + u.ID.String(), UserID: u.ID, Calls: n - current})
		require.NoError(t, err)
	}
}
