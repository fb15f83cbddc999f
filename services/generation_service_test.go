package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateChargesAfterSuccess(t *testing.T) {
	env := newTestEnv(t, false)
	u := env.register(t, "alice", "alice@example.com", "pw")
	gen := &stubGenerator{text: "hello"}
	svc := NewGenerationService(gen, env.quota, time.Second)

	res, err := svc.Generate(context.Background(), u.ID, "  say hello ")
	require.NoError(t, err)
	assert.Equal(t, "hello", res.GeneratedText)
	assert.Equal(t, 19, res.APICalls)
	assert.Equal(t, "say hello", gen.lastPrompt())
}

func TestGenerateFailureIsNotCharged(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	u := env.register(t, "alice", "alice@example.com", "pw")
	svc := NewGenerationService(&stubGenerator{err: errors.New("boom")}, env.quota, time.Second)

	_, err := svc.Generate(ctx, u.ID, "hi")
	assert.ErrorIs(t, err, ErrUpstream)

	remaining, err := env.quota.Read(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)
}

func TestGenerateTimeout(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	u := env.register(t, "alice", "alice@example.com", "pw")
	svc := NewGenerationService(&stubGenerator{text: "late", delay: time.Second}, env.quota, 20*time.Millisecond)

	_, err := svc.Generate(ctx, u.ID, "hi")
	assert.ErrorIs(t, err, ErrUpstreamTimeout)

	remaining, err := env.quota.Read(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)
}

func TestGenerateRejectsBadPrompt(t *testing.T) {
	env := newTestEnv(t, false)
	u := env.register(t, "alice", "alice@example.com", "pw")
	gen := &stubGenerator{text: "x"}
	svc := NewGenerationService(gen, env.quota, time.Second)

	_, err := svc.Generate(context.Background(), u.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Generate(context.Background(), u.ID, strings.Repeat("a", MaxPromptLength+1))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, gen.calls.Load())
}

func TestGenerateSoftQuotaKeepsServing(t *testing.T) {
	env := newTestEnv(t, false)
	u := env.register(t, "alice", "alice@example.com", "pw")
	env.setCalls(t, u, 0)
	svc := NewGenerationService(&stubGenerator{text: "still here"}, env.quota, time.Second)

	res, err := svc.Generate(context.Background(), u.ID, "hi")
	require.NoError(t, err)
	assert.Equal(t, "still here", res.GeneratedText)
	assert.Equal(t, 0, res.APICalls)
}

func TestGenerateEnforcedQuota(t *testing.T) {
	env := newTestEnv(t, true)
	u := env.register(t, "alice", "alice@example.com", "pw")
	env.setCalls(t, u, 0)
	gen := &stubGenerator{text: "nope"}
	svc := NewGenerationService(gen, env.quota, time.Second)

	_, err := svc.Generate(context.Background(), u.ID, "hi")
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Zero(t, gen.calls.Load())
}

func TestGenerateHaikuAndJokePrompts(t *testing.T) {
	env := newTestEnv(t, false)
	u := env.register(t, "alice", "alice@example.com", "pw")
	gen := &stubGenerator{text: "ok"}
	svc := NewGenerationService(gen, env.quota, time.Second)
	ctx := context.Background()

	_, err := svc.GenerateHaiku(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, haikuPrompt, gen.lastPrompt())

	_, err = svc.GenerateJoke(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, jokePrompt, gen.lastPrompt())

	res, err := svc.GenerateJoke(ctx, u.ID, "Alice")
	require.NoError(t, err)
	assert.Contains(t, gen.lastPrompt(), "Alice")
	assert.Equal(t, 17, res.APICalls)
}

func TestGenerateForDeletedUserSkipsUpstream(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	u := env.register(t, "alice", "alice@example.com", "pw")
	require.NoError(t, env.store.DeleteNonAdmin(ctx, u.ID))

	gen := &stubGenerator{text: "paid for nothing"}
	svc := NewGenerationService(gen, env.quota, time.Second)

	for i := 0; i < 3; i++ {
		_, err := svc.Generate(ctx, u.ID, "hi")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Zero(t, gen.calls.Load())
}
