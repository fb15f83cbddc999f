package main

import (
	"context"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravigill3969/textgen-quota/config"
	"github.com/ravigill3969/textgen-quota/models"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("textgen-quota"),
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
	)
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	kctx.BindTo(context.Background(), (*context.Context)(nil))
	return cli, kctx
}

func TestServeIsDefaultCommand(t *testing.T) {
	_, kctx := parse(t)
	assert.Equal(t, "serve", kctx.Command())

	cli, kctx := parse(t, "serve", "--port", "9090")
	assert.Equal(t, "serve", kctx.Command())
	assert.Equal(t, "9090", cli.Serve.Port)
}

func TestCreateAdminPasswordFromEnv(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "from-env")

	cli, kctx := parse(t, "create-admin", "--username", "root", "--email", "root@example.com")
	assert.Equal(t, "create-admin", kctx.Command())
	assert.Equal(t, "root", cli.CreateAdmin.Username)
	assert.Equal(t, "from-env", cli.CreateAdmin.Password)
}

func TestStorageCommandsNeedPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", config.StoreDriverMemory)

	cli, kctx := parse(t, "migrate")
	err := kctx.Run(cli)
	assert.ErrorContains(t, err, "migrate needs STORE_DRIVER=postgres")

	cli, kctx = parse(t, "create-admin", "--username", "root", "--email", "root@example.com", "--password", "pw")
	err = kctx.Run(cli)
	assert.ErrorContains(t, err, "create-admin needs STORE_DRIVER=postgres")
}

func TestOpenStoresMemory(t *testing.T) {
	cfg := config.Default()
	cfg.StoreDriver = config.StoreDriverMemory
	ctx := context.Background()

	st, err := openStores(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, st.ping())

	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, st.users.Create(ctx, user, cfg.Quota.DefaultAPICalls))
	assert.NotEqual(t, uuid.Nil, user.ID)

	remaining, err := st.quota.GetOrCreate(ctx, user.ID, cfg.Quota.DefaultAPICalls)
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)

	require.NoError(t, st.usage.Increment(ctx, "GET", "/api/v1/checkUser"))
	assert.NoError(t, st.Close())
}

func TestOpenRedisDisabled(t *testing.T) {
	client, err := openRedis(context.Background(), config.RateLimitConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = openRedis(context.Background(), config.RateLimitConfig{RedisURL: "not a url", MaxRequests: 1})
	assert.Error(t, err)
}
