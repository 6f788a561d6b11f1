package media

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*RedisRegistry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRegistry(client), mr
}

func TestRegistry_RecordResolve(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	asset := Asset{URL: "http://media.local/avatars/a.png", ContentType: "image/png"}
	require.NoError(t, reg.Record(ctx, "ref-1", asset, time.Minute))

	got, err := reg.Resolve(ctx, "ref-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, asset, *got)
}

func TestRegistry_UnknownRefResolvesToNothing(t *testing.T) {
	reg, _ := newTestRegistry(t)

	got, err := reg.Resolve(context.Background(), "never-recorded")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegistry_EntriesExpire(t *testing.T) {
	reg, mr := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Record(ctx, "ref-1", Asset{URL: "u"}, time.Minute))

	mr.FastForward(2 * time.Minute)

	got, err := reg.Resolve(ctx, "ref-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegistry_RejectsBadInput(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	assert.Error(t, reg.Record(ctx, "", Asset{URL: "u"}, time.Minute))
	assert.Error(t, reg.Record(ctx, "ref", Asset{URL: "u"}, 0))
}

func TestStorageKey_UniquePerCall(t *testing.T) {
	a := StorageKey("avatars")
	b := StorageKey("avatars")
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "avatars/")
}
