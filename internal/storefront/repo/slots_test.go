package repo

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/terra-tattva/storefront/internal/core/error"
	"github.com/terra-tattva/storefront/internal/storefront/model"
)

func newRedisRepo(t *testing.T, ttl time.Duration) (*RedisSlotRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisSlotRepository(rdb, ttl), mr
}

func exerciseRepository(t *testing.T, r model.SlotRepository) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := r.Load(ctx, "s1", "cart")
	require.NoError(t, err)
	assert.False(t, ok, "unwritten slot is absent")

	require.NoError(t, r.Save(ctx, "s1", "cart", []byte(`[{"id":1,"quantity":2}]`)))
	require.NoError(t, r.Save(ctx, "s1", "favorites", []byte(`[3]`)))
	require.NoError(t, r.Save(ctx, "s2", "cart", []byte(`[]`)))

	data, ok, err := r.Load(ctx, "s1", "cart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1,"quantity":2}]`, string(data))

	require.NoError(t, r.Save(ctx, "s1", "cart", []byte(`[]`)))
	data, _, err = r.Load(ctx, "s1", "cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	require.NoError(t, r.Clear(ctx, "s1"))
	_, ok, err = r.Load(ctx, "s1", "favorites")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.Load(ctx, "s2", "cart")
	require.NoError(t, err)
	assert.True(t, ok, "clearing one session leaves others alone")

	require.NoError(t, r.Clear(ctx, "never-seen"))
}

func TestMemorySlotRepository(t *testing.T) {
	exerciseRepository(t, NewMemorySlotRepository())
}

func TestMemorySlotRepositoryCopiesData(t *testing.T) {
	ctx := context.Background()
	r := NewMemorySlotRepository()
	buf := []byte("[1]")
	require.NoError(t, r.Save(ctx, "s", "fav", buf))
	buf[1] = '9'

	data, _, err := r.Load(ctx, "s", "fav")
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(data))
}

func TestRedisSlotRepository(t *testing.T) {
	r, _ := newRedisRepo(t, 0)
	exerciseRepository(t, r)
}

func TestRedisSlotRepositoryKeysAndTTL(t *testing.T) {
	r, mr := newRedisRepo(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, "abc", "terraTattvaCart", []byte("[]")))
	assert.True(t, mr.Exists("storefront:abc:terraTattvaCart"))
	assert.Equal(t, time.Hour, mr.TTL("storefront:abc:terraTattvaCart"))

	mr.FastForward(30 * time.Minute)
	require.NoError(t, r.Save(ctx, "abc", "terraTattvaCart", []byte("[]")))
	assert.Equal(t, time.Hour, mr.TTL("storefront:abc:terraTattvaCart"), "write refreshes ttl")

	mr.FastForward(2 * time.Hour)
	_, ok, err := r.Load(ctx, "abc", "terraTattvaCart")
	require.NoError(t, err)
	assert.False(t, ok, "expired slot reads as absent")
}

func TestRedisSlotRepositoryWrapsFailures(t *testing.T) {
	r, mr := newRedisRepo(t, 0)
	mr.Close()

	_, _, err := r.Load(context.Background(), "s", "cart")
	require.Error(t, err)
	status, _ := errx.StatusOf(err)
	assert.Equal(t, http.StatusBadGateway, status)

	err = r.Save(context.Background(), "s", "cart", []byte("[]"))
	status, _ = errx.StatusOf(err)
	assert.Equal(t, http.StatusBadGateway, status)
}
