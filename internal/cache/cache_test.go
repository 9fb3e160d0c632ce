package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func setupCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, New(client)
}

func TestCache_JSONRoundTrip(t *testing.T) {
	mr, c := setupCache(t)
	ctx := context.Background()

	var got []item
	hit, err := c.GetJSON(ctx, "locations", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "locations", []item{{ID: 1, Name: "Bangkok"}}, time.Minute))
	hit, err = c.GetJSON(ctx, "locations", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []item{{ID: 1, Name: "Bangkok"}}, got)

	mr.FastForward(2 * time.Minute)
	hit, err = c.GetJSON(ctx, "locations", &got)
	require.NoError(t, err)
	assert.False(t, hit, "entry should expire")
}

func TestCache_Delete(t *testing.T) {
	_, c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", item{ID: 2}, time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	var got item
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_RevokeUntilExpiry(t *testing.T) {
	mr, c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err := c.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = c.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = c.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestCache_RevokeExpiredTokenIsNoop(t *testing.T) {
	mr, c := setupCache(t)
	require.NoError(t, c.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(revokedPrefix+"old"))
}

func TestCache_DisabledIsNoop(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	assert.False(t, c.Enabled())
	require.NoError(t, c.SetJSON(ctx, "k", item{ID: 1}, time.Minute))
	var got item
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, c.Revoke(ctx, "jti", time.Now().Add(time.Hour)))
	revoked, err := c.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestConnect_EmptyAddr(t *testing.T) {
	client, err := Connect(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.Nil(t, client)
}
