package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "github.com/xyd945/travel-ai-agent/internal/adapters/redis"
	"github.com/xyd945/travel-ai-agent/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0), mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	in := domain.ResolvedPlace{PlaceID: "p1", Name: "Time Out Market", Geometry: domain.Geometry{Location: domain.LatLng{Lat: 38.7, Lng: -9.1}}}
	require.NoError(t, c.Set(ctx, "place:v1:abc", in, time.Minute))

	var out domain.ResolvedPlace
	ok, err := c.Get(ctx, "place:v1:abc", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)

	require.NoError(t, c.Del(ctx, "place:v1:abc"))
	ok, err = c.Get(ctx, "place:v1:abc", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "geo:v1:x", domain.LatLng{Lat: 1, Lng: 2}, 10*time.Second))
	mr.FastForward(11 * time.Second)

	var ll domain.LatLng
	ok, err := c.Get(ctx, "geo:v1:x", &ll)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_KeysArePrefixed(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, c.Set(context.Background(), "k", 1, time.Minute))
	assert.True(t, mr.Exists("wayfinder:k"))
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("wayfinder:bad", "{not json"))

	var out domain.LatLng
	ok, err := c.Get(context.Background(), "bad", &out)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("wayfinder:bad"))
}
