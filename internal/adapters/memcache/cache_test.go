package memcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyd945/travel-ai-agent/internal/adapters/memcache"
	"github.com/xyd945/travel-ai-agent/internal/domain"
)

func TestCache_RoundTripDoesNotAlias(t *testing.T) {
	c := memcache.New(time.Minute)
	ctx := context.Background()

	in := []domain.HotelRecord{{ID: "h1", Name: "Le Meurice"}}
	require.NoError(t, c.Set(ctx, "hotels:city:paris:FR", in, 0))
	in[0].Name = "mutated"

	var out []domain.HotelRecord
	ok, err := c.Get(ctx, "hotels:city:paris:FR", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Le Meurice", out[0].Name)

	require.NoError(t, c.Del(ctx, "hotels:city:paris:FR"))
	ok, _ = c.Get(ctx, "hotels:city:paris:FR", &out)
	assert.False(t, ok)
}

func TestCache_TTL(t *testing.T) {
	c := memcache.New(time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", "v", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	var s string
	ok, _ := c.Get(ctx, "k", &s)
	assert.False(t, ok)
}
