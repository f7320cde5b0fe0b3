package redisStore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store := GetRedisStore(ctx, Options{Addr: mr.Addr(), DB: 7})
	require.NotNil(t, store)
	assert.Same(t, store, GetRedisStore(ctx, Options{Addr: mr.Addr(), DB: 7}), "one store per database")

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := store.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, time.Minute, mr.DB(7).TTL("k"))

	require.NoError(t, store.Del(ctx, "k"))
	assert.False(t, mr.DB(7).Exists("k"))
	_, err = store.GetBytes(ctx, "k")
	assert.True(t, store.IsNil(err))
}

func TestGetRedisStore_Offline(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	assert.Nil(t, GetRedisStore(context.Background(), Options{Addr: addr, DB: 9}))
}
