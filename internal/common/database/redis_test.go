// internal/common/database/redis_test.go
package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcheck/internal/common/config"
)

func TestRedisClient_JSONRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	type entry struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	}
	require.NoError(t, client.SetJSON(ctx, "k", []entry{{"a", 1.5}}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	var got []entry
	require.NoError(t, client.GetJSON(ctx, "k", &got))
	assert.Equal(t, []entry{{"a", 1.5}}, got)

	require.NoError(t, client.Del(ctx, "k"))
	assert.ErrorIs(t, client.GetJSON(ctx, "k", &got), ErrCacheMiss)
}

func TestRedisClient_GetJSON_Corrupt(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("k", "{"))
	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	var out map[string]string
	err = client.GetJSON(context.Background(), "k", &out)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}
