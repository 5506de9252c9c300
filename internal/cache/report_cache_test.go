package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solderinua-oss/solder-warehouse/internal/analytics"
	"github.com/solderinua-oss/solder-warehouse/internal/config"
	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

func TestNewReportCache_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	c, err := NewReportCache(ctx, config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	require.NoError(t, c.SetStats(ctx, analytics.CountAuto, domain.Stats{Profit: 10}))
	_, ok, err := c.GetStats(ctx, analytics.CountAuto)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = redisOptions(config.CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)

	opts, err = redisOptions(config.CacheConfig{RedisURL: "redis://:secret@redis.local:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "redis.local:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = redisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "warehouse:report:stats:auto", statsKey(""))
	assert.Equal(t, "warehouse:report:stats:units", statsKey(analytics.CountUnits))
	assert.True(t, strings.HasPrefix(capitalKey(), reportKeyPrefix))

	def := analytics.DefaultPolicy()
	assert.Equal(t, analysisKey(def), analysisKey(analytics.DefaultPolicy()))
	assert.NotEqual(t, analysisKey(def), analysisKey(def.WithOverrides(70, nil)))
	assert.True(t, strings.HasPrefix(analysisKey(def), reportKeyPrefix+":analysis:"))
}
