package cache

import (
	"cmp"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solderinua-oss/solder-warehouse/internal/analytics"
	"github.com/solderinua-oss/solder-warehouse/internal/config"
	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

const (
	reportKeyPrefix = "warehouse:report"
	scanBatchSize   = 100
	defaultTTL      = time.Minute
	pingTimeout     = 5 * time.Second
)

// ReportCache holds the derived read models between ingests. Every ingest
// must call InvalidateAll.
type ReportCache interface {
	GetStats(ctx context.Context, mode analytics.CountMode) (*domain.Stats, bool, error)
	SetStats(ctx context.Context, mode analytics.CountMode, stats domain.Stats) error
	GetCapital(ctx context.Context) (*domain.CapitalSplit, bool, error)
	SetCapital(ctx context.Context, split domain.CapitalSplit) error
	GetAnalysis(ctx context.Context, policy analytics.Policy) (*analytics.Report, bool, error)
	SetAnalysis(ctx context.Context, policy analytics.Policy, report analytics.Report) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

// NewReportCache returns a redis-backed cache when caching is enabled. The
// server must answer a ping before the cache is used.
func NewReportCache(ctx context.Context, cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	ttl := cfg.TTL()
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &redisReportCache{client: client, ttl: ttl}, nil
}

// redisOptions prefers REDIS_URL and otherwise uses the discrete settings,
// defaulting to a local server.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(cmp.Or(cfg.RedisHost, "127.0.0.1"), cmp.Or(cfg.RedisPort, "6379")),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Close() error {
	return c.client.Close()
}

func (c *redisReportCache) GetStats(ctx context.Context, mode analytics.CountMode) (*domain.Stats, bool, error) {
	var stats domain.Stats
	ok, err := c.get(ctx, statsKey(mode), &stats)
	if !ok || err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

func (c *redisReportCache) SetStats(ctx context.Context, mode analytics.CountMode, stats domain.Stats) error {
	return c.set(ctx, statsKey(mode), stats)
}

func (c *redisReportCache) GetCapital(ctx context.Context) (*domain.CapitalSplit, bool, error) {
	var split domain.CapitalSplit
	ok, err := c.get(ctx, capitalKey(), &split)
	if !ok || err != nil {
		return nil, false, err
	}
	return &split, true, nil
}

func (c *redisReportCache) SetCapital(ctx context.Context, split domain.CapitalSplit) error {
	return c.set(ctx, capitalKey(), split)
}

func (c *redisReportCache) GetAnalysis(ctx context.Context, policy analytics.Policy) (*analytics.Report, bool, error) {
	var report analytics.Report
	ok, err := c.get(ctx, analysisKey(policy), &report)
	if !ok || err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *redisReportCache) SetAnalysis(ctx context.Context, policy analytics.Policy, report analytics.Report) error {
	return c.set(ctx, analysisKey(policy), report)
}

// InvalidateAll unlinks every report key in batches. SCAN keeps a large
// keyspace from blocking the server the way KEYS would.
func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, reportKeyPrefix+":*", scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) < scanBatchSize {
			continue
		}
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("unlink report keys: %w", err)
		}
		batch = batch[:0]
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan report keys: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("unlink report keys: %w", err)
		}
	}
	return nil
}

func (c *redisReportCache) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *redisReportCache) set(ctx context.Context, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopReportCache) GetStats(ctx context.Context, mode analytics.CountMode) (*domain.Stats, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetStats(ctx context.Context, mode analytics.CountMode, stats domain.Stats) error {
	return nil
}

func (n *noopReportCache) GetCapital(ctx context.Context) (*domain.CapitalSplit, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetCapital(ctx context.Context, split domain.CapitalSplit) error {
	return nil
}

func (n *noopReportCache) GetAnalysis(ctx context.Context, policy analytics.Policy) (*analytics.Report, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetAnalysis(ctx context.Context, policy analytics.Policy, report analytics.Report) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func statsKey(mode analytics.CountMode) string {
	if mode == "" {
		mode = analytics.CountAuto
	}
	return fmt.Sprintf("%s:stats:%s", reportKeyPrefix, mode)
}

func capitalKey() string {
	return reportKeyPrefix + ":capital"
}

// analysisKey hashes the policy so a config change never serves a stale report.
func analysisKey(policy analytics.Policy) string {
	raw, _ := json.Marshal(policy)
	sum := sha1.Sum(raw)
	return fmt.Sprintf("%s:analysis:%s", reportKeyPrefix, hex.EncodeToString(sum[:]))
}
