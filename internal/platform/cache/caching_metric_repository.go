// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	corrusecase "altdata_backend/internal/feature/correlation/usecase"
	"altdata_backend/internal/feature/metrics/domain/entity"
	metricsusecase "altdata_backend/internal/feature/metrics/usecase"
)

// MetricStore は系列の読み出しと、株価・代替データの書き込みを持つストアです。
type MetricStore interface {
	corrusecase.SeriesRepository
	metricsusecase.PriceRepository
	metricsusecase.MetricRowRepository
}

// CachingMetricRepository decorates a MetricStore with Redis caching.
// Series reads are cached until the next daily refresh; price and
// alternative-data upserts invalidate every cached series of the affected tickers.
type CachingMetricRepository struct {
	inner     MetricStore
	rdb       *redis.Client
	ttl       func() time.Duration
	namespace string
}

var _ MetricStore = (*CachingMetricRepository)(nil)

// NewCachingMetricRepository decorates a MetricStore with Redis caching.
// If ttl is 0, entries expire at the next daily refresh (TimeUntilNextDailyRefresh).
// If namespace is empty, it uses "series".
func NewCachingMetricRepository(rdb *redis.Client, ttl time.Duration, inner MetricStore, namespace string) *CachingMetricRepository {
	ttlFn := TimeUntilNextDailyRefresh
	if ttl > 0 {
		ttlFn = func() time.Duration { return ttl }
	}
	if namespace == "" {
		namespace = "series"
	}
	return &CachingMetricRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttlFn,
		namespace: namespace,
	}
}

// UpsertPrices writes prices and invalidates cached series of the affected tickers.
func (c *CachingMetricRepository) UpsertPrices(ctx context.Context, prices []entity.PricePoint) error {
	if err := c.inner.UpsertPrices(ctx, prices); err != nil {
		return err
	}
	tickers := make([]entity.Ticker, len(prices))
	for i, p := range prices {
		tickers[i] = p.Ticker
	}
	c.invalidate(ctx, tickers)
	return nil
}

// UpsertMetricRows writes imported rows and invalidates cached series of the affected tickers.
func (c *CachingMetricRepository) UpsertMetricRows(ctx context.Context, rows []entity.MetricRow) error {
	if err := c.inner.UpsertMetricRows(ctx, rows); err != nil {
		return err
	}
	tickers := make([]entity.Ticker, len(rows))
	for i, r := range rows {
		tickers[i] = r.Ticker
	}
	c.invalidate(ctx, tickers)
	return nil
}

// invalidate deletes cached series once per distinct ticker (best effort).
func (c *CachingMetricRepository) invalidate(ctx context.Context, tickers []entity.Ticker) {
	if c.rdb == nil {
		return
	}
	seen := map[entity.Ticker]struct{}{}
	for _, t := range tickers {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		_ = deleteByPattern(ctx, c.rdb, c.tickerPrefix(t)+"*")
	}
}

// FindSeries retrieves a two-metric series, checking cache first then falling back to the database.
func (c *CachingMetricRepository) FindSeries(ctx context.Context, ticker entity.Ticker, metricX, metricY entity.Metric, rng entity.DateRange) ([]entity.Sample, error) {
	if c.rdb == nil {
		return c.inner.FindSeries(ctx, ticker, metricX, metricY, rng)
	}

	key := c.cacheKey(ticker, metricX, metricY, rng)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Sample
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindSeries(ctx, ticker, metricX, metricY, rng)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort). 空の結果はキャッシュしない
	if len(out) > 0 {
		if b, err := json.Marshal(out); err == nil {
			_ = c.rdb.Set(ctx, key, b, c.ttl()).Err()
		}
	}
	return out, nil
}

func (c *CachingMetricRepository) cacheKey(ticker entity.Ticker, metricX, metricY entity.Metric, rng entity.DateRange) string {
	return fmt.Sprintf("%s%s:%s:%s:%s",
		c.tickerPrefix(ticker),
		safe(string(metricX)),
		safe(string(metricY)),
		dateKey(rng.Start),
		dateKey(rng.End),
	)
}

func (c *CachingMetricRepository) tickerPrefix(ticker entity.Ticker) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(string(ticker)))
}

func dateKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func deleteByPattern(ctx context.Context, rdb *redis.Client, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
