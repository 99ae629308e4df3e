// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	metricadapters "altdata_backend/internal/feature/metrics/adapters"
	"altdata_backend/internal/feature/metrics/adapters/csvimport"
	"altdata_backend/internal/feature/metrics/adapters/twelvedata"
	"altdata_backend/internal/platform/cache"
	infrahttp "altdata_backend/internal/platform/http"
	"altdata_backend/internal/shared/ratelimiter"
)

// twelveDataPerMinute はTwelve Data無料プランのリクエスト上限です。
const twelveDataPerMinute = 8

// NewMarket creates a fully configured Twelve Data price client with HTTP client.
func NewMarket() *twelvedata.PriceClient {
	cfg := twelvedata.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return twelvedata.NewPriceClient(cfg, httpClient)
}

// NewMarketRateLimiter はTwelve Dataのレート制限に合わせたリミッターを返します。
func NewMarketRateLimiter() *ratelimiter.RateLimiter {
	return ratelimiter.NewRateLimiter(twelveDataPerMinute, time.Minute)
}

// NewMetricStore returns the stock_metrics repository wrapped with the Redis series cache.
// rdb が nil の場合、キャッシュはバイパスされます。
func NewMetricStore(db *gorm.DB, rdb *redis.Client) *cache.CachingMetricRepository {
	return cache.NewCachingMetricRepository(rdb, 0, metricadapters.NewMetricRepository(db), "series")
}

// NewAltDataSource returns the per-ticker CSV reader when DATA_DIRECTORY is set, or nil.
func NewAltDataSource() *csvimport.Reader {
	cfg := csvimport.LoadConfig()
	if !cfg.Enabled() {
		return nil
	}
	return csvimport.NewReader(cfg)
}
