package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"altdata_backend/internal/feature/metrics/domain/entity"
)

// mockMetricStore はテスト用のMetricStoreモック実装です。
type mockMetricStore struct {
	findSeriesFn   func(ctx context.Context, ticker entity.Ticker, metricX, metricY entity.Metric, rng entity.DateRange) ([]entity.Sample, error)
	upsertPricesFn func(ctx context.Context, prices []entity.PricePoint) error
	upsertRowsFn   func(ctx context.Context, rows []entity.MetricRow) error
	findCalls      int
}

func (m *mockMetricStore) FindSeries(ctx context.Context, ticker entity.Ticker, metricX, metricY entity.Metric, rng entity.DateRange) ([]entity.Sample, error) {
	m.findCalls++
	if m.findSeriesFn != nil {
		return m.findSeriesFn(ctx, ticker, metricX, metricY, rng)
	}
	return nil, nil
}

func (m *mockMetricStore) UpsertPrices(ctx context.Context, prices []entity.PricePoint) error {
	if m.upsertPricesFn != nil {
		return m.upsertPricesFn(ctx, prices)
	}
	return nil
}

func (m *mockMetricStore) UpsertMetricRows(ctx context.Context, rows []entity.MetricRow) error {
	if m.upsertRowsFn != nil {
		return m.upsertRowsFn(ctx, rows)
	}
	return nil
}

func f(v float64) *float64 { return &v }

var (
	day1    = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	samples = []entity.Sample{
		{Date: day1, X: f(10), Y: f(100)},
		{Date: day1.AddDate(0, 0, 1), X: nil, Y: f(101)},
	}
	fullRange = entity.DateRange{Start: &day1}
)

const seriesKey = "series:AAPL:job_posts:price:2024-01-02:-"

// TestNewCachingMetricRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingMetricRepository_Defaults(t *testing.T) {
	t.Parallel()

	repo := NewCachingMetricRepository(nil, 0, &mockMetricStore{}, "")
	if repo.namespace != "series" {
		t.Errorf("expected namespace %q, got %q", "series", repo.namespace)
	}
	if d := repo.ttl(); d <= 0 || d > 24*time.Hour {
		t.Errorf("expected daily refresh TTL, got %v", d)
	}

	custom := NewCachingMetricRepository(nil, 10*time.Minute, &mockMetricStore{}, "custom")
	if custom.ttl() != 10*time.Minute {
		t.Errorf("expected TTL 10m, got %v", custom.ttl())
	}
	if custom.namespace != "custom" {
		t.Errorf("expected namespace %q, got %q", "custom", custom.namespace)
	}
}

// TestCachingMetricRepository_FindSeries_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingMetricRepository_FindSeries_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockMetricStore{
		findSeriesFn: func(ctx context.Context, ticker entity.Ticker, metricX, metricY entity.Metric, rng entity.DateRange) ([]entity.Sample, error) {
			return samples, nil
		},
	}

	repo := NewCachingMetricRepository(nil, 5*time.Minute, inner, "")
	out, err := repo.FindSeries(context.Background(), "AAPL", "job_posts", "price", fullRange)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("expected 2 samples, got %d", len(out))
	}
}

// TestCachingMetricRepository_FindSeries_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingMetricRepository_FindSeries_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal(samples)
	mock.ExpectGet(seriesKey).SetVal(string(cached))

	inner := &mockMetricStore{}
	repo := NewCachingMetricRepository(rdb, 5*time.Minute, inner, "")

	out, err := repo.FindSeries(context.Background(), "AAPL", "job_posts", "price", fullRange)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.findCalls != 0 {
		t.Error("inner repository should not be called on cache hit")
	}
	if len(out) != 2 || out[1].X != nil || *out[1].Y != 101 {
		t.Errorf("unexpected samples from cache: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingMetricRepository_FindSeries_CacheMiss はキャッシュミス時にDBから取得し保存することを検証します。
func TestCachingMetricRepository_FindSeries_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(samples)
	mock.ExpectGet(seriesKey).RedisNil()
	mock.ExpectSet(seriesKey, expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockMetricStore{
		findSeriesFn: func(ctx context.Context, ticker entity.Ticker, metricX, metricY entity.Metric, rng entity.DateRange) ([]entity.Sample, error) {
			return samples, nil
		},
	}
	repo := NewCachingMetricRepository(rdb, 5*time.Minute, inner, "")

	out, err := repo.FindSeries(context.Background(), "AAPL", "job_posts", "price", fullRange)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("expected 2 samples, got %d", len(out))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingMetricRepository_FindSeries_EmptyNotCached は空の結果がキャッシュされないことを検証します。
func TestCachingMetricRepository_FindSeries_EmptyNotCached(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("series:AAPL:job_posts:price:-:-").RedisNil()

	repo := NewCachingMetricRepository(rdb, 5*time.Minute, &mockMetricStore{}, "")

	out, err := repo.FindSeries(context.Background(), "AAPL", "job_posts", "price", entity.DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no samples, got %d", len(out))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingMetricRepository_FindSeries_InnerError は内部リポジトリのエラーが伝播されることを検証します。
func TestCachingMetricRepository_FindSeries_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("database error")
	mock.ExpectGet(seriesKey).RedisNil()

	inner := &mockMetricStore{
		findSeriesFn: func(ctx context.Context, ticker entity.Ticker, metricX, metricY entity.Metric, rng entity.DateRange) ([]entity.Sample, error) {
			return nil, expectedErr
		},
	}
	repo := NewCachingMetricRepository(rdb, 5*time.Minute, inner, "")

	_, err := repo.FindSeries(context.Background(), "AAPL", "job_posts", "price", fullRange)
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

// TestCachingMetricRepository_FindSeries_CorruptedCache は破損したキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingMetricRepository_FindSeries_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(samples)
	mock.ExpectGet(seriesKey).SetVal("invalid json")
	mock.ExpectDel(seriesKey).SetVal(1)
	mock.ExpectSet(seriesKey, expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockMetricStore{
		findSeriesFn: func(ctx context.Context, ticker entity.Ticker, metricX, metricY entity.Metric, rng entity.DateRange) ([]entity.Sample, error) {
			return samples, nil
		},
	}
	repo := NewCachingMetricRepository(rdb, 5*time.Minute, inner, "")

	if _, err := repo.FindSeries(context.Background(), "AAPL", "job_posts", "price", fullRange); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.findCalls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.findCalls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingMetricRepository_UpsertPrices_Invalidation は銘柄ごとに1回だけキャッシュが無効化されることを検証します。
func TestCachingMetricRepository_UpsertPrices_Invalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "series:AAPL:*", 200).SetVal([]string{seriesKey, "series:AAPL:price:job_posts:-:-"}, 0)
	mock.ExpectDel(seriesKey, "series:AAPL:price:job_posts:-:-").SetVal(2)
	mock.ExpectScan(0, "series:MSFT:*", 200).SetVal([]string{}, 0)

	repo := NewCachingMetricRepository(rdb, 5*time.Minute, &mockMetricStore{}, "")
	err := repo.UpsertPrices(context.Background(), []entity.PricePoint{
		{Ticker: "AAPL", Date: day1, Close: 185.6},
		{Ticker: "AAPL", Date: day1.AddDate(0, 0, 1), Close: 184.2},
		{Ticker: "MSFT", Date: day1, Close: 370.9},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingMetricRepository_UpsertPrices_InnerError は書き込み失敗時にキャッシュを触らずエラーを返すことを検証します。
func TestCachingMetricRepository_UpsertPrices_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("upsert error")
	inner := &mockMetricStore{
		upsertPricesFn: func(ctx context.Context, prices []entity.PricePoint) error {
			return expectedErr
		},
	}

	repo := NewCachingMetricRepository(rdb, 5*time.Minute, inner, "")
	err := repo.UpsertPrices(context.Background(), []entity.PricePoint{{Ticker: "AAPL", Date: day1, Close: 1}})

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected redis calls: %v", err)
	}
}

// TestCachingMetricRepository_UpsertMetricRows_Invalidation は代替データの取り込み後に系列キャッシュが無効化されることを検証します。
func TestCachingMetricRepository_UpsertMetricRows_Invalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "series:TSLA:*", 200).SetVal([]string{"series:TSLA:job_posts:price:-:-"}, 0)
	mock.ExpectDel("series:TSLA:job_posts:price:-:-").SetVal(1)

	var written int
	inner := &mockMetricStore{
		upsertRowsFn: func(ctx context.Context, rows []entity.MetricRow) error {
			written = len(rows)
			return nil
		},
	}
	repo := NewCachingMetricRepository(rdb, 5*time.Minute, inner, "")
	err := repo.UpsertMetricRows(context.Background(), []entity.MetricRow{
		{Ticker: "TSLA", Date: day1, Values: map[entity.Metric]*float64{entity.MetricJobPosts: f(12)}},
		{Ticker: "TSLA", Date: day1.AddDate(0, 0, 1), Values: map[entity.Metric]*float64{entity.MetricJobPosts: nil}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != 2 {
		t.Errorf("expected 2 rows written, got %d", written)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingMetricRepository_UpsertMetricRows_InnerError は書き込み失敗時にキャッシュを触らずエラーを返すことを検証します。
func TestCachingMetricRepository_UpsertMetricRows_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("upsert error")
	inner := &mockMetricStore{
		upsertRowsFn: func(ctx context.Context, rows []entity.MetricRow) error {
			return expectedErr
		},
	}

	repo := NewCachingMetricRepository(rdb, 5*time.Minute, inner, "")
	err := repo.UpsertMetricRows(context.Background(), []entity.MetricRow{{Ticker: "TSLA", Date: day1}})

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected redis calls: %v", err)
	}
}

// TestSafe はsafe関数がRedisキーで問題となる文字を正しくエスケープすることを検証します。
func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"BRK A", "BRK_A"},
		{"key:value", "key_value"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if result := safe(tt.input); result != tt.expected {
				t.Errorf("safe(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}
