package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"altdata_backend/internal/feature/metrics/domain/entity"
)

var (
	ErrMarketAPI = errors.New("market API error")
	ErrDB        = errors.New("database error")
)

// mockMarketRepository はMarketRepositoryインターフェースのモック実装です。
type mockMarketRepository struct {
	GetDailyClosesFunc  func(ctx context.Context, ticker entity.Ticker, outputsize int) ([]entity.PricePoint, error)
	GetDailyClosesCalls int
}

func (m *mockMarketRepository) GetDailyCloses(ctx context.Context, ticker entity.Ticker, outputsize int) ([]entity.PricePoint, error) {
	m.GetDailyClosesCalls++
	if m.GetDailyClosesFunc != nil {
		return m.GetDailyClosesFunc(ctx, ticker, outputsize)
	}
	return nil, errors.New("GetDailyClosesFunc is not implemented")
}

// mockPriceRepository はPriceRepositoryインターフェースのモック実装です。
type mockPriceRepository struct {
	UpsertPricesFunc func(ctx context.Context, prices []entity.PricePoint) error
}

func (m *mockPriceRepository) UpsertPrices(ctx context.Context, prices []entity.PricePoint) error {
	if m.UpsertPricesFunc != nil {
		return m.UpsertPricesFunc(ctx, prices)
	}
	return errors.New("UpsertPricesFunc is not implemented")
}

// mockLimiter はテスト用に即座に戻るLimiterです。
type mockLimiter struct {
	WaitCalls int
	WaitErr   error
}

func (m *mockLimiter) Wait(ctx context.Context) error {
	m.WaitCalls++
	return m.WaitErr
}

func TestIngestUsecase_ingestOne(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := []entity.PricePoint{
		{Ticker: "AAPL", Date: day, Close: 185},
		{Ticker: "AAPL", Date: day.AddDate(0, 0, -1), Close: 184},
	}

	testCases := []struct {
		name        string
		marketFunc  func(ctx context.Context, ticker entity.Ticker, outputsize int) ([]entity.PricePoint, error)
		upsertFunc  func(ctx context.Context, prices []entity.PricePoint) error
		expectedN   int
		expectedErr error
	}{
		{
			name: "success: fetch and save",
			marketFunc: func(ctx context.Context, ticker entity.Ticker, outputsize int) ([]entity.PricePoint, error) {
				if ticker != "AAPL" || outputsize != DefaultOutputSize {
					t.Errorf("unexpected params: ticker=%s outputsize=%d", ticker, outputsize)
				}
				return points, nil
			},
			upsertFunc: func(ctx context.Context, prices []entity.PricePoint) error {
				if len(prices) != 2 {
					t.Errorf("expected 2 prices, got %d", len(prices))
				}
				return nil
			},
			expectedN: 2,
		},
		{
			name: "error: market returns error",
			marketFunc: func(ctx context.Context, ticker entity.Ticker, outputsize int) ([]entity.PricePoint, error) {
				return nil, ErrMarketAPI
			},
			upsertFunc: func(ctx context.Context, prices []entity.PricePoint) error {
				t.Error("UpsertPrices should not be called")
				return nil
			},
			expectedErr: ErrMarketAPI,
		},
		{
			name: "error: repository returns error",
			marketFunc: func(ctx context.Context, ticker entity.Ticker, outputsize int) ([]entity.PricePoint, error) {
				return points, nil
			},
			upsertFunc: func(ctx context.Context, prices []entity.PricePoint) error {
				return ErrDB
			},
			expectedErr: ErrDB,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewIngestUsecase(
				&mockMarketRepository{GetDailyClosesFunc: tc.marketFunc},
				&mockPriceRepository{UpsertPricesFunc: tc.upsertFunc},
				&mockLimiter{},
			)

			n, err := uc.ingestOne(ctx, "AAPL")

			if tc.expectedErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected %v, got %v", tc.expectedErr, err)
			}
			if n != tc.expectedN {
				t.Errorf("expected %d rows, got %d", tc.expectedN, n)
			}
		})
	}
}

func TestIngestUsecase_IngestAll(t *testing.T) {
	ctx := context.Background()
	one := []entity.PricePoint{{Ticker: "X", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 1}}

	t.Run("success: continues after a failing ticker", func(t *testing.T) {
		market := &mockMarketRepository{
			GetDailyClosesFunc: func(ctx context.Context, ticker entity.Ticker, outputsize int) ([]entity.PricePoint, error) {
				if ticker == "DELL" {
					return nil, ErrMarketAPI
				}
				return one, nil
			},
		}
		limiter := &mockLimiter{}
		uc := NewIngestUsecase(market, &mockPriceRepository{
			UpsertPricesFunc: func(ctx context.Context, prices []entity.PricePoint) error { return nil },
		}, limiter)

		sum, err := uc.IngestAll(ctx, []entity.Ticker{"AAPL", "DELL", "TSLA"})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if market.GetDailyClosesCalls != 3 {
			t.Errorf("GetDailyCloses was called %d times, expected 3", market.GetDailyClosesCalls)
		}
		if limiter.WaitCalls != 3 {
			t.Errorf("Wait was called %d times, expected 3", limiter.WaitCalls)
		}
		if len(sum.Succeeded) != 2 || len(sum.Failed) != 1 || sum.Failed[0] != "DELL" {
			t.Errorf("unexpected summary: %+v", sum)
		}
		if sum.Rows != 2 {
			t.Errorf("expected 2 rows, got %d", sum.Rows)
		}
	})

	t.Run("success: empty ticker list", func(t *testing.T) {
		market := &mockMarketRepository{}
		uc := NewIngestUsecase(market, &mockPriceRepository{}, &mockLimiter{})

		sum, err := uc.IngestAll(ctx, nil)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if market.GetDailyClosesCalls != 0 {
			t.Errorf("GetDailyCloses should not be called")
		}
		if sum.Rows != 0 {
			t.Errorf("expected 0 rows, got %d", sum.Rows)
		}
	})

	t.Run("error: limiter aborts on cancelled context", func(t *testing.T) {
		market := &mockMarketRepository{}
		uc := NewIngestUsecase(market, &mockPriceRepository{}, &mockLimiter{WaitErr: context.Canceled})

		_, err := uc.IngestAll(ctx, []entity.Ticker{"AAPL"})

		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if market.GetDailyClosesCalls != 0 {
			t.Errorf("GetDailyCloses should not be called after cancellation")
		}
	})
}
