// Package usecase は株価データの取り込み処理を実装します。
package usecase

import (
	"context"
	"log/slog"

	"altdata_backend/internal/feature/metrics/domain/entity"
	"altdata_backend/internal/shared/ratelimiter"
)

// DefaultOutputSize は1銘柄あたりに取得する日次終値の件数です。
const DefaultOutputSize = 365

// MarketRepository は外部APIから日次終値を取得するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	GetDailyCloses(ctx context.Context, ticker entity.Ticker, outputsize int) ([]entity.PricePoint, error)
}

// PriceRepository は取得した終値をstock_metricsに書き込むインターフェースです。
type PriceRepository interface {
	UpsertPrices(ctx context.Context, prices []entity.PricePoint) error
}

// IngestSummary は取り込み結果の集計です。
type IngestSummary struct {
	Succeeded []entity.Ticker
	Failed    []entity.Ticker
	Skipped   []entity.Ticker // 取り込み元にデータがなかった銘柄
	Rows      int
}

// IngestUsecase は外部APIから終値を取得し、データベースに永続化します。
type IngestUsecase struct {
	market      MarketRepository
	prices      PriceRepository
	rateLimiter ratelimiter.Limiter
	outputSize  int
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(market MarketRepository, prices PriceRepository, rl ratelimiter.Limiter) *IngestUsecase {
	return &IngestUsecase{market: market, prices: prices, rateLimiter: rl, outputSize: DefaultOutputSize}
}

// ingestOne は1銘柄分の終値を取得して一括で挿入（または更新）します。
func (iu *IngestUsecase) ingestOne(ctx context.Context, ticker entity.Ticker) (int, error) {
	ps, err := iu.market.GetDailyCloses(ctx, ticker, iu.outputSize)
	if err != nil {
		return 0, err
	}
	if err := iu.prices.UpsertPrices(ctx, ps); err != nil {
		return 0, err
	}
	return len(ps), nil
}

// IngestAll は指定された全銘柄の終値を取り込みます。
// 1銘柄の失敗で処理全体を止めず、ログに出力して次の銘柄へ進みます。
// ctxがキャンセルされた場合のみエラーを返します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, tickers []entity.Ticker) (IngestSummary, error) {
	var sum IngestSummary
	for _, t := range tickers {
		if err := iu.rateLimiter.Wait(ctx); err != nil {
			return sum, err
		}
		n, err := iu.ingestOne(ctx, t)
		if err != nil {
			slog.Error("failed to ingest prices", "ticker", t, "error", err)
			sum.Failed = append(sum.Failed, t)
			continue
		}
		slog.Info("ingested prices", "ticker", t, "rows", n)
		sum.Succeeded = append(sum.Succeeded, t)
		sum.Rows += n
	}
	return sum, nil
}
