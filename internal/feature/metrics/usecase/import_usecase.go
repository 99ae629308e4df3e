package usecase

import (
	"context"
	"errors"
	"log/slog"

	"altdata_backend/internal/feature/metrics/domain/entity"
)

// ErrNoSource は銘柄の取り込み元ファイルが存在しないことを示します。
var ErrNoSource = errors.New("no alternative data source for ticker")

// AltDataSource は銘柄ごとの代替データ行を読み出すインターフェースです。
type AltDataSource interface {
	ReadTicker(ctx context.Context, ticker entity.Ticker) ([]entity.MetricRow, error)
}

// MetricRowRepository は代替データ行をstock_metricsに書き込むインターフェースです。
type MetricRowRepository interface {
	UpsertMetricRows(ctx context.Context, rows []entity.MetricRow) error
}

// ImportUsecase は代替データ（求人数、SNS言及数、センチメント等）を取り込みます。
type ImportUsecase struct {
	source AltDataSource
	rows   MetricRowRepository
}

// NewImportUsecase は新しい ImportUsecase を作成します。
func NewImportUsecase(source AltDataSource, rows MetricRowRepository) *ImportUsecase {
	return &ImportUsecase{source: source, rows: rows}
}

// ImportAll は指定された全銘柄の代替データを取り込みます。
// ファイルのない銘柄はSkippedに、読み込みや書き込みに失敗した銘柄はFailedに入れて次へ進みます。
// ctxがキャンセルされた場合のみエラーを返します。
func (iu *ImportUsecase) ImportAll(ctx context.Context, tickers []entity.Ticker) (IngestSummary, error) {
	var sum IngestSummary
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		rows, err := iu.source.ReadTicker(ctx, t)
		if errors.Is(err, ErrNoSource) {
			slog.Warn("no alternative data to import", "ticker", t)
			sum.Skipped = append(sum.Skipped, t)
			continue
		}
		if err == nil {
			err = iu.rows.UpsertMetricRows(ctx, rows)
		}
		if err != nil {
			slog.Error("failed to import alternative data", "ticker", t, "error", err)
			sum.Failed = append(sum.Failed, t)
			continue
		}
		slog.Info("imported alternative data", "ticker", t, "rows", len(rows))
		sum.Succeeded = append(sum.Succeeded, t)
		sum.Rows += len(rows)
	}
	return sum, nil
}
