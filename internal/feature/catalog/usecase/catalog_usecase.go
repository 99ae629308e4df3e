// Package usecase は選択可能な銘柄・指標の一覧を提供します。
package usecase

import (
	"context"

	metrics "altdata_backend/internal/feature/metrics/domain/entity"
)

// MetricInfo は指標IDと表示名の組です。
type MetricInfo struct {
	ID          metrics.Metric
	DisplayName string
}

// CatalogUsecase は許可リストの参照を担います。
type CatalogUsecase struct{}

// NewCatalogUsecase は新しい CatalogUsecase を作成します。
func NewCatalogUsecase() *CatalogUsecase {
	return &CatalogUsecase{}
}

// ListTickers は対象銘柄を定義順で返します。
func (u *CatalogUsecase) ListTickers(ctx context.Context) ([]metrics.Ticker, error) {
	return append([]metrics.Ticker(nil), metrics.Tickers...), nil
}

// ListMetrics は指標を定義順（price が先頭）で表示名付きで返します。
func (u *CatalogUsecase) ListMetrics(ctx context.Context) ([]MetricInfo, error) {
	out := make([]MetricInfo, 0, len(metrics.Metrics))
	for _, m := range metrics.Metrics {
		out = append(out, MetricInfo{ID: m, DisplayName: metrics.DisplayName(m)})
	}
	return out, nil
}
