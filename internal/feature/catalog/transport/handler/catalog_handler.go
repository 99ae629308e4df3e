// Package handler はcatalogフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"altdata_backend/internal/api"
	"altdata_backend/internal/feature/catalog/usecase"
	metrics "altdata_backend/internal/feature/metrics/domain/entity"
)

// CatalogUsecase は銘柄・指標一覧のユースケースインターフェースです。
type CatalogUsecase interface {
	ListTickers(ctx context.Context) ([]metrics.Ticker, error)
	ListMetrics(ctx context.Context) ([]usecase.MetricInfo, error)
}

// CatalogHandler はドロップダウン用の一覧APIを処理します。
type CatalogHandler struct {
	uc CatalogUsecase
}

// NewCatalogHandler は新しい CatalogHandler を作成します。
func NewCatalogHandler(uc CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// Tickers は対象銘柄の一覧を返します。
//
// エンドポイント例:
// GET /api/catalog/tickers → [{"code":"AAPL"}, ...]
func (h *CatalogHandler) Tickers(c *gin.Context) {
	tickers, err := h.uc.ListTickers(c.Request.Context())
	if err != nil {
		slog.Error("failed to list tickers", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list tickers"})
		return
	}
	out := make([]api.TickerItem, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, api.TickerItem{Code: string(t)})
	}
	c.JSON(http.StatusOK, out)
}

// Metrics は指標IDと表示名の一覧を返します。
func (h *CatalogHandler) Metrics(c *gin.Context) {
	ms, err := h.uc.ListMetrics(c.Request.Context())
	if err != nil {
		slog.Error("failed to list metrics", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list metrics"})
		return
	}
	out := make([]api.MetricItem, 0, len(ms))
	for _, m := range ms {
		out = append(out, api.MetricItem{ID: string(m.ID), DisplayName: m.DisplayName})
	}
	c.JSON(http.StatusOK, out)
}
