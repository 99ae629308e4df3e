// Package handler はcorrelationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"altdata_backend/internal/api"
	"altdata_backend/internal/feature/correlation/domain/entity"
	"altdata_backend/internal/feature/correlation/usecase"
	metrics "altdata_backend/internal/feature/metrics/domain/entity"
)

// CorrelationUsecase は相関計算のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CorrelationUsecase interface {
	Correlate(ctx context.Context, q usecase.CorrelationQuery) (entity.CorrelationResult, error)
	Compare(ctx context.Context, q usecase.CompareQuery) ([]entity.CorrelationResult, error)
	Discover(ctx context.Context, q usecase.DiscoverQuery) (entity.DiscoveryResult, error)
}

// CorrelationHandler は相関・比較・ディスカバリーのHTTPリクエストを処理します。
type CorrelationHandler struct {
	uc CorrelationUsecase
}

// NewCorrelationHandler は指定されたusecaseでCorrelationHandlerの新しいインスタンスを生成します。
func NewCorrelationHandler(uc CorrelationUsecase) *CorrelationHandler {
	return &CorrelationHandler{uc: uc}
}

// Correlation は1銘柄・2指標の相関係数と描画用の系列を返します。
//
// エンドポイント例:
// POST /api/correlation {"ticker":"AAPL","metricX":"job_posts","metricY":"price","startDate":"2024-01-01"}
func (h *CorrelationHandler) Correlation(c *gin.Context) {
	var req api.CorrelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.uc.Correlate(c.Request.Context(), usecase.CorrelationQuery{
		Ticker:  req.Ticker,
		MetricX: req.MetricX,
		MetricY: req.MetricY,
		Range:   dateRange(req.StartDate, req.EndDate),
	})
	if err != nil {
		writeError(c, "correlation", err)
		return
	}

	c.JSON(http.StatusOK, api.CorrelationResponse{
		Success:     true,
		Ticker:      string(res.Ticker),
		MetricX:     string(res.MetricX),
		MetricY:     string(res.MetricY),
		Correlation: res.Coefficient,
		DataPoints:  res.DataPoints,
		Label:       string(res.Label),
		Data:        toDataPoints(res.Series),
	})
}

// Compare は最大3銘柄の相関を並行に計算し、銘柄名の昇順で返します。
func (h *CorrelationHandler) Compare(c *gin.Context) {
	var req api.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.uc.Compare(c.Request.Context(), usecase.CompareQuery{
		Tickers: req.Tickers,
		MetricX: req.MetricX,
		MetricY: req.MetricY,
		Range:   dateRange(req.StartDate, req.EndDate),
	})
	if err != nil {
		writeError(c, "compare", err)
		return
	}

	out := make([]api.CompareResult, 0, len(results))
	for _, r := range results {
		out = append(out, api.CompareResult{
			Ticker:      string(r.Ticker),
			Correlation: r.Coefficient,
			DataPoints:  r.DataPoints,
			Label:       string(r.Label),
			Data:        toDataPoints(r.Series),
		})
	}
	c.JSON(http.StatusOK, api.CompareResponse{
		Success: true,
		MetricX: req.MetricX,
		MetricY: req.MetricY,
		Results: out,
	})
}

// Discover は価格と各指標の相関ランキングと、1位の指標の系列を返します。
func (h *CorrelationHandler) Discover(c *gin.Context) {
	var req api.DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.uc.Discover(c.Request.Context(), usecase.DiscoverQuery{
		Ticker: req.Ticker,
		Range:  dateRange(req.StartDate, req.EndDate),
	})
	if err != nil {
		writeError(c, "discover", err)
		return
	}

	items := make([]api.DiscoveryItem, 0, len(res.Entries))
	for _, e := range res.Entries {
		items = append(items, api.DiscoveryItem{
			Metric:      string(e.Metric),
			Correlation: e.Coefficient,
			DataPoints:  e.DataPoints,
			Strength:    string(e.Strength),
		})
	}
	c.JSON(http.StatusOK, api.DiscoverResponse{
		Success: true,
		Ticker:  string(res.Ticker),
		Results: items,
		TopResult: api.TopResult{
			Metric:      string(res.Top.Metric),
			Correlation: res.Top.Coefficient,
			Data:        toDataPoints(res.Top.Series),
		},
	})
}

func dateRange(start, end *openapi_types.Date) metrics.DateRange {
	var rng metrics.DateRange
	if start != nil {
		t := start.Time
		rng.Start = &t
	}
	if end != nil {
		t := end.Time
		rng.End = &t
	}
	return rng
}

func toDataPoints(pts []entity.Point) []api.DataPoint {
	out := make([]api.DataPoint, 0, len(pts))
	for _, p := range pts {
		out = append(out, api.DataPoint{Date: openapi_types.Date{Time: p.Date}, X: p.X, Y: p.Y})
	}
	return out
}

func badRequest(c *gin.Context, err error) {
	slog.Warn("invalid request body", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body", Details: err.Error()})
}

// statusFor はusecaseのエラーをHTTPステータスとレスポンスに変換します。
func statusFor(err error) (int, api.ErrorResponse) {
	var re *usecase.RetrievalError
	switch {
	case usecase.IsInputError(err), errors.Is(err, usecase.ErrInsufficientData):
		return http.StatusBadRequest, api.ErrorResponse{Error: err.Error()}
	case errors.Is(err, usecase.ErrNoData), errors.Is(err, usecase.ErrNoValidCorrelations):
		return http.StatusNotFound, api.ErrorResponse{Error: err.Error()}
	case errors.As(err, &re):
		return http.StatusInternalServerError, api.ErrorResponse{
			Error:   fmt.Sprintf("failed to fetch data for %s", re.Ticker),
			Details: re.Err.Error(),
		}
	default:
		return http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error", Details: err.Error()}
	}
}

func writeError(c *gin.Context, op string, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err)
	} else {
		slog.Warn(op+" rejected", "status", status, "error", err)
	}
	c.JSON(status, body)
}
